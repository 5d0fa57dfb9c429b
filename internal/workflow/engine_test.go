package workflow

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"complaint-tracker-backend/internal/attachment"
	"complaint-tracker-backend/internal/db"
	"complaint-tracker-backend/internal/model"
	"complaint-tracker-backend/internal/store"
	"complaint-tracker-backend/internal/ticket"
	"complaint-tracker-backend/internal/token"
)

// memBlobs is an in-memory BlobStore for tests.
type memBlobs struct {
	saved   int
	deleted []string
}

func (m *memBlobs) Save(name string, data []byte) (string, error) {
	m.saved++
	return fmt.Sprintf("blob-%d-%s", m.saved, name), nil
}

func (m *memBlobs) Delete(ref string) error {
	m.deleted = append(m.deleted, ref)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	gormDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})
	return gormDB
}

type testEnv struct {
	db     *gorm.DB
	store  store.Store
	codec  *token.Codec
	blobs  *memBlobs
	engine *Engine
}

func newTestEnv(t *testing.T) *testEnv {
	gormDB := newTestDB(t)
	blobs := &memBlobs{}
	codec := token.NewCodec("test-secret")
	s := store.NewGormStore(gormDB)
	engine := NewEngine(s, codec, attachment.NewManager(blobs), nil)
	return &testEnv{db: gormDB, store: s, codec: codec, blobs: blobs, engine: engine}
}

// seedRoom persists an active room and returns it with its token parts.
func (env *testEnv) seedRoom(t *testing.T) (*model.Room, string, string) {
	room := &model.Room{
		BedNo:      "101",
		RoomNo:     "A101",
		Block:      "A",
		FloorNo:    1,
		Ward:       "General",
		Speciality: "General",
		RoomType:   "Standard",
		Status:     model.RoomStatusActive,
	}
	_, err := env.codec.EnsureToken(room)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(room).Error)

	payload, signature, err := token.Split(room.QRToken)
	require.NoError(t, err)
	return room, payload, signature
}

func plumbingInput() SubmitInput {
	return SubmitInput{
		IssueType:   model.IssuePlumbing,
		Description: "Leaking sink in the corner",
		Priority:    model.PriorityHigh,
	}
}

func TestSubmit_Success(t *testing.T) {
	env := newTestEnv(t)
	room, payload, signature := env.seedRoom(t)

	in := plumbingInput()
	in.Files = []attachment.File{
		{Name: "leak.jpg", Data: []byte("jpeg")},
		{Name: "floor.jpg", Data: []byte("jpeg")},
	}

	complaint, err := env.engine.Submit(context.Background(), payload, signature, in)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(complaint.TicketID, ticket.Prefix))
	assert.Equal(t, model.ComplaintStatusOpen, complaint.Status)
	assert.Equal(t, model.AnonymousSubmitter, complaint.SubmittedBy)
	assert.False(t, complaint.SubmittedAt.IsZero())
	assert.Nil(t, complaint.ResolvedAt)

	// Room snapshot copied at submission time.
	assert.Equal(t, room.BedNo, complaint.BedNumber)
	assert.Equal(t, room.RoomNo, complaint.RoomNumber)
	assert.Equal(t, room.Block, complaint.Block)
	assert.Equal(t, room.FloorNo, complaint.Floor)
	assert.Equal(t, room.Ward, complaint.Ward)
	assert.Equal(t, room.Speciality, complaint.Speciality)
	assert.Equal(t, room.RoomType, complaint.RoomType)
	assert.Equal(t, model.RoomStatusActive, complaint.RoomStatus)

	assert.Len(t, complaint.Attachments, 2)

	var count int64
	env.db.Model(&model.ComplaintAttachment{}).Where("complaint_id = ?", complaint.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSubmit_SnapshotNotResynced(t *testing.T) {
	env := newTestEnv(t)
	room, payload, signature := env.seedRoom(t)

	complaint, err := env.engine.Submit(context.Background(), payload, signature, plumbingInput())
	require.NoError(t, err)

	// Moving the room afterwards must not touch the complaint's snapshot.
	room.Ward = "Cardiology"
	require.NoError(t, env.db.Save(room).Error)

	reloaded, err := env.store.FindComplaintByTicket(context.Background(), complaint.TicketID)
	require.NoError(t, err)
	assert.Equal(t, "General", reloaded.Ward)
}

func TestSubmit_NamedSubmitter(t *testing.T) {
	env := newTestEnv(t)
	_, payload, signature := env.seedRoom(t)

	in := plumbingInput()
	in.SubmittedBy = "nurse.jones"
	complaint, err := env.engine.Submit(context.Background(), payload, signature, in)
	require.NoError(t, err)
	assert.Equal(t, "nurse.jones", complaint.SubmittedBy)
}

func TestSubmit_InvalidToken(t *testing.T) {
	env := newTestEnv(t)
	_, payload, _ := env.seedRoom(t)

	_, err := env.engine.Submit(context.Background(), payload, "bm90LXRoZS1zaWduYXR1cmU", plumbingInput())
	assert.ErrorIs(t, err, ErrInvalidToken)

	var count int64
	env.db.Model(&model.Complaint{}).Count(&count)
	assert.Equal(t, int64(0), count, "rejected submission must leave no complaint behind")
}

func TestSubmit_RoomNotFound(t *testing.T) {
	env := newTestEnv(t)
	room, payload, signature := env.seedRoom(t)
	require.NoError(t, env.db.Delete(room).Error)

	_, err := env.engine.Submit(context.Background(), payload, signature, plumbingInput())
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSubmit_RoomInactive(t *testing.T) {
	env := newTestEnv(t)
	room, payload, signature := env.seedRoom(t)
	room.Status = model.RoomStatusInactive
	require.NoError(t, env.db.Save(room).Error)

	_, err := env.engine.Submit(context.Background(), payload, signature, plumbingInput())
	assert.ErrorIs(t, err, ErrRoomInactive)
}

func TestSubmit_DuplicateSuppression(t *testing.T) {
	env := newTestEnv(t)
	_, payload, signature := env.seedRoom(t)
	ctx := context.Background()

	first, err := env.engine.Submit(ctx, payload, signature, plumbingInput())
	require.NoError(t, err)

	// Identical room + issue while the first is still open.
	_, err = env.engine.Submit(ctx, payload, signature, plumbingInput())
	assert.ErrorIs(t, err, ErrDuplicateComplaint)

	// A different issue type for the same room is not a duplicate.
	other := plumbingInput()
	other.IssueType = model.IssueElectrical
	_, err = env.engine.Submit(ctx, payload, signature, other)
	require.NoError(t, err)

	// in_progress still blocks.
	_, err = env.engine.Transition(ctx, first.TicketID, model.ComplaintStatusInProgress, "", "staff")
	require.NoError(t, err)
	_, err = env.engine.Submit(ctx, payload, signature, plumbingInput())
	assert.ErrorIs(t, err, ErrDuplicateComplaint)

	// Resolving the first unblocks resubmission.
	_, err = env.engine.Transition(ctx, first.TicketID, model.ComplaintStatusResolved, "fixed", "staff")
	require.NoError(t, err)
	second, err := env.engine.Submit(ctx, payload, signature, plumbingInput())
	require.NoError(t, err)
	assert.NotEqual(t, first.TicketID, second.TicketID)
}

func TestTransition_Resolved(t *testing.T) {
	env := newTestEnv(t)
	_, payload, signature := env.seedRoom(t)
	ctx := context.Background()

	complaint, err := env.engine.Submit(ctx, payload, signature, plumbingInput())
	require.NoError(t, err)

	resolved, err := env.engine.Transition(ctx, complaint.TicketID, model.ComplaintStatusResolved, "replaced the pipe", "tech.smith")
	require.NoError(t, err)

	assert.Equal(t, model.ComplaintStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, "tech.smith", *resolved.ResolvedBy)
	require.NotNil(t, resolved.Remarks)
	assert.Equal(t, "replaced the pipe", *resolved.Remarks)

	// Leaving resolved preserves the resolution timestamp.
	resolvedAt := *resolved.ResolvedAt
	onHold, err := env.engine.Transition(ctx, complaint.TicketID, model.ComplaintStatusOnHold, "awaiting parts", "tech.smith")
	require.NoError(t, err)
	assert.Equal(t, model.ComplaintStatusOnHold, onHold.Status)
	require.NotNil(t, onHold.ResolvedAt)
	assert.Equal(t, resolvedAt.Unix(), onHold.ResolvedAt.Unix())
}

func TestTransition_AnonymousResolver(t *testing.T) {
	env := newTestEnv(t)
	_, payload, signature := env.seedRoom(t)
	ctx := context.Background()

	complaint, err := env.engine.Submit(ctx, payload, signature, plumbingInput())
	require.NoError(t, err)

	resolved, err := env.engine.Transition(ctx, complaint.TicketID, model.ComplaintStatusResolved, "", "")
	require.NoError(t, err)
	assert.Nil(t, resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)
}

func TestTransition_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	_, payload, signature := env.seedRoom(t)
	ctx := context.Background()

	complaint, err := env.engine.Submit(ctx, payload, signature, plumbingInput())
	require.NoError(t, err)

	_, err = env.engine.Transition(ctx, complaint.TicketID, "bogus_status", "", "staff")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// The complaint is untouched.
	reloaded, err := env.store.FindComplaintByTicket(ctx, complaint.TicketID)
	require.NoError(t, err)
	assert.Equal(t, model.ComplaintStatusOpen, reloaded.Status)
	assert.Nil(t, reloaded.Remarks)
}

func TestTransition_ComplaintNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.Transition(context.Background(), "SVN00000", model.ComplaintStatusClosed, "", "staff")
	assert.ErrorIs(t, err, ErrComplaintNotFound)
}

func TestReplaceAttachments_EmptyRetainDropsAll(t *testing.T) {
	env := newTestEnv(t)
	_, payload, signature := env.seedRoom(t)
	ctx := context.Background()

	in := plumbingInput()
	in.Files = []attachment.File{
		{Name: "old1.jpg", Data: []byte("a")},
		{Name: "old2.jpg", Data: []byte("b")},
	}
	complaint, err := env.engine.Submit(ctx, payload, signature, in)
	require.NoError(t, err)

	updated, err := env.engine.ReplaceAttachments(ctx, complaint.TicketID, nil, []attachment.File{
		{Name: "new.jpg", Data: []byte("c")},
	})
	require.NoError(t, err)

	require.Len(t, updated.Attachments, 1)
	assert.Contains(t, updated.Attachments[0].Ref, "new.jpg")
	assert.Len(t, env.blobs.deleted, 2)

	var count int64
	env.db.Model(&model.ComplaintAttachment{}).Where("complaint_id = ?", complaint.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	_, payload, signature := env.seedRoom(t)
	ctx := context.Background()

	in := plumbingInput()
	in.Files = []attachment.File{{Name: "x.jpg", Data: []byte("a")}}
	complaint, err := env.engine.Submit(ctx, payload, signature, in)
	require.NoError(t, err)

	require.NoError(t, env.engine.Delete(ctx, complaint.TicketID))

	var complaints, attachments int64
	env.db.Model(&model.Complaint{}).Count(&complaints)
	env.db.Model(&model.ComplaintAttachment{}).Count(&attachments)
	assert.Equal(t, int64(0), complaints)
	assert.Equal(t, int64(0), attachments)
	assert.Len(t, env.blobs.deleted, 1)

	assert.ErrorIs(t, env.engine.Delete(ctx, complaint.TicketID), ErrComplaintNotFound)
}
