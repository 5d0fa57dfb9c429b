package api

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"complaint-tracker-backend/internal/attachment"
	"complaint-tracker-backend/internal/db"
	"complaint-tracker-backend/internal/model"
	"complaint-tracker-backend/internal/store"
	"complaint-tracker-backend/internal/token"
	"complaint-tracker-backend/internal/workflow"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memBlobs keeps uploaded payloads in memory.
type memBlobs struct {
	mu    sync.Mutex
	next  int
	blobs map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: map[string][]byte{}}
}

func (m *memBlobs) Save(name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	ref := fmt.Sprintf("blob-%d-%s", m.next, name)
	m.blobs[ref] = data
	return ref, nil
}

func (m *memBlobs) Delete(ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, ref)
	return nil
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	codec  *token.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	gormDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	s := store.NewGormStore(gormDB)
	codec := token.NewCodec("test-secret")
	engine := workflow.NewEngine(s, codec, attachment.NewManager(newMemBlobs()), nil)
	handler := NewHandler(s, engine, codec, nil, "https://complaints.example.org")

	// Limits high enough that tests never trip the per-client limiter.
	router := NewRouter(handler, RouterConfig{
		RateLimitPerSec: 10000,
		RateLimitBurst:  10000,
		CacheTTL:        time.Millisecond,
	})
	return &testEnv{router: router, db: gormDB, codec: codec}
}

// seedRoom inserts a room with a freshly signed token.
func (e *testEnv) seedRoom(t *testing.T, status string) *model.Room {
	room := &model.Room{
		BedNo: "101", RoomNo: "A101", Block: "A", FloorNo: 1,
		Ward: "General", Speciality: "General", RoomType: "Standard",
		Status: status,
	}
	_, err := e.codec.EnsureToken(room)
	require.NoError(t, err)
	require.NoError(t, e.db.Create(room).Error)
	return room
}
