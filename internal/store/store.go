package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"complaint-tracker-backend/internal/model"
)

// Store defines the interface for the database operations shared by the
// workflow engine and the API layer.
type Store interface {
	DB() *gorm.DB

	FindRoomByIdentity(ctx context.Context, key RoomKey) (*model.Room, error)
	HasOpenComplaint(ctx context.Context, issueType string, key RoomKey) (bool, error)
	FindComplaintByTicket(ctx context.Context, ticketID string) (*model.Complaint, error)
	TicketIDExists(ctx context.Context, ticketID string) (bool, error)
	ListComplaints(ctx context.Context, q ComplaintQuery) ([]model.Complaint, int64, error)
	ListRooms(ctx context.Context, q RoomQuery) ([]model.Room, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for transaction boundaries and the plain
// CRUD handlers.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// FindRoomByIdentity resolves the live room matching the full descriptor
// tuple. Returns gorm.ErrRecordNotFound when no room matches.
func (s *gormStore) FindRoomByIdentity(ctx context.Context, key RoomKey) (*model.Room, error) {
	var room model.Room
	err := s.db.WithContext(ctx).
		Where("bed_no = ? AND room_no = ? AND block = ? AND floor_no = ? AND ward = ? AND speciality = ? AND room_type = ?",
			key.BedNo, key.RoomNo, key.Block, key.FloorNo, key.Ward, key.Speciality, key.RoomType).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// HasOpenComplaint reports whether an unresolved complaint already exists for
// the same issue type and the identical room snapshot tuple. Complaints in
// resolved, closed or on_hold do not block resubmission.
func (s *gormStore) HasOpenComplaint(ctx context.Context, issueType string, key RoomKey) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Complaint{}).
		Where("issue_type = ?", issueType).
		Where("bed_number = ? AND room_number = ? AND block = ? AND floor = ? AND ward = ? AND speciality = ? AND room_type = ?",
			key.BedNo, key.RoomNo, key.Block, key.FloorNo, key.Ward, key.Speciality, key.RoomType).
		Where("status IN ?", []string{model.ComplaintStatusOpen, model.ComplaintStatusInProgress}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count open complaints: %w", err)
	}
	return count > 0, nil
}

// FindComplaintByTicket loads a complaint with its attachments. Returns
// gorm.ErrRecordNotFound for unknown tickets.
func (s *gormStore) FindComplaintByTicket(ctx context.Context, ticketID string) (*model.Complaint, error) {
	var complaint model.Complaint
	err := s.db.WithContext(ctx).
		Preload("Attachments").
		First(&complaint, "ticket_id = ?", ticketID).Error
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// TicketIDExists reports whether a ticket identifier is already taken.
func (s *gormStore) TicketIDExists(ctx context.Context, ticketID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Complaint{}).
		Where("ticket_id = ?", ticketID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// complaintOrderColumns maps the public ordering keys to SQL columns.
var complaintOrderColumns = map[string]string{
	"submitted_at": "submitted_at",
	"priority":     "priority",
	"status":       "status",
}

// ListComplaints returns one page of complaints plus the total match count.
func (s *gormStore) ListComplaints(ctx context.Context, q ComplaintQuery) ([]model.Complaint, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.Complaint{})

	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Priority != "" {
		tx = tx.Where("priority = ?", q.Priority)
	}
	if q.IssueType != "" {
		tx = tx.Where("issue_type = ?", q.IssueType)
	}
	if q.Ward != "" {
		tx = tx.Where("ward = ?", q.Ward)
	}
	if q.Block != "" {
		tx = tx.Where("block = ?", q.Block)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		tx = tx.Where(
			"ticket_id LIKE ? OR room_number LIKE ? OR bed_number LIKE ? OR description LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}

	column, ok := complaintOrderColumns[q.OrderBy]
	if !ok {
		column = "submitted_at"
		q.Descending = true
	}
	order := column
	if q.Descending {
		order += " DESC"
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	var complaints []model.Complaint
	err := tx.Preload("Attachments").
		Order(order).
		Limit(limit).
		Offset(offset).
		Find(&complaints).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}
	return complaints, total, nil
}

// ListRooms returns all rooms matching the query.
func (s *gormStore) ListRooms(ctx context.Context, q RoomQuery) ([]model.Room, error) {
	tx := s.db.WithContext(ctx).Model(&model.Room{})

	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Ward != "" {
		tx = tx.Where("ward = ?", q.Ward)
	}
	if q.Speciality != "" {
		tx = tx.Where("speciality = ?", q.Speciality)
	}
	if q.RoomType != "" {
		tx = tx.Where("room_type = ?", q.RoomType)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		tx = tx.Where("room_no LIKE ? OR bed_no LIKE ? OR block LIKE ?", like, like, like)
	}

	var rooms []model.Room
	if err := tx.Order("block, floor_no, room_no").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}
