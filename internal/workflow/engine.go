// Package workflow implements the complaint submission and status workflow:
// token verification, room resolution, duplicate suppression and status
// transitions.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"complaint-tracker-backend/internal/attachment"
	"complaint-tracker-backend/internal/model"
	"complaint-tracker-backend/internal/store"
	"complaint-tracker-backend/internal/ticket"
	"complaint-tracker-backend/internal/token"
)

// maxTicketAttempts bounds the regenerate-on-collision loop for ticket ids.
const maxTicketAttempts = 10

// SubmitInput carries the patient-supplied complaint fields.
type SubmitInput struct {
	IssueType   string
	Description string
	Priority    string
	SubmittedBy string
	Files       []attachment.File
}

// Notifier receives complaint events worth pushing to subscribed staff.
type Notifier interface {
	ComplaintOpened(complaintID int64)
	ComplaintResolved(complaintID int64)
}

// Engine validates submissions and enforces the complaint status workflow.
type Engine struct {
	store       store.Store
	codec       *token.Codec
	attachments *attachment.Manager
	notifier    Notifier
	now         func() time.Time
}

// NewEngine builds an engine with its collaborators. notifier may be nil.
func NewEngine(s store.Store, codec *token.Codec, attachments *attachment.Manager, notifier Notifier) *Engine {
	return &Engine{
		store:       s,
		codec:       codec,
		attachments: attachments,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Submit validates a scanned room token and files a new complaint.
//
// Validation (token, room resolution, duplicate suppression) runs without
// side effects; only the final persist step commits, so a rejected submission
// leaves no partial state behind.
func (e *Engine) Submit(ctx context.Context, payload, signature string, in SubmitInput) (*model.Complaint, error) {
	identity, err := e.codec.Verify(payload, signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	key := roomKey(identity)
	room, err := e.store.FindRoomByIdentity(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve room: %w", err)
	}
	if room.Status != model.RoomStatusActive {
		return nil, ErrRoomInactive
	}

	duplicate, err := e.store.HasOpenComplaint(ctx, in.IssueType, key)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, ErrDuplicateComplaint
	}

	ticketID, err := e.freshTicketID(ctx)
	if err != nil {
		return nil, err
	}

	submittedBy := in.SubmittedBy
	if submittedBy == "" {
		submittedBy = model.AnonymousSubmitter
	}

	complaint := &model.Complaint{
		TicketID:    ticketID,
		SubmittedAt: e.now().UTC(),

		BedNumber:  room.BedNo,
		Block:      room.Block,
		RoomNumber: room.RoomNo,
		Floor:      room.FloorNo,
		Ward:       room.Ward,
		Speciality: room.Speciality,
		RoomType:   room.RoomType,
		RoomStatus: room.Status,

		IssueType:   in.IssueType,
		Description: in.Description,
		Priority:    in.Priority,
		SubmittedBy: submittedBy,
		Status:      model.ComplaintStatusOpen,
	}

	err = e.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Attachments").Create(complaint).Error; err != nil {
			return fmt.Errorf("create complaint: %w", err)
		}
		attached, err := e.attachments.Attach(tx, complaint.ID, in.Files)
		if err != nil {
			return err
		}
		complaint.Attachments = attached
		return nil
	})
	if err != nil {
		return nil, err
	}

	if e.notifier != nil {
		e.notifier.ComplaintOpened(complaint.ID)
	}
	return complaint, nil
}

// Transition moves a complaint to newStatus and records remarks. Entering
// resolved additionally sets the resolver identity (nil when the actor is
// anonymous) and the resolution timestamp in the same update; leaving
// resolved never clears the resolution timestamp.
func (e *Engine) Transition(ctx context.Context, ticketID, newStatus, remarks, actor string) (*model.Complaint, error) {
	if !model.IsValidComplaintStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	var complaint model.Complaint
	err := e.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&complaint, "ticket_id = ?", ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrComplaintNotFound
			}
			return fmt.Errorf("load complaint %s: %w", ticketID, err)
		}

		updates := map[string]any{
			"status":  newStatus,
			"remarks": remarks,
		}
		if newStatus == model.ComplaintStatusResolved {
			updates["resolved_at"] = e.now().UTC()
			if actor != "" {
				updates["resolved_by"] = actor
			} else {
				updates["resolved_by"] = nil
			}
		}

		if err := tx.Model(&complaint).Updates(updates).Error; err != nil {
			return fmt.Errorf("update complaint %s: %w", ticketID, err)
		}
		return tx.Preload("Attachments").First(&complaint, "id = ?", complaint.ID).Error
	})
	if err != nil {
		return nil, err
	}

	if complaint.Status == model.ComplaintStatusResolved && e.notifier != nil {
		e.notifier.ComplaintResolved(complaint.ID)
	}
	return &complaint, nil
}

// ReplaceAttachments swaps the attachment set of a complaint: everything not
// in retainedIDs is deleted, then the new files are attached. One visible
// state change.
func (e *Engine) ReplaceAttachments(ctx context.Context, ticketID string, retainedIDs []int64, files []attachment.File) (*model.Complaint, error) {
	var complaint model.Complaint
	err := e.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&complaint, "ticket_id = ?", ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrComplaintNotFound
			}
			return fmt.Errorf("load complaint %s: %w", ticketID, err)
		}

		attachments, err := e.attachments.Replace(tx, complaint.ID, retainedIDs, files)
		if err != nil {
			return err
		}
		complaint.Attachments = attachments
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// Delete removes a complaint together with its attachments and their blobs.
func (e *Engine) Delete(ctx context.Context, ticketID string) error {
	return e.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var complaint model.Complaint
		if err := tx.First(&complaint, "ticket_id = ?", ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrComplaintNotFound
			}
			return fmt.Errorf("load complaint %s: %w", ticketID, err)
		}
		if _, err := e.attachments.Replace(tx, complaint.ID, nil, nil); err != nil {
			return err
		}
		if err := tx.Delete(&complaint).Error; err != nil {
			return fmt.Errorf("delete complaint %s: %w", ticketID, err)
		}
		return nil
	})
}

// freshTicketID generates a ticket identifier not yet present in the store.
func (e *Engine) freshTicketID(ctx context.Context) (string, error) {
	for i := 0; i < maxTicketAttempts; i++ {
		id := ticket.New()
		taken, err := e.store.TicketIDExists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check ticket id: %w", err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique ticket id after %d attempts", maxTicketAttempts)
}

// roomKey converts a verified token identity into the store lookup key. The
// status carried in the token is ignored; the live room decides activity.
func roomKey(id token.RoomIdentity) store.RoomKey {
	return store.RoomKey{
		BedNo:      id.BedNo,
		RoomNo:     id.RoomNo,
		Block:      id.Block,
		FloorNo:    id.FloorNo,
		Ward:       id.Ward,
		Speciality: id.Speciality,
		RoomType:   id.RoomType,
	}
}
