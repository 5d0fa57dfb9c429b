// Package attachment manages the images associated with complaints.
package attachment

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"complaint-tracker-backend/internal/model"
)

// File is one uploaded image payload.
type File struct {
	Name string
	Data []byte
}

// Manager owns complaint attachment rows and their blobs. Row operations run
// against the *gorm.DB handed in by the caller, so a workflow operation can
// fold them into its own transaction.
type Manager struct {
	blobs BlobStore
}

// NewManager creates a manager backed by the given blob store.
func NewManager(blobs BlobStore) *Manager {
	return &Manager{blobs: blobs}
}

// Attach creates one attachment per file, each owned by the given complaint.
func (m *Manager) Attach(tx *gorm.DB, complaintID int64, files []File) ([]model.ComplaintAttachment, error) {
	created := make([]model.ComplaintAttachment, 0, len(files))
	for _, f := range files {
		ref, err := m.blobs.Save(f.Name, f.Data)
		if err != nil {
			return nil, fmt.Errorf("save blob %q: %w", f.Name, err)
		}
		att := model.ComplaintAttachment{ComplaintID: complaintID, Ref: ref}
		if err := tx.Create(&att).Error; err != nil {
			return nil, fmt.Errorf("create attachment for complaint %d: %w", complaintID, err)
		}
		created = append(created, att)
	}
	return created, nil
}

// Replace deletes every existing attachment of the complaint whose ID is not
// in retainedIDs (all of them when retainedIDs is empty), then attaches the
// new files. Callers must supply the full retain set each time.
func (m *Manager) Replace(tx *gorm.DB, complaintID int64, retainedIDs []int64, files []File) ([]model.ComplaintAttachment, error) {
	var existing []model.ComplaintAttachment
	if err := tx.Where("complaint_id = ?", complaintID).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("list attachments for complaint %d: %w", complaintID, err)
	}

	retained := make(map[int64]bool, len(retainedIDs))
	for _, id := range retainedIDs {
		retained[id] = true
	}

	var kept []model.ComplaintAttachment
	for _, att := range existing {
		if retained[att.ID] {
			kept = append(kept, att)
			continue
		}
		if err := tx.Delete(&model.ComplaintAttachment{}, att.ID).Error; err != nil {
			return nil, fmt.Errorf("delete attachment %d: %w", att.ID, err)
		}
		if err := m.blobs.Delete(att.Ref); err != nil {
			log.Printf("Warning: could not delete blob %s: %v", att.Ref, err)
		}
	}

	added, err := m.Attach(tx, complaintID, files)
	if err != nil {
		return nil, err
	}
	return append(kept, added...), nil
}
