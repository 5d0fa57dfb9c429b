package model

import "time"

// ComplaintAttachment is one uploaded image owned by exactly one complaint.
// Ref is an opaque blob-storage reference; the row is deleted when the
// attachment is dropped from an update's retained set or when the parent
// complaint is deleted.
type ComplaintAttachment struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	ComplaintID int64     `gorm:"not null;index" json:"complaint_id"`
	Ref         string    `gorm:"size:512;not null" json:"ref"`
	CreatedAt   time.Time `json:"created_at"`

	// Associations
	Complaint *Complaint `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
