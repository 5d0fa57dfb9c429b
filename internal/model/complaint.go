package model

import "time"

// Complaint workflow statuses.
const (
	ComplaintStatusOpen       = "open"
	ComplaintStatusInProgress = "in_progress"
	ComplaintStatusResolved   = "resolved"
	ComplaintStatusClosed     = "closed"
	ComplaintStatusOnHold     = "on_hold"
)

// Complaint priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Built-in issue types. The set is extensible through IssueCategory rows.
const (
	IssueCleanliness = "cleanliness"
	IssueElectrical  = "electrical"
	IssuePlumbing    = "plumbing"
	IssueOther       = "other"
)

// AnonymousSubmitter is recorded when no actor identity is supplied.
const AnonymousSubmitter = "Anonymous"

// ComplaintStatuses lists the recognized workflow statuses.
var ComplaintStatuses = []string{
	ComplaintStatusOpen,
	ComplaintStatusInProgress,
	ComplaintStatusResolved,
	ComplaintStatusClosed,
	ComplaintStatusOnHold,
}

// ComplaintPriorities lists the recognized priorities.
var ComplaintPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// IsValidComplaintStatus reports whether s is a recognized workflow status.
func IsValidComplaintStatus(s string) bool {
	for _, v := range ComplaintStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsValidPriority reports whether p is a recognized priority.
func IsValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Complaint is a facilities complaint ticket. The room descriptor fields are
// copied from the originating Room at submission time and are never re-synced
// afterwards; they record where the complaint was filed, not where the room
// is now.
type Complaint struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	TicketID    string    `gorm:"size:12;not null;uniqueIndex" json:"ticket_id"`
	SubmittedAt time.Time `gorm:"not null;index" json:"submitted_at"`

	// Room snapshot
	BedNumber  string `gorm:"size:20;not null;index:idx_complaint_room" json:"bed_number"`
	Block      string `gorm:"size:50;not null;index:idx_complaint_room" json:"block"`
	RoomNumber string `gorm:"size:20;not null;index:idx_complaint_room" json:"room_number"`
	Floor      int    `gorm:"not null;index:idx_complaint_room" json:"floor"`
	Ward       string `gorm:"size:50;not null;index:idx_complaint_room" json:"ward"`
	Speciality string `gorm:"size:100;not null;index:idx_complaint_room" json:"speciality"`
	RoomType   string `gorm:"size:50;not null;index:idx_complaint_room" json:"room_type"`
	RoomStatus string `gorm:"size:10;not null" json:"room_status"`

	// Patient input
	IssueType   string `gorm:"size:50;not null;index" json:"issue_type"`
	Description string `gorm:"type:text;not null" json:"description"`
	Priority    string `gorm:"size:10;not null" json:"priority"`
	SubmittedBy string `gorm:"size:100;not null" json:"submitted_by"`

	// Status tracking
	Status             string     `gorm:"size:15;not null;default:open;index" json:"status"`
	AssignedDepartment *string    `gorm:"size:100" json:"assigned_department"`
	ResolvedBy         *string    `gorm:"size:100" json:"resolved_by"`
	ResolvedAt         *time.Time `json:"resolved_at"`
	Remarks            *string    `gorm:"type:text" json:"remarks"`

	// Associations
	Attachments []ComplaintAttachment `gorm:"foreignKey:ComplaintID" json:"attachments"`
}
