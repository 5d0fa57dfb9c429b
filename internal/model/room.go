package model

import "time"

// Room lifecycle statuses.
const (
	RoomStatusActive   = "active"
	RoomStatusInactive = "inactive"
)

// RoomStatuses lists the recognized room statuses.
var RoomStatuses = []string{RoomStatusActive, RoomStatusInactive}

// Room represents a patient room/bed that complaints can be filed against.
type Room struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	BedNo      string `gorm:"size:10;not null;uniqueIndex:idx_room_identity" json:"bed_no"`
	RoomNo     string `gorm:"size:20;not null;uniqueIndex:idx_room_identity" json:"room_no"`
	Block      string `gorm:"size:10;not null;uniqueIndex:idx_room_identity" json:"block"`
	FloorNo    int    `gorm:"not null;uniqueIndex:idx_room_identity" json:"floor_no"`
	Ward       string `gorm:"size:20;not null;uniqueIndex:idx_room_identity" json:"ward"`
	Speciality string `gorm:"size:20;not null;uniqueIndex:idx_room_identity" json:"speciality"`
	RoomType   string `gorm:"size:20;not null;uniqueIndex:idx_room_identity" json:"room_type"`
	Status     string `gorm:"size:10;not null;default:inactive" json:"status"`

	// QRToken caches the signed "payload.signature" value embedded in the
	// printed QR code. Assigned explicitly via the token codec, never by a
	// save hook.
	QRToken string `gorm:"size:1024" json:"qr_token"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidRoomStatus reports whether s is a recognized room status.
func IsValidRoomStatus(s string) bool {
	return s == RoomStatusActive || s == RoomStatusInactive
}
