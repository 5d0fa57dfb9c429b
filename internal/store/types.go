package store

// RoomKey is the full descriptor tuple identifying a room. Duplicate
// suppression and room resolution both match on every field; partial matches
// never count.
type RoomKey struct {
	BedNo      string
	RoomNo     string
	Block      string
	FloorNo    int
	Ward       string
	Speciality string
	RoomType   string
}

// ComplaintQuery describes the filters applied to a complaint listing.
type ComplaintQuery struct {
	Status    string
	Priority  string
	IssueType string
	Ward      string
	Block     string

	// Search matches ticket id, room number, bed number and description.
	Search string

	// OrderBy is one of submitted_at, priority, status; empty means
	// submitted_at. Descending defaults to true for submitted_at.
	OrderBy    string
	Descending bool

	Limit  int
	Offset int
}

// RoomQuery describes the filters applied to a room listing.
type RoomQuery struct {
	Status     string
	Ward       string
	Speciality string
	RoomType   string

	// Search matches room number, bed number and block.
	Search string
}

// Pagination bounds, matching the public API contract.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)
