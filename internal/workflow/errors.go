package workflow

import "errors"

// Rejection taxonomy for workflow operations. All of these are recoverable
// by the caller and are surfaced as structured rejections, never retried
// internally.
var (
	ErrInvalidToken       = errors.New("workflow: invalid room token")
	ErrRoomNotFound       = errors.New("workflow: room not found")
	ErrRoomInactive       = errors.New("workflow: room is not active")
	ErrDuplicateComplaint = errors.New("workflow: open complaint already exists for this room and issue")
	ErrComplaintNotFound  = errors.New("workflow: complaint not found")
	ErrInvalidStatus      = errors.New("workflow: unrecognized status")
)
