package quiz

import "errors"

// Domain errors reported back to the calling connection inside
// acknowledgement payloads. None of them is fatal for the connection.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAlreadyActive       = errors.New("quiz already in progress")
	ErrNoQuestions         = errors.New("no questions added")
	ErrDuplicateSubmission = errors.New("answer already submitted")
	ErrInvalidState        = errors.New("no active question")
	ErrUnknownParticipant  = errors.New("unknown participant")
	ErrInvalidQuestion     = errors.New("invalid question")
	ErrAlreadyInRoom       = errors.New("connection already in a room")
	ErrNoRoomCodeAvailable = errors.New("no room code available")
)
