package debate

import (
	"errors"
	"fmt"
)

// Validation error kinds returned by SubmitArgument. Each precondition
// failure maps to exactly one of these so the HTTP layer can report a
// distinct status and message.
var (
	ErrDebateNotFound  = errors.New("debate not found")
	ErrDebateNotActive = errors.New("debate is not active")
	ErrNotParticipant  = errors.New("user is not a participant in this debate")
	ErrSideMismatch    = errors.New("invalid side for this user")
	ErrNotYourTurn     = errors.New("not your turn")
)

// ArgumentTooShortError reports a submission below the minimum word
// count, carrying the actual count for the client message
type ArgumentTooShortError struct {
	Words    int
	MinWords int
}

func (e *ArgumentTooShortError) Error() string {
	return fmt.Sprintf("argument must be at least %d words, current count: %d", e.MinWords, e.Words)
}
