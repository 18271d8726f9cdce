package types

import (
	"fmt"
)

// Side represents a debate participant's assigned role
type Side string

const (
	SideAffirmative Side = "affirmative" // Argues in favor of the topic
	SideOpposition  Side = "opposition"  // Argues against the topic
)

// DebateStatus represents the lifecycle state of a debate
type DebateStatus string

const (
	StatusPending   DebateStatus = "pending"   // Created but not yet started
	StatusActive    DebateStatus = "active"    // Participants are exchanging arguments
	StatusJudging   DebateStatus = "judging"   // All rounds complete, awaiting verdict
	StatusCompleted DebateStatus = "completed" // Verdict delivered, terminal state
)

var (
	// AllSides contains all valid sides
	AllSides = []Side{
		SideAffirmative,
		SideOpposition,
	}

	// AllDebateStatuses contains all valid debate statuses
	AllDebateStatuses = []DebateStatus{
		StatusPending,
		StatusActive,
		StatusJudging,
		StatusCompleted,
	}

	// sideMap maps string values to Side
	sideMap = map[string]Side{
		string(SideAffirmative): SideAffirmative,
		string(SideOpposition):  SideOpposition,
	}

	// statusMap maps string values to DebateStatus
	statusMap = map[string]DebateStatus{
		string(StatusPending):   StatusPending,
		string(StatusActive):    StatusActive,
		string(StatusJudging):   StatusJudging,
		string(StatusCompleted): StatusCompleted,
	}
)

// Error types for invalid values
var (
	ErrInvalidSide         = fmt.Errorf("invalid side")
	ErrInvalidDebateStatus = fmt.Errorf("invalid debate status")
)

// IsValid checks if the Side is valid
func (s Side) IsValid() bool {
	_, ok := sideMap[string(s)]
	return ok
}

// String converts the enum to string
func (s Side) String() string {
	return string(s)
}

// Opposite returns the other side of the debate
func (s Side) Opposite() Side {
	if s == SideAffirmative {
		return SideOpposition
	}
	return SideAffirmative
}

// ParseSide parses a string into a Side
func ParseSide(s string) (Side, error) {
	if side, ok := sideMap[s]; ok {
		return side, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidSide, s)
}

// IsValid checks if the DebateStatus is valid
func (s DebateStatus) IsValid() bool {
	_, ok := statusMap[string(s)]
	return ok
}

// String converts the enum to string
func (s DebateStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no transition may leave this status
func (s DebateStatus) IsTerminal() bool {
	return s == StatusCompleted
}

// ParseDebateStatus parses a string into a DebateStatus
func ParseDebateStatus(s string) (DebateStatus, error) {
	if status, ok := statusMap[s]; ok {
		return status, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidDebateStatus, s)
}

// CanTransition reports whether a debate may move from s to next.
// Legal transitions: pending→active, active→judging, judging→completed.
func (s DebateStatus) CanTransition(next DebateStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusActive
	case StatusActive:
		return next == StatusJudging
	case StatusJudging:
		return next == StatusCompleted
	default:
		return false
	}
}
