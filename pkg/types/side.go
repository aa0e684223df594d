package types

import "fmt"

// Side is the share type held by a position: YES or NO.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Opposite returns the other side of a binary market.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	switch s {
	case SideYes, SideNo:
		return true
	default:
		return false
	}
}

// ParseSide converts a string into a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideYes:
		return SideYes, nil
	case SideNo:
		return SideNo, nil
	default:
		return "", fmt.Errorf("unknown side %q", s)
	}
}

// Status is the lifecycle state of a position.
type Status string

const (
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"  // normal exit: take-profit or explicit close
	StatusStopped Status = "stopped" // stop-loss triggered
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	switch s {
	case StatusClosed, StatusStopped:
		return true
	case StatusOpen:
		return false
	default:
		return false
	}
}
