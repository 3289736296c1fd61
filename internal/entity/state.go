package entity

import "fmt"

//go:generate go tool stringer -type=State -output=state_string.go

// State is the change-tracking state of an entity.
type State int

const (
	Detached State = iota
	Unchanged
	Added
	Modified
	Deleted
)

// IsChanged reports whether the state represents a pending change.
func (s State) IsChanged() bool {
	return s == Added || s == Modified || s == Deleted
}

// ParseState parses the wire name of a state.
func ParseState(s string) (State, error) {
	for st := Detached; st <= Deleted; st++ {
		if st.String() == s {
			return st, nil
		}
	}

	return Detached, fmt.Errorf("unknown entity state %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	st, err := ParseState(string(text))
	if err != nil {
		return err
	}

	*s = st

	return nil
}
