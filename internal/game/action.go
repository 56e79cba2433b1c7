package game

import "fmt"

// Action is a betting decision taken by the acting seat.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
)

// String returns the lowercase wire name of the action.
func (a Action) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Raise:
		return "raise"
	default:
		return "unknown"
	}
}

// ParseAction parses a wire action name.
func ParseAction(s string) (Action, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "raise":
		return Raise, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Phase is the stage of a hand. Phases advance strictly in order except
// for the jump straight to Showdown on early termination.
type Phase int

const (
	Preflop Phase = iota
	Flop
	Turn
	River
	Showdown
)

// String returns the lowercase wire name of the phase.
func (p Phase) String() string {
	switch p {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "preflop":
		*p = Preflop
	case "flop":
		*p = Flop
	case "turn":
		*p = Turn
	case "river":
		*p = River
	case "showdown":
		*p = Showdown
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}
