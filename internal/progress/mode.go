// Package progress computes stars, unlocks and rewards from run outcomes and
// merges per-user progress records without ever lowering them.
package progress

import "fmt"

// Mode is the game mode a run is played in.
type Mode int

const (
	ModeClassic   Mode = iota // Untimed, stars from mistakes
	ModeTimeTrial             // Per-question countdown, stars from score and mistakes
	ModeLocal                 // Classic rules, kept on its own track, no coins
)

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModeClassic, ModeTimeTrial, ModeLocal}
}

// String returns the persisted key for the mode.
func (m Mode) String() string {
	switch m {
	case ModeClassic:
		return "classic"
	case ModeTimeTrial:
		return "timetrial"
	case ModeLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Title returns a human-readable name for the mode.
func (m Mode) Title() string {
	switch m {
	case ModeClassic:
		return "Classic"
	case ModeTimeTrial:
		return "Time Trial"
	case ModeLocal:
		return "Local"
	default:
		return "Unknown"
	}
}

// ParseMode parses a persisted mode key.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "classic", "":
		return ModeClassic, nil
	case "timetrial", "time_trial", "timed":
		return ModeTimeTrial, nil
	case "local":
		return ModeLocal, nil
	default:
		return ModeClassic, fmt.Errorf("progress: unknown mode %q", s)
	}
}

// Timed reports whether runs in this mode have a per-question countdown.
func (m Mode) Timed() bool {
	switch m {
	case ModeTimeTrial:
		return true
	case ModeClassic, ModeLocal:
		return false
	default:
		return false
	}
}

// EarnsCoins reports whether a first clear in this mode pays the coin reward.
func (m Mode) EarnsCoins() bool {
	switch m {
	case ModeClassic, ModeTimeTrial:
		return true
	case ModeLocal:
		return false
	default:
		return false
	}
}

// SubmitsResults reports whether runs in this mode post to the best-score board.
func (m Mode) SubmitsResults() bool {
	switch m {
	case ModeTimeTrial:
		return true
	case ModeClassic, ModeLocal:
		return false
	default:
		return false
	}
}
