package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/flagquest/internal/remote"
)

//go:embed defaults/config.yaml
var defaultConfigYAML []byte

// DefaultGame returns the hardcoded default configuration.
func DefaultGame() Game {
	return Game{
		Levels: LevelsConfig{
			Questions:     10,
			PoolSize:      20,
			Nearest:       120,
			MinCandidates: 40,
		},
		Timer: TimerConfig{
			Pace:        PaceNormal,
			Question:    10 * time.Second,
			Tick:        120 * time.Millisecond,
			Pause:       1500 * time.Millisecond,
			WrongLock:   120 * time.Millisecond,
			CorrectLock: 150 * time.Millisecond,
		},
		Economy: EconomyConfig{
			MaxHearts:    5,
			HeartRegen:   10 * time.Minute,
			SpinCooldown: 24 * time.Hour,
			SpinPrizes:   []int{25, 50, 50, 75, 100, 150, 250},
		},
		Remote: remote.Config{
			Backend: "sqlite",
		},
	}
}
