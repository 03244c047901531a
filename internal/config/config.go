// Package config provides YAML-based game configuration loading for flagquest.
package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/flagquest/internal/levels"
	"github.com/vovakirdan/flagquest/internal/remote"
	"github.com/vovakirdan/flagquest/internal/run"
)

// Game contains all tunable settings.
type Game struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Levels  LevelsConfig  `yaml:"levels"`
	Timer   TimerConfig   `yaml:"timer"`
	Economy EconomyConfig `yaml:"economy"`
	Remote  remote.Config `yaml:"remote"`
}

// CatalogConfig points at an alternative flag catalog.
type CatalogConfig struct {
	Path string `yaml:"path"` // Empty uses the built-in catalog search order
}

// LevelsConfig defines level pool generation.
type LevelsConfig struct {
	Questions     int `yaml:"questions"`      // Questions per run
	PoolSize      int `yaml:"pool_size"`      // Flags per level pool
	Nearest       int `yaml:"nearest"`        // Candidates kept nearest to the target difficulty
	MinCandidates int `yaml:"min_candidates"` // Below this the difficulty band is ignored
}

// TimerConfig defines timed-mode and input-lock durations.
type TimerConfig struct {
	Pace        Pace          `yaml:"pace"`
	Question    time.Duration `yaml:"question"`
	Tick        time.Duration `yaml:"tick"`
	Pause       time.Duration `yaml:"pause"`
	WrongLock   time.Duration `yaml:"wrong_lock"`
	CorrectLock time.Duration `yaml:"correct_lock"`
}

// EconomyConfig defines hearts and the daily spin.
type EconomyConfig struct {
	MaxHearts    int           `yaml:"max_hearts"`
	HeartRegen   time.Duration `yaml:"heart_regen"`
	SpinCooldown time.Duration `yaml:"spin_cooldown"`
	SpinPrizes   []int         `yaml:"spin_prizes"`
}

// Pace is a named question-timer preset.
type Pace string

const (
	PaceRelaxed Pace = "relaxed"
	PaceNormal  Pace = "normal"
	PaceBlitz   Pace = "blitz"
	PaceCustom  Pace = "custom" // Use timer.question as given
)

// QuestionTimeForPace returns the per-question countdown for a preset.
func QuestionTimeForPace(p Pace) time.Duration {
	switch p {
	case PaceRelaxed:
		return 15 * time.Second
	case PaceBlitz:
		return 6 * time.Second
	default:
		return 10 * time.Second
	}
}

// ApplyPace sets the question timer from a preset.
func ApplyPace(cfg *Game, p Pace) {
	cfg.Timer.Pace = p
	if p != PaceCustom {
		cfg.Timer.Question = QuestionTimeForPace(p)
	}
}

// Validate checks enumerations and fills zero values with defaults.
func (g *Game) Validate() error {
	d := DefaultGame()

	switch g.Timer.Pace {
	case "":
		g.Timer.Pace = PaceNormal
	case PaceRelaxed, PaceNormal, PaceBlitz, PaceCustom:
	default:
		return fmt.Errorf("config: unknown pace %q", g.Timer.Pace)
	}

	switch g.Remote.Backend {
	case "":
		g.Remote.Backend = d.Remote.Backend
	case "memory", "sqlite", "sqlite3", "postgres", "postgresql", "mysql", "redis":
	default:
		return fmt.Errorf("config: unknown remote backend %q", g.Remote.Backend)
	}
	if g.Remote.Backend == "redis" && g.Remote.Addr == "" {
		return fmt.Errorf("config: redis backend needs remote.addr")
	}

	fillInt(&g.Levels.Questions, d.Levels.Questions)
	fillInt(&g.Levels.PoolSize, d.Levels.PoolSize)
	fillInt(&g.Levels.Nearest, d.Levels.Nearest)
	fillInt(&g.Levels.MinCandidates, d.Levels.MinCandidates)
	if g.Levels.Questions > 50 {
		return fmt.Errorf("config: levels.questions %d exceeds 50", g.Levels.Questions)
	}

	if g.Timer.Question <= 0 {
		g.Timer.Question = QuestionTimeForPace(g.Timer.Pace)
	}
	fillDuration(&g.Timer.Tick, d.Timer.Tick)
	fillDuration(&g.Timer.Pause, d.Timer.Pause)
	fillDuration(&g.Timer.WrongLock, d.Timer.WrongLock)
	fillDuration(&g.Timer.CorrectLock, d.Timer.CorrectLock)
	if g.Timer.Tick >= g.Timer.Question {
		return fmt.Errorf("config: timer.tick %v must be shorter than timer.question %v", g.Timer.Tick, g.Timer.Question)
	}

	fillInt(&g.Economy.MaxHearts, d.Economy.MaxHearts)
	fillDuration(&g.Economy.HeartRegen, d.Economy.HeartRegen)
	fillDuration(&g.Economy.SpinCooldown, d.Economy.SpinCooldown)
	if len(g.Economy.SpinPrizes) == 0 {
		g.Economy.SpinPrizes = d.Economy.SpinPrizes
	}
	for _, p := range g.Economy.SpinPrizes {
		if p <= 0 {
			return fmt.Errorf("config: spin prize %d must be positive", p)
		}
	}
	return nil
}

func fillInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func fillDuration(v *time.Duration, def time.Duration) {
	if *v <= 0 {
		*v = def
	}
}

// LevelParams converts the levels section for the level builder.
func (g Game) LevelParams() levels.Params {
	p := levels.DefaultParams()
	p.QuestionCount = g.Levels.Questions
	p.PoolSize = g.Levels.PoolSize
	p.Nearest = g.Levels.Nearest
	p.MinCandidates = g.Levels.MinCandidates
	return p
}

// Timing converts the timer section for the run state machine.
func (g Game) Timing() run.Timing {
	return run.Timing{
		Question:    g.Timer.Question,
		Tick:        g.Timer.Tick,
		Pause:       g.Timer.Pause,
		WrongLock:   g.Timer.WrongLock,
		CorrectLock: g.Timer.CorrectLock,
	}
}
