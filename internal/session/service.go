// Package session wires a single play session: it builds the questions,
// drives the run and, exactly once at the end, records stars, pays rewards,
// charges lives and submits timed results.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flagquest/internal/economy"
	"github.com/vovakirdan/flagquest/internal/levels"
	"github.com/vovakirdan/flagquest/internal/progress"
	"github.com/vovakirdan/flagquest/internal/quiz"
	"github.com/vovakirdan/flagquest/internal/reconcile"
	"github.com/vovakirdan/flagquest/internal/run"
)

var (
	ErrUnknownLevel = errors.New("session: unknown level")
	ErrLevelLocked  = errors.New("session: level locked")
)

// ResultSink receives timed-mode results.
type ResultSink interface {
	SubmitResult(ctx context.Context, userID string, levelID, score int) error
}

// Config holds what a Service needs.
type Config struct {
	Levels        levels.Set
	Reconciler    *reconcile.Reconciler
	Results       ResultSink // Optional
	Timing        run.Timing
	QuestionCount int // 0 uses each level's own count
	Seed          int64
	Logger        *log.Logger
}

// Service starts sessions. One Service is shared by every player.
type Service struct {
	levels        levels.Set
	rec           *reconcile.Reconciler
	results       ResultSink
	timing        run.Timing
	questionCount int
	log           *log.Logger

	rngMu sync.Mutex
	rng   levels.Rand
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return &Service{
		levels:        cfg.Levels,
		rec:           cfg.Reconciler,
		results:       cfg.Results,
		timing:        cfg.Timing,
		questionCount: cfg.QuestionCount,
		log:           cfg.Logger,
		rng:           levels.NewRand(cfg.Seed),
	}
}

// Levels returns the level definitions.
func (s *Service) Levels() levels.Set {
	return s.levels
}

// Reconciler returns the persistence layer.
func (s *Service) Reconciler() *reconcile.Reconciler {
	return s.rec
}

// sessionRand derives an independent source so concurrent sessions never
// share one.
func (s *Service) sessionRand() levels.Rand {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return levels.NewRand(int64(s.rng.Intn(math.MaxInt32)) + 1)
}

// LevelStatus describes one level for a picker.
type LevelStatus struct {
	ID          int
	Stars       int
	Unlocked    bool
	Requirement progress.Requirement
}

// Overview returns the status of every level in mode.
func (s *Service) Overview(ctx context.Context, id reconcile.Identity, mode progress.Mode) []LevelStatus {
	rec := s.rec.LoadProgress(ctx, id, mode)
	stars := rec.Stars()
	out := make([]LevelStatus, 0, len(s.levels))
	for _, def := range s.levels {
		out = append(out, LevelStatus{
			ID:          def.ID,
			Stars:       stars.Get(def.ID),
			Unlocked:    rec.IsUnlocked(def.ID),
			Requirement: progress.StarsNeededForLevelID(def.ID, stars),
		})
	}
	return out
}

// Start opens a session on a level. The level must be unlocked in mode and
// the identity must have a heart left.
func (s *Service) Start(ctx context.Context, id reconcile.Identity, levelID int, mode progress.Mode) (*Session, error) {
	def, ok := s.levels.ByID(levelID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, levelID)
	}
	if !s.rec.LoadProgress(ctx, id, mode).IsUnlocked(levelID) {
		return nil, fmt.Errorf("%w: %d", ErrLevelLocked, levelID)
	}
	if s.rec.Hearts(id).Current <= 0 {
		return nil, economy.ErrNoHearts
	}

	rng := s.sessionRand()
	questions := quiz.Generate(def, s.questionCount, rng)
	r, err := run.New(levelID, mode, questions, s.timing)
	if err != nil {
		return nil, fmt.Errorf("session: level %d: %w", levelID, err)
	}

	s.log.Debug("session started", "identity", id, "level", levelID, "mode", mode, "questions", len(questions))
	return &Session{svc: s, id: id, run: r, rng: rng}, nil
}
