// Package remote is the per-user record store that survives across devices:
// coins, progress per mode, language, daily spin and timed-mode best scores.
package remote

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/vovakirdan/flagquest/internal/progress"
)

// ErrNotFound is returned when no record exists for a user.
var ErrNotFound = errors.New("remote: record not found")

// Record is one user's remote state.
type Record struct {
	UserID            string                     `json:"user_id"`
	Coins             int                        `json:"coins"`
	Progress          map[string]progress.Record `json:"progress"`
	PreferredLanguage string                     `json:"preferred_language"`
	LastSpinAt        time.Time                  `json:"last_spin_at"`
}

// Clone returns a copy that shares no maps with r.
func (r Record) Clone() Record {
	out := r
	out.Progress = make(map[string]progress.Record, len(r.Progress))
	for mode, rec := range r.Progress {
		rec.StarsByLevel = maps.Clone(rec.StarsByLevel)
		out.Progress[mode] = rec
	}
	return out
}

// Patch lists the fields a partial update may set. Progress and user id are
// deliberately absent: progress only changes through ReplaceProgress.
type Patch struct {
	Coins             *int
	PreferredLanguage *string
	LastSpinAt        *time.Time
}

// Empty reports whether the patch sets nothing.
func (p Patch) Empty() bool {
	return p.Coins == nil && p.PreferredLanguage == nil && p.LastSpinAt == nil
}

func (p Patch) apply(r *Record) {
	if p.Coins != nil {
		r.Coins = max(*p.Coins, 0)
	}
	if p.PreferredLanguage != nil {
		r.PreferredLanguage = *p.PreferredLanguage
	}
	if p.LastSpinAt != nil {
		r.LastSpinAt = p.LastSpinAt.UTC()
	}
}

// Result is a best-score row for one user on one level.
type Result struct {
	UserID     string
	LevelID    int
	BestScore  int
	PlaysCount int
	UpdatedAt  time.Time
}

// Store is the asynchronous CRUD boundary to the remote record.
type Store interface {
	// Ensure creates an empty record if none exists. Idempotent.
	Ensure(ctx context.Context, userID string) error

	// Read returns the user's record or ErrNotFound.
	Read(ctx context.Context, userID string) (Record, error)

	// Patch updates the fields set in p. Returns ErrNotFound if absent.
	Patch(ctx context.Context, userID string, p Patch) error

	// ReplaceProgress overwrites the progress map with an already merged one.
	ReplaceProgress(ctx context.Context, userID string, prog map[string]progress.Record) error

	// SubmitResult records a timed run: best score kept as max, plays incremented.
	SubmitResult(ctx context.Context, userID string, levelID, score int) error

	// TopResults returns the best scores on a level, highest first.
	TopResults(ctx context.Context, levelID, limit int) ([]Result, error)

	// Close releases the backend.
	Close() error
}

func emptyRecord(userID string) Record {
	return Record{UserID: userID, Progress: map[string]progress.Record{}}
}
