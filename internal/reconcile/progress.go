package reconcile

import (
	"context"
	"fmt"
	"maps"

	"github.com/vovakirdan/flagquest/internal/progress"
	"github.com/vovakirdan/flagquest/internal/storage"
)

// StarsUpdate reports the effect of recording a run's stars.
type StarsUpdate struct {
	LevelID    int
	Before     int  // Best-ever stars before the run
	After      int  // Best-ever stars after the run
	FirstClear bool // Level went from zero to some stars
	Record     progress.Record
}

// Book loads every mode's progress for an identity, merged across local and
// remote. When the merge changes either side it is written back.
func (r *Reconciler) Book(ctx context.Context, id Identity) map[string]progress.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.syncBook(ctx, id, nil)
}

// LoadProgress returns the merged progress for one mode.
func (r *Reconciler) LoadProgress(ctx context.Context, id Identity, mode progress.Mode) progress.Record {
	book := r.Book(ctx, id)
	if rec, ok := book[mode.String()]; ok {
		return rec
	}
	return progress.NewRecord(progress.Stars{})
}

// RecordStars folds a run's stars into the best-ever record for level and
// mode. Recording the same result twice leaves state unchanged and reports
// FirstClear only the first time.
func (r *Reconciler) RecordStars(ctx context.Context, id Identity, mode progress.Mode, levelID, stars int) (StarsUpdate, error) {
	if levelID < 1 || levelID > progress.TotalLevels {
		return StarsUpdate{}, fmt.Errorf("%w: %d", ErrInvalidLevel, levelID)
	}
	if stars < 0 || stars > progress.MaxStarsPerLevel {
		return StarsUpdate{}, fmt.Errorf("%w: %d", ErrInvalidStars, stars)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var update StarsUpdate
	r.syncBook(ctx, id, func(book map[string]progress.Record) {
		current, ok := book[mode.String()]
		if !ok {
			current = progress.NewRecord(progress.Stars{})
		}
		before := current.Stars().Get(levelID)
		next := progress.MergeRecords(current, progress.NewRecord(progress.Stars{levelID: stars}))
		book[mode.String()] = next
		update = StarsUpdate{
			LevelID:    levelID,
			Before:     before,
			After:      next.Stars().Get(levelID),
			FirstClear: before == 0 && stars > 0,
			Record:     next,
		}
	})
	return update, nil
}

// syncBook merges local and remote progress, applies mutate to the merged
// book, then writes back whichever side differs. Callers hold r.mu.
func (r *Reconciler) syncBook(ctx context.Context, id Identity, mutate func(map[string]progress.Record)) map[string]progress.Record {
	local := map[string]progress.Record{}
	r.readLocal(id, storage.PurposeProgress, &local)

	merged := mergeBooks(local, nil)
	rec, remoteOK := r.readRemote(ctx, id)
	if remoteOK {
		merged = mergeBooks(merged, rec.Progress)
	}
	if mutate != nil {
		mutate(merged)
	}

	if !booksEqual(merged, local) {
		r.writeLocal(id, storage.PurposeProgress, merged)
	}
	if remoteOK && !booksEqual(merged, rec.Progress) {
		if err := r.remote.ReplaceProgress(ctx, id.UserID, merged); err != nil {
			r.log.Warn("remote progress write failed", "user", id.UserID, "error", err)
		}
	}
	return merged
}

// mergeBooks merges two mode-keyed progress maps. Unknown mode keys are
// carried through untouched.
func mergeBooks(a, b map[string]progress.Record) map[string]progress.Record {
	out := make(map[string]progress.Record, max(len(a), len(b)))
	for mode, rec := range a {
		out[mode] = progress.MergeRecords(rec, progress.Record{})
	}
	for mode, rec := range b {
		if cur, ok := out[mode]; ok {
			out[mode] = progress.MergeRecords(cur, rec)
		} else {
			out[mode] = progress.MergeRecords(rec, progress.Record{})
		}
	}
	return out
}

func booksEqual(a, b map[string]progress.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for mode, ra := range a {
		rb, ok := b[mode]
		if !ok || ra.UnlockedUntil != rb.UnlockedUntil || !maps.Equal(ra.StarsByLevel, rb.StarsByLevel) {
			return false
		}
	}
	return true
}
