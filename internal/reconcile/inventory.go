package reconcile

import (
	"time"

	"github.com/vovakirdan/flagquest/internal/economy"
	"github.com/vovakirdan/flagquest/internal/storage"
)

// Hints returns the hint inventory, migrating a legacy stored shape to the
// current one on first read.
func (r *Reconciler) Hints(id Identity) economy.Hints {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hintsLocked(id)
}

func (r *Reconciler) hintsLocked(id Identity) economy.Hints {
	key := storage.Key(id.Namespace(), storage.PurposeHints)
	raw, _, err := r.cache.Get(key)
	if err != nil {
		r.log.Warn("local cache read failed", "identity", id, "purpose", storage.PurposeHints, "error", err)
		return economy.StarterHints()
	}
	hints, migrated, err := economy.DecodeHints([]byte(raw))
	if err != nil {
		r.log.Warn("corrupt hint inventory reset", "identity", id, "error", err)
	}
	if migrated {
		r.writeLocal(id, storage.PurposeHints, hints)
	}
	return hints
}

// ConsumeHint uses one unit of kind.
func (r *Reconciler) ConsumeHint(id Identity, kind economy.HintKind) (economy.Hints, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hints, err := r.hintsLocked(id).Consume(kind)
	if err != nil {
		return hints, err
	}
	r.writeLocal(id, storage.PurposeHints, hints)
	return hints, nil
}

// AddHints credits n units of kind.
func (r *Reconciler) AddHints(id Identity, kind economy.HintKind, n int) (economy.Hints, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hints, err := r.hintsLocked(id).Add(kind, n)
	if err != nil {
		return hints, err
	}
	r.writeLocal(id, storage.PurposeHints, hints)
	return hints, nil
}

// Hearts returns the lives state with regeneration applied up to now.
func (r *Reconciler) Hearts(id Identity) economy.Hearts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heartsLocked(id)
}

func (r *Reconciler) heartsLocked(id Identity) economy.Hearts {
	now := r.opts.Now()
	var stored economy.Hearts
	if !r.readLocal(id, storage.PurposeHearts, &stored) {
		h := economy.FullHearts(r.opts.MaxHearts, now)
		r.writeLocal(id, storage.PurposeHearts, h)
		return h
	}
	if stored.Max != r.opts.MaxHearts {
		stored.Max = r.opts.MaxHearts
	}
	h := stored.Regenerate(now, r.opts.HeartRegen)
	if h.Current != stored.Current || (h.Current < h.Max && !h.LastRegenAt.Equal(stored.LastRegenAt)) {
		r.writeLocal(id, storage.PurposeHearts, h)
	}
	return h
}

// NextHeartIn returns the wait until the next heart, zero when full.
func (r *Reconciler) NextHeartIn(id Identity) time.Duration {
	h := r.Hearts(id)
	return h.TimeUntilNext(r.opts.Now(), r.opts.HeartRegen)
}

// LoseHeart spends one life.
func (r *Reconciler) LoseHeart(id Identity) (economy.Hearts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, err := r.heartsLocked(id).LoseOne(r.opts.Now())
	if err != nil {
		return h, err
	}
	r.writeLocal(id, storage.PurposeHearts, h)
	return h, nil
}

// RefillHearts restores every life.
func (r *Reconciler) RefillHearts(id Identity) economy.Hearts {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.heartsLocked(id).Refill(r.opts.Now())
	r.writeLocal(id, storage.PurposeHearts, h)
	return h
}

// HintPopupSeen reports whether the hint tutorial was dismissed.
func (r *Reconciler) HintPopupSeen(id Identity) bool {
	var seen bool
	r.readLocal(id, storage.PurposeHintPopup, &seen)
	return seen
}

// MarkHintPopupSeen records that the hint tutorial was dismissed.
func (r *Reconciler) MarkHintPopupSeen(id Identity) {
	r.writeLocal(id, storage.PurposeHintPopup, true)
}
