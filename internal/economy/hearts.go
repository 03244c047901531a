package economy

import "time"

// Heart defaults.
const (
	DefaultMaxHearts  = 5
	DefaultHeartRegen = 10 * time.Minute
)

// Hearts tracks lives. Regeneration is lazy: every read folds in the hearts
// earned since LastRegenAt instead of relying on a background timer.
type Hearts struct {
	Current     int       `json:"current"`
	Max         int       `json:"max"`
	LastRegenAt time.Time `json:"lastRegenAt"`
}

// FullHearts returns a full set stamped at now.
func FullHearts(capacity int, now time.Time) Hearts {
	if capacity <= 0 {
		capacity = DefaultMaxHearts
	}
	return Hearts{Current: capacity, Max: capacity, LastRegenAt: now}
}

// Regenerate credits one heart per elapsed interval since LastRegenAt, up to
// Max. The regen clock only advances by whole intervals so partial progress
// toward the next heart is kept. At Max the clock is pinned to now.
func (h Hearts) Regenerate(now time.Time, interval time.Duration) Hearts {
	if h.Max <= 0 {
		h.Max = DefaultMaxHearts
	}
	if interval <= 0 {
		interval = DefaultHeartRegen
	}
	h.Current = min(max(h.Current, 0), h.Max)
	if h.Current >= h.Max || h.LastRegenAt.IsZero() {
		h.LastRegenAt = now
		return h
	}
	elapsed := now.Sub(h.LastRegenAt)
	if elapsed < interval {
		return h
	}
	earned := int(elapsed / interval)
	h.Current = min(h.Current+earned, h.Max)
	if h.Current >= h.Max {
		h.LastRegenAt = now
	} else {
		h.LastRegenAt = h.LastRegenAt.Add(time.Duration(earned) * interval)
	}
	return h
}

// NextRefreshAt returns when the next heart arrives, or the zero time at Max.
func (h Hearts) NextRefreshAt(interval time.Duration) time.Time {
	if h.Current >= h.Max {
		return time.Time{}
	}
	if interval <= 0 {
		interval = DefaultHeartRegen
	}
	return h.LastRegenAt.Add(interval)
}

// TimeUntilNext returns the wait for the next heart, zero at Max.
func (h Hearts) TimeUntilNext(now time.Time, interval time.Duration) time.Duration {
	next := h.NextRefreshAt(interval)
	if next.IsZero() {
		return 0
	}
	return max(next.Sub(now), 0)
}

// LoseOne spends a heart. Losing from full starts the regen clock at now.
func (h Hearts) LoseOne(now time.Time) (Hearts, error) {
	if h.Current <= 0 {
		return h, ErrNoHearts
	}
	if h.Current >= h.Max {
		h.LastRegenAt = now
	}
	h.Current--
	return h, nil
}

// Refill restores every heart.
func (h Hearts) Refill(now time.Time) Hearts {
	return FullHearts(h.Max, now)
}
