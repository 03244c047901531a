package progress

import (
	"maps"
	"slices"
	"strconv"
)

// Stars maps level id to the best-ever stars earned on it.
type Stars map[int]int

// Total sums stars across all levels.
func (s Stars) Total() int {
	total := 0
	for _, n := range s {
		total += ClampStars(n)
	}
	return total
}

// Get returns the stars for a level, 0 if unplayed.
func (s Stars) Get(levelID int) int {
	return s[levelID]
}

// Levels returns the level ids present, ascending.
func (s Stars) Levels() []int {
	return slices.Sorted(maps.Keys(s))
}

// Clone returns an independent copy.
func (s Stars) Clone() Stars {
	out := make(Stars, len(s))
	maps.Copy(out, s)
	return out
}

// MergeStars returns, for every level present in either map, the larger of
// the two values. Inputs are not modified.
func MergeStars(a, b Stars) Stars {
	out := make(Stars, max(len(a), len(b)))
	for id, n := range a {
		out[id] = ClampStars(n)
	}
	for id, n := range b {
		n = ClampStars(n)
		if cur, ok := out[id]; !ok || n > cur {
			out[id] = n
		}
	}
	return out
}

// Record is the persisted progress for one identity in one mode.
// Level keys are strings to match the JSON shape stored remotely.
type Record struct {
	StarsByLevel  map[string]int `json:"starsByLevel"`
	UnlockedUntil int            `json:"unlockedUntil"`
}

// NewRecord builds a record from a stars map with unlocks recomputed.
func NewRecord(stars Stars) Record {
	r := Record{StarsByLevel: make(map[string]int, len(stars))}
	for id, n := range stars {
		r.StarsByLevel[strconv.Itoa(id)] = ClampStars(n)
	}
	r.UnlockedUntil = ComputeUnlockedLevels(stars)
	return r
}

// Stars decodes the level keys. Keys that are not positive integers are dropped.
func (r Record) Stars() Stars {
	out := make(Stars, len(r.StarsByLevel))
	for k, n := range r.StarsByLevel {
		id, err := strconv.Atoi(k)
		if err != nil || id < 1 {
			continue
		}
		out[id] = max(out[id], ClampStars(n))
	}
	return out
}

// IsUnlocked reports whether levelID falls within the unlocked range.
func (r Record) IsUnlocked(levelID int) bool {
	return levelID >= 1 && levelID <= r.Unlocked()
}

// Unlocked returns the effective unlocked count: the stored value or the one
// recomputed from stars, whichever is larger.
func (r Record) Unlocked() int {
	return min(max(floorBatch(r.UnlockedUntil), ComputeUnlockedLevels(r.Stars())), TotalLevels)
}

// floorBatch rounds a stored unlock count down to a whole batch.
func floorBatch(n int) int {
	return max(n, 0) / BatchSize * BatchSize
}

// MergeRecords folds two records together. Stars take the per-level maximum;
// the unlock count takes the maximum of both stored values and the value
// recomputed from the merged stars. Stored values are rounded down to a whole
// batch first. The merge is commutative and idempotent.
func MergeRecords(a, b Record) Record {
	stars := MergeStars(a.Stars(), b.Stars())
	merged := NewRecord(stars)
	merged.UnlockedUntil = min(max(merged.UnlockedUntil, floorBatch(a.UnlockedUntil), floorBatch(b.UnlockedUntil)), TotalLevels)
	return merged
}
