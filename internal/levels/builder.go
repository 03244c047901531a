package levels

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/vovakirdan/flagquest/internal/catalog"
)

// Rand is the random source used for sampling. *rand.Rand satisfies it,
// which lets tests pin behavior with a fixed seed.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a seeded source. A zero seed means "seed from the clock".
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Params configures level building.
type Params struct {
	TotalLevels   int // Number of levels in the sequence
	PoolSize      int // Target flags per level pool
	QuestionCount int // Questions asked per play of a level
	Nearest       int // How many flags closest to the target are sampled from
	MinCandidates int // Below this many band matches the band is ignored
}

// DefaultParams returns the standard 30-level sequence parameters.
func DefaultParams() Params {
	return Params{
		TotalLevels:   DefaultTotalLevels,
		PoolSize:      DefaultPoolSize,
		QuestionCount: DefaultQuestionCount,
		Nearest:       DefaultNearest,
		MinCandidates: DefaultMinCandidates,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.TotalLevels <= 0 {
		p.TotalLevels = d.TotalLevels
	}
	if p.PoolSize <= 0 {
		p.PoolSize = d.PoolSize
	}
	if p.QuestionCount <= 0 {
		p.QuestionCount = d.QuestionCount
	}
	if p.Nearest <= 0 {
		p.Nearest = d.Nearest
	}
	if p.MinCandidates <= 0 {
		p.MinCandidates = d.MinCandidates
	}
	return p
}

// Definition is one level: its id, the flags it draws questions from
// and how many questions a play asks.
type Definition struct {
	ID            int
	Target        float64
	Pool          []catalog.Flag
	QuestionCount int
}

// MeanDifficulty returns the average difficulty of the pool.
func (d Definition) MeanDifficulty() float64 {
	if len(d.Pool) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range d.Pool {
		sum += f.Difficulty
	}
	return sum / float64(len(d.Pool))
}

// Set is the full, ordered level sequence.
type Set []Definition

// ByID returns the level with the given id.
func (s Set) ByID(id int) (Definition, bool) {
	if id < 1 || id > len(s) {
		return Definition{}, false
	}
	d := s[id-1]
	if d.ID != id {
		for _, def := range s {
			if def.ID == id {
				return def, true
			}
		}
		return Definition{}, false
	}
	return d, true
}

// Build produces exactly one definition per level id 1..TotalLevels.
// It never fails: when the catalog is too thin for a difficulty band the
// pool degrades to whatever flags are available.
func Build(flags []catalog.Flag, p Params, rng Rand) Set {
	p = p.withDefaults()

	set := make(Set, 0, p.TotalLevels)
	for id := 1; id <= p.TotalLevels; id++ {
		target := TargetDifficulty(id, p.TotalLevels)
		set = append(set, Definition{
			ID:            id,
			Target:        target,
			Pool:          buildPool(flags, id, target, p, rng),
			QuestionCount: p.QuestionCount,
		})
	}
	return set
}

// buildPool selects the flags for a single level.
func buildPool(flags []catalog.Flag, id int, target float64, p Params, rng Rand) []catalog.Flag {
	if len(flags) == 0 {
		return []catalog.Flag{}
	}

	// Band filter, falling back to the whole catalog when over-constrained
	lo, hi := MinDifficulty(id), DifficultyCap(id)
	candidates := make([]catalog.Flag, 0, len(flags))
	for _, f := range flags {
		if f.Difficulty >= lo && f.Difficulty <= hi {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) < p.MinCandidates {
		candidates = append(candidates[:0:0], flags...)
	}

	// Rank by distance from target; ties keep catalog order
	ranked := append([]catalog.Flag(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Difficulty-target) < math.Abs(ranked[j].Difficulty-target)
	})
	if len(ranked) > p.Nearest {
		ranked = ranked[:p.Nearest]
	}

	pool := make([]catalog.Flag, 0, p.PoolSize)
	used := make(map[string]bool, p.PoolSize)
	pool = sampleInto(pool, used, ranked, p.PoolSize, rng)

	if len(pool) < p.PoolSize {
		pool = sampleInto(pool, used, candidates, p.PoolSize, rng)
	}
	if len(pool) == 0 {
		pool = sampleInto(pool, used, flags, p.PoolSize, rng)
	}

	return pool
}

// sampleInto appends random distinct flags from src until pool holds limit entries.
func sampleInto(pool []catalog.Flag, used map[string]bool, src []catalog.Flag, limit int, rng Rand) []catalog.Flag {
	order := make([]int, len(src))
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	for _, idx := range order {
		if len(pool) >= limit {
			break
		}
		f := src[idx]
		if used[f.Code] {
			continue
		}
		used[f.Code] = true
		pool = append(pool, f)
	}
	return pool
}
