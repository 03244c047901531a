// Package levels partitions the flag catalog into a fixed sequence of level
// pools following a difficulty curve.
package levels

import "math"

// Default level-sequence shape.
const (
	DefaultTotalLevels   = 30
	DefaultBatchSize     = 5
	DefaultPoolSize      = 20
	DefaultQuestionCount = 10
	DefaultNearest       = 120
	DefaultMinCandidates = 40
)

// curveSpan is how far above the base difficulty the last level targets.
const curveSpan = 8.5

// TargetDifficulty returns the eased-cubic target difficulty for a level.
// Early levels ramp slowly and late levels steeply: 1.0 at level 1, 9.5 at the last.
func TargetDifficulty(id, total int) float64 {
	if total <= 1 {
		return 1
	}
	t := float64(id-1) / float64(total-1)
	t = math.Max(0, math.Min(1, t))
	return 1 + t*t*t*curveSpan
}

// MinDifficulty is the difficulty floor for a level.
// Late levels exclude very easy flags.
func MinDifficulty(id int) float64 {
	switch {
	case id <= 5:
		return 1
	case id <= 10:
		return 2
	case id <= 15:
		return 3
	case id <= 20:
		return 4
	case id <= 25:
		return 5
	default:
		return 6
	}
}

// DifficultyCap is the difficulty ceiling for a level.
// Early levels exclude very obscure flags.
func DifficultyCap(id int) float64 {
	switch {
	case id <= 5:
		return 2.5
	case id <= 10:
		return 4
	case id <= 15:
		return 5.5
	case id <= 20:
		return 7
	case id <= 25:
		return 8.5
	default:
		return 9.5
	}
}
