package progress

// Star and reward constants.
const (
	MaxStarsPerLevel = 3
	FirstClearReward = 100

	// Timed-mode score thresholds
	ThreeStarScore = 8000
	TwoStarScore   = 6000
)

// ClampStars restricts n to [0, MaxStarsPerLevel].
func ClampStars(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxStarsPerLevel {
		return MaxStarsPerLevel
	}
	return n
}

// MistakeStars is the mistake-based ceiling: 3 minus mistakes, clamped.
func MistakeStars(mistakes int) int {
	return ClampStars(MaxStarsPerLevel - mistakes)
}

// ScoreStars converts a completed timed-run score into 1-3 stars.
func ScoreStars(score int) int {
	switch {
	case score >= ThreeStarScore:
		return 3
	case score >= TwoStarScore:
		return 2
	default:
		return 1
	}
}

// StarsFor computes the stars earned by a completed run.
func StarsFor(mode Mode, mistakes, score int) int {
	switch mode {
	case ModeClassic, ModeLocal:
		return MistakeStars(mistakes)
	case ModeTimeTrial:
		return min(ScoreStars(score), MistakeStars(mistakes))
	default:
		return 0
	}
}

// CoinReward returns the coins owed when a level goes from before to after
// best-ever stars: the fixed reward on the first starred clear, nothing otherwise.
func CoinReward(mode Mode, before, after int) int {
	if !mode.EarnsCoins() {
		return 0
	}
	if before <= 0 && after > 0 {
		return FirstClearReward
	}
	return 0
}
