package progress

// Unlock defaults.
const (
	TotalLevels     = 30
	BatchSize       = 5
	UnlockThreshold = 0.8
)

// batchRequirements maps each batch's last level id to the total stars needed
// before that batch opens.
var batchRequirements = map[int]int{
	5:  0,
	10: 12,
	15: 24,
	20: 36,
	25: 48,
	30: 60,
}

// Rules parameterizes block unlocking.
type Rules struct {
	TotalLevels int
	BatchSize   int
	Threshold   float64
}

// DefaultRules returns 30 levels unlocked five at a time at 80% of max stars.
func DefaultRules() Rules {
	return Rules{TotalLevels: TotalLevels, BatchSize: BatchSize, Threshold: UnlockThreshold}
}

func (r Rules) withDefaults() Rules {
	if r.TotalLevels <= 0 {
		r.TotalLevels = TotalLevels
	}
	if r.BatchSize <= 0 {
		r.BatchSize = BatchSize
	}
	if r.Threshold <= 0 {
		r.Threshold = UnlockThreshold
	}
	return r
}

// UnlockedLevels recomputes the unlocked level count from the full stars map.
// The first batch is always open; each further batch opens once total stars
// reach Threshold of the maximum available in the levels already open.
func (r Rules) UnlockedLevels(stars Stars) int {
	r = r.withDefaults()
	total := stars.Total()
	unlocked := min(r.BatchSize, r.TotalLevels)
	for unlocked < r.TotalLevels {
		need := r.Threshold * float64(unlocked*MaxStarsPerLevel)
		if float64(total) < need {
			break
		}
		unlocked = min(unlocked+r.BatchSize, r.TotalLevels)
	}
	return unlocked
}

// ComputeUnlockedLevels applies DefaultRules.
func ComputeUnlockedLevels(stars Stars) int {
	return DefaultRules().UnlockedLevels(stars)
}

// Requirement explains what gates the batch holding a level.
type Requirement struct {
	FirstLevel int // First level id in the batch
	LastLevel  int // Last level id in the batch
	Required   int // Total stars the batch asks for
	Needed     int // Stars still missing, never negative
}

// Met reports whether no more stars are needed.
func (q Requirement) Met() bool {
	return q.Needed == 0
}

// StarsNeededForLevelID returns how many more total stars are needed to open
// the batch containing levelID, along with the batch bounds.
func StarsNeededForLevelID(levelID int, stars Stars) Requirement {
	if levelID < 1 {
		levelID = 1
	}
	if levelID > TotalLevels {
		levelID = TotalLevels
	}
	last := ((levelID-1)/BatchSize + 1) * BatchSize
	req := Requirement{
		FirstLevel: last - BatchSize + 1,
		LastLevel:  last,
		Required:   batchRequirements[last],
	}
	req.Needed = max(req.Required-stars.Total(), 0)
	return req
}
