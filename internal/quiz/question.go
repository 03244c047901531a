// Package quiz turns a level pool into multiple-choice questions whose wrong
// answers are plausible look-alikes of the correct flag.
package quiz

import (
	"math"
	"sort"

	"github.com/vovakirdan/flagquest/internal/catalog"
	"github.com/vovakirdan/flagquest/internal/levels"
)

// Generation constants.
const (
	OptionCount    = 4 // Options per question, correct answer included
	DistractorPick = 3 // Wrong answers drawn per question
	DistractorTop  = 8 // Best-scored candidates the wrong answers are drawn from
)

// Question is one multiple-choice prompt.
type Question struct {
	Correct catalog.Flag
	Options []string // Display names, correct one included
}

// IsCorrect reports whether name is the right answer.
func (q Question) IsCorrect(name string) bool {
	return name == q.Correct.Name
}

// HasOption reports whether name is among the options.
func (q Question) HasOption(name string) bool {
	for _, o := range q.Options {
		if o == name {
			return true
		}
	}
	return false
}

// WrongOptions returns the options that are not the correct answer.
func (q Question) WrongOptions() []string {
	out := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		if o != q.Correct.Name {
			out = append(out, o)
		}
	}
	return out
}

// Similarity scores how easily candidate could be confused with correct.
// Same region +2, two or more shared colors +3 (one shared color +1),
// difficulty within 1.0 +1. The correct flag itself scores -Inf.
func Similarity(correct, candidate catalog.Flag) float64 {
	if correct.Code == candidate.Code {
		return math.Inf(-1)
	}

	score := 0.0
	if correct.SameRegion(candidate) {
		score += 2
	}
	switch shared := correct.SharedColors(candidate); {
	case shared >= 2:
		score += 3
	case shared == 1:
		score += 1
	}
	if math.Abs(correct.Difficulty-candidate.Difficulty) <= 1.0 {
		score += 1
	}
	return score
}

// Generate builds count questions for a level. A non-positive count uses the
// level's own question count. Correct answers cycle through a shuffled copy
// of the pool so every member appears about equally often.
func Generate(def levels.Definition, count int, rng levels.Rand) []Question {
	if count <= 0 {
		count = def.QuestionCount
	}
	if len(def.Pool) == 0 || count <= 0 {
		return nil
	}

	pool := append([]catalog.Flag(nil), def.Pool...)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	questions := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		correct := pool[i%len(pool)]
		questions = append(questions, buildQuestion(correct, pool, rng))
	}
	return questions
}

type scored struct {
	flag  catalog.Flag
	score float64
}

// buildQuestion picks distractors for correct and assembles the option list.
func buildQuestion(correct catalog.Flag, pool []catalog.Flag, rng levels.Rand) Question {
	candidates := make([]scored, 0, len(pool))
	for _, f := range pool {
		s := Similarity(correct, f)
		if math.IsInf(s, -1) {
			continue
		}
		candidates = append(candidates, scored{flag: f, score: s})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	// Positive scorers only, best few, then a random draw among them
	top := make([]catalog.Flag, 0, DistractorTop)
	for _, c := range candidates {
		if c.score <= 0 || len(top) >= DistractorTop {
			break
		}
		top = append(top, c.flag)
	}
	rng.Shuffle(len(top), func(i, j int) {
		top[i], top[j] = top[j], top[i]
	})
	if len(top) > DistractorPick {
		top = top[:DistractorPick]
	}

	chosen := make(map[string]bool, OptionCount)
	chosen[correct.Code] = true
	distractors := make([]catalog.Flag, 0, DistractorPick)
	for _, f := range top {
		chosen[f.Code] = true
		distractors = append(distractors, f)
	}

	// Pad with uniformly random leftovers
	if len(distractors) < DistractorPick {
		rest := remaining(pool, chosen)
		rng.Shuffle(len(rest), func(i, j int) {
			rest[i], rest[j] = rest[j], rest[i]
		})
		for _, f := range rest {
			if len(distractors) >= DistractorPick {
				break
			}
			chosen[f.Code] = true
			distractors = append(distractors, f)
		}
	}

	// Dedupe by display name, correct answer always kept
	options := []string{correct.Name}
	names := map[string]bool{correct.Name: true}
	for _, f := range distractors {
		if names[f.Name] {
			continue
		}
		names[f.Name] = true
		options = append(options, f.Name)
	}

	// Top up with further distinct names until four or the pool runs dry
	if len(options) < OptionCount {
		rest := remaining(pool, chosen)
		rng.Shuffle(len(rest), func(i, j int) {
			rest[i], rest[j] = rest[j], rest[i]
		})
		for _, f := range rest {
			if len(options) >= OptionCount {
				break
			}
			if names[f.Name] {
				continue
			}
			names[f.Name] = true
			options = append(options, f.Name)
		}
	}

	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return Question{Correct: correct, Options: options}
}

// remaining returns pool members whose code is not in chosen.
func remaining(pool []catalog.Flag, chosen map[string]bool) []catalog.Flag {
	out := make([]catalog.Flag, 0, len(pool))
	for _, f := range pool {
		if !chosen[f.Code] {
			out = append(out, f)
		}
	}
	return out
}
