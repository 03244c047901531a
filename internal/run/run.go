// Package run implements the per-session answering state machine: question
// progression, mistakes, the timed-mode countdown, hints and abandonment.
package run

import (
	"errors"
	"sync"
	"time"

	"github.com/vovakirdan/flagquest/internal/levels"
	"github.com/vovakirdan/flagquest/internal/progress"
	"github.com/vovakirdan/flagquest/internal/quiz"
)

// MaxMistakes ends a run as Failed once reached.
const MaxMistakes = 3

// PointsPerQuestion is the score for answering instantly in timed mode.
const PointsPerQuestion = 1000

var (
	ErrNotPlaying      = errors.New("run: not playing")
	ErrInputLocked     = errors.New("run: input locked")
	ErrUnknownAnswer   = errors.New("run: answer is not an option")
	ErrAlreadyTried    = errors.New("run: answer already tried")
	ErrHintUnavailable = errors.New("run: hint unavailable")
	ErrNoQuestions     = errors.New("run: no questions")
)

// Outcome is the lifecycle state of a run.
type Outcome int

const (
	Playing Outcome = iota
	Completed
	Failed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Playing:
		return "playing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (o Outcome) Terminal() bool {
	return o != Playing
}

// Timing holds the run's time constants.
type Timing struct {
	Question    time.Duration // Countdown per question in timed mode
	Tick        time.Duration // Countdown granularity
	Pause       time.Duration // Window granted by the pause hint
	WrongLock   time.Duration // Input lock after a wrong answer
	CorrectLock time.Duration // Input lock after a correct answer
}

// DefaultTiming returns 10s questions ticking at 120ms.
func DefaultTiming() Timing {
	return Timing{
		Question:    10 * time.Second,
		Tick:        120 * time.Millisecond,
		Pause:       1500 * time.Millisecond,
		WrongLock:   120 * time.Millisecond,
		CorrectLock: 150 * time.Millisecond,
	}
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.Question <= 0 {
		t.Question = d.Question
	}
	if t.Tick <= 0 {
		t.Tick = d.Tick
	}
	if t.Pause <= 0 {
		t.Pause = d.Pause
	}
	if t.WrongLock <= 0 {
		t.WrongLock = d.WrongLock
	}
	if t.CorrectLock <= 0 {
		t.CorrectLock = d.CorrectLock
	}
	return t
}

// Result describes what a single answer did.
type Result struct {
	Correct  bool
	Points   int     // Timed-mode points earned by this answer
	Advanced bool    // Moved on to the next question (or finished)
	Outcome  Outcome // Outcome after the answer
}

// Snapshot is a read-only view of a run for rendering.
type Snapshot struct {
	LevelID    int
	Mode       progress.Mode
	Index      int
	Total      int
	Question   quiz.Question
	Mistakes   int
	Score      int
	Remaining  time.Duration
	Paused     bool
	Locked     bool
	WrongShown []string
	Removed    []string
	Outcome    Outcome
}

// Run is the state of one play session. Methods are safe for concurrent use;
// the countdown goroutine and the input handler share it.
type Run struct {
	mu sync.Mutex

	levelID   int
	mode      progress.Mode
	timing    Timing
	questions []quiz.Question

	index      int
	mistakes   int
	score      int
	wrongShown map[string]bool
	removed    map[string]bool
	remaining  time.Duration
	pausedFor  time.Duration
	lock       time.Duration
	outcome    Outcome
	interacted bool
	abandoned  bool
}

// New starts a run over the given questions.
func New(levelID int, mode progress.Mode, questions []quiz.Question, timing Timing) (*Run, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	timing = timing.withDefaults()
	r := &Run{
		levelID:   levelID,
		mode:      mode,
		timing:    timing,
		questions: questions,
		outcome:   Playing,
	}
	r.resetQuestion()
	return r, nil
}

func (r *Run) resetQuestion() {
	r.wrongShown = make(map[string]bool)
	r.removed = make(map[string]bool)
	r.pausedFor = 0
	if r.mode.Timed() {
		r.remaining = r.timing.Question
	}
}

// LevelID returns the level being played.
func (r *Run) LevelID() int {
	return r.levelID
}

// Mode returns the run's mode.
func (r *Run) Mode() progress.Mode {
	return r.mode
}

// Timing returns the effective timing.
func (r *Run) Timing() Timing {
	return r.timing
}

// Outcome returns the current outcome.
func (r *Run) Outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

// Score returns the accumulated timed-mode score.
func (r *Run) Score() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.score
}

// Mistakes returns the mistake count.
func (r *Run) Mistakes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mistakes
}

// Stars returns the stars earned, 0 unless the run completed.
func (r *Run) Stars() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcome != Completed {
		return 0
	}
	return progress.StarsFor(r.mode, r.mistakes, r.score)
}

// Snapshot returns a copy of the current state.
func (r *Run) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{
		LevelID:   r.levelID,
		Mode:      r.mode,
		Index:     r.index,
		Total:     len(r.questions),
		Mistakes:  r.mistakes,
		Score:     r.score,
		Remaining: r.remaining,
		Paused:    r.pausedFor > 0,
		Locked:    r.lock > 0,
		Outcome:   r.outcome,
	}
	if r.index < len(r.questions) {
		s.Question = r.questions[r.index]
		for _, opt := range s.Question.Options {
			if r.wrongShown[opt] {
				s.WrongShown = append(s.WrongShown, opt)
			}
			if r.removed[opt] {
				s.Removed = append(s.Removed, opt)
			}
		}
	}
	return s
}

// Submit answers the current question with an option's display name.
func (r *Run) Submit(answer string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outcome != Playing {
		return Result{Outcome: r.outcome}, ErrNotPlaying
	}
	if r.lock > 0 {
		return Result{Outcome: r.outcome}, ErrInputLocked
	}
	q := r.questions[r.index]
	if !q.HasOption(answer) || r.removed[answer] {
		return Result{Outcome: r.outcome}, ErrUnknownAnswer
	}
	if r.wrongShown[answer] {
		return Result{Outcome: r.outcome}, ErrAlreadyTried
	}
	r.interacted = true

	if q.IsCorrect(answer) {
		points := r.pointsLocked()
		r.score += points
		r.advanceLocked()
		r.lock = r.timing.CorrectLock
		return Result{Correct: true, Points: points, Advanced: true, Outcome: r.outcome}, nil
	}

	r.mistakes++
	r.wrongShown[answer] = true
	if r.mistakes >= MaxMistakes {
		r.outcome = Failed
	}
	r.lock = r.timing.WrongLock
	return Result{Outcome: r.outcome}, nil
}

// pointsLocked converts the remaining countdown into points.
func (r *Run) pointsLocked() int {
	if !r.mode.Timed() {
		return 0
	}
	frac := float64(r.remaining) / float64(r.timing.Question)
	return int(frac * PointsPerQuestion)
}

func (r *Run) advanceLocked() {
	r.index++
	if r.index >= len(r.questions) {
		r.outcome = Completed
		return
	}
	r.resetQuestion()
}

// Tick advances time by d. It drains the input lock, and in timed mode the
// pause window first and then the question countdown. Running out of time
// fails the run. Returns the outcome after the tick.
func (r *Run) Tick(d time.Duration) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outcome != Playing || d <= 0 {
		return r.outcome
	}
	r.lock = max(r.lock-d, 0)
	if !r.mode.Timed() {
		return r.outcome
	}
	if r.pausedFor > 0 {
		used := min(d, r.pausedFor)
		r.pausedFor -= used
		d -= used
	}
	r.remaining -= d
	if r.remaining <= 0 {
		r.remaining = 0
		r.outcome = Failed
	}
	return r.outcome
}

// Pause suspends the timed-mode countdown for the pause window. Windows do
// not stack: a pause while one is active is rejected.
func (r *Run) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outcome != Playing {
		return ErrNotPlaying
	}
	if !r.mode.Timed() || r.pausedFor > 0 {
		return ErrHintUnavailable
	}
	r.interacted = true
	r.pausedFor = r.timing.Pause
	return nil
}

// RemoveTwo hides up to two wrong options of the current question. It is
// available once per question and only while a wrong option is still visible.
func (r *Run) RemoveTwo(rng levels.Rand) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outcome != Playing {
		return nil, ErrNotPlaying
	}
	if len(r.removed) > 0 {
		return nil, ErrHintUnavailable
	}
	var visible []string
	for _, opt := range r.questions[r.index].WrongOptions() {
		if !r.wrongShown[opt] {
			visible = append(visible, opt)
		}
	}
	if len(visible) == 0 {
		return nil, ErrHintUnavailable
	}
	rng.Shuffle(len(visible), func(i, j int) {
		visible[i], visible[j] = visible[j], visible[i]
	})
	gone := visible[:min(2, len(visible))]
	for _, opt := range gone {
		r.removed[opt] = true
	}
	r.interacted = true
	return gone, nil
}

// AutoPass answers the current question correctly.
func (r *Run) AutoPass() (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outcome != Playing {
		return Result{Outcome: r.outcome}, ErrNotPlaying
	}
	if r.lock > 0 {
		return Result{Outcome: r.outcome}, ErrInputLocked
	}
	r.interacted = true
	points := r.pointsLocked()
	r.score += points
	r.advanceLocked()
	r.lock = r.timing.CorrectLock
	return Result{Correct: true, Points: points, Advanced: true, Outcome: r.outcome}, nil
}

// Abandon marks the run as torn down. It returns true exactly once, and only
// when the run was still Playing and the player had interacted with it; that
// is the caller's cue to charge one life.
func (r *Run) Abandon() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.abandoned || r.outcome != Playing || !r.interacted {
		return false
	}
	r.abandoned = true
	r.outcome = Failed
	return true
}
