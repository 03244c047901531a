package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/flagquest/internal/catalog"
	"github.com/vovakirdan/flagquest/internal/economy"
	"github.com/vovakirdan/flagquest/internal/levels"
	"github.com/vovakirdan/flagquest/internal/progress"
	"github.com/vovakirdan/flagquest/internal/reconcile"
	"github.com/vovakirdan/flagquest/internal/remote"
	"github.com/vovakirdan/flagquest/internal/run"
	"github.com/vovakirdan/flagquest/internal/storage"
)

type fixture struct {
	svc     *Service
	rec     *reconcile.Reconciler
	results *remote.MemoryStore
	id      reconcile.Identity
}

func newFixture(t *testing.T, timing run.Timing) *fixture {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() failed: %v", err)
	}
	set := levels.Build(cat.Flags(), levels.DefaultParams(), levels.NewRand(11))
	results := remote.NewMemoryStore()
	rec := reconcile.New(storage.NewMemoryCache(), results, reconcile.Options{})
	svc := NewService(Config{
		Levels:     set,
		Reconciler: rec,
		Results:    results,
		Timing:     timing,
		Seed:       5,
	})
	return &fixture{svc: svc, rec: rec, results: results, id: rec.Identity("player")}
}

var fastTiming = run.Timing{
	Question:    10 * time.Second,
	Tick:        5 * time.Millisecond,
	Pause:       100 * time.Millisecond,
	WrongLock:   time.Millisecond,
	CorrectLock: time.Millisecond,
}

func (f *fixture) start(t *testing.T, level int, mode progress.Mode) *Session {
	t.Helper()
	s, err := f.svc.Start(context.Background(), f.id, level, mode)
	if err != nil {
		t.Fatalf("Start(%d, %v) failed: %v", level, mode, err)
	}
	return s
}

func answerCorrect(t *testing.T, s *Session) {
	t.Helper()
	ctx := context.Background()
	q := s.Snapshot().Question
	if _, err := s.Answer(ctx, q.Correct.Name); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	s.Tick(ctx, fastTiming.CorrectLock)
}

func answerWrong(t *testing.T, s *Session) {
	t.Helper()
	ctx := context.Background()
	snap := s.Snapshot()
	shown := map[string]bool{}
	for _, w := range snap.WrongShown {
		shown[w] = true
	}
	for _, opt := range snap.Question.WrongOptions() {
		if !shown[opt] {
			if _, err := s.Answer(ctx, opt); err != nil {
				t.Fatalf("Answer failed: %v", err)
			}
			s.Tick(ctx, fastTiming.WrongLock)
			return
		}
	}
	t.Fatal("No wrong option left to pick")
}

func playThrough(t *testing.T, s *Session) {
	t.Helper()
	for s.Run().Outcome() == run.Playing {
		answerCorrect(t, s)
	}
}

func TestStartChecks(t *testing.T) {
	f := newFixture(t, fastTiming)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, f.id, 99, progress.ModeClassic); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Expected ErrUnknownLevel, got %v", err)
	}
	if _, err := f.svc.Start(ctx, f.id, 6, progress.ModeClassic); !errors.Is(err, ErrLevelLocked) {
		t.Errorf("Expected ErrLevelLocked, got %v", err)
	}

	for range economy.DefaultMaxHearts {
		f.rec.LoseHeart(f.id)
	}
	if _, err := f.svc.Start(ctx, f.id, 1, progress.ModeClassic); !errors.Is(err, economy.ErrNoHearts) {
		t.Errorf("Expected ErrNoHearts, got %v", err)
	}
}

func TestPerfectClassicRunPaysOnce(t *testing.T) {
	f := newFixture(t, fastTiming)

	s := f.start(t, 1, progress.ModeClassic)
	playThrough(t, s)
	sum, final := s.Summary()
	if !final {
		t.Fatal("Expected summary to be final")
	}
	if sum.Stars != 3 || !sum.FirstClear || sum.Reward != progress.FirstClearReward {
		t.Errorf("Unexpected summary: %+v", sum)
	}
	if got := f.rec.Coins(context.Background(), f.id); got != progress.FirstClearReward {
		t.Errorf("Expected %d coins, got %d", progress.FirstClearReward, got)
	}

	again := f.start(t, 1, progress.ModeClassic)
	playThrough(t, again)
	sum, _ = again.Summary()
	if sum.Reward != 0 || sum.FirstClear {
		t.Errorf("Expected no reward on replay, got %+v", sum)
	}
	if got := f.rec.Coins(context.Background(), f.id); got != progress.FirstClearReward {
		t.Errorf("Expected balance unchanged at %d, got %d", progress.FirstClearReward, got)
	}
}

func TestFailedRunCostsOneHeart(t *testing.T) {
	f := newFixture(t, fastTiming)
	s := f.start(t, 2, progress.ModeClassic)

	for range run.MaxMistakes {
		answerWrong(t, s)
	}
	sum, final := s.Summary()
	if !final || sum.Outcome != run.Failed || !sum.HeartLost {
		t.Fatalf("Unexpected summary: %+v", sum)
	}
	if h := f.rec.Hearts(f.id); h.Current != economy.DefaultMaxHearts-1 {
		t.Errorf("Expected one heart lost, have %d", h.Current)
	}
	if s.Abandon(context.Background()) {
		t.Error("Abandoning a failed session should not cost another heart")
	}
	if stars := f.rec.LoadProgress(context.Background(), f.id, progress.ModeClassic).Stars().Get(2); stars != 0 {
		t.Errorf("Expected no stars for a failed run, got %d", stars)
	}
}

func TestAbandonIsSingleUse(t *testing.T) {
	f := newFixture(t, fastTiming)
	ctx := context.Background()

	untouched := f.start(t, 1, progress.ModeClassic)
	if untouched.Abandon(ctx) {
		t.Error("Abandoning before any answer should be free")
	}

	s := f.start(t, 1, progress.ModeClassic)
	answerCorrect(t, s)
	answerCorrect(t, s)
	if s.Snapshot().Index != 2 {
		t.Fatalf("Expected question index 2, got %d", s.Snapshot().Index)
	}
	if !s.Abandon(ctx) {
		t.Error("Expected abandon to cost a heart")
	}
	if s.Abandon(ctx) {
		t.Error("Expected second abandon to be a no-op")
	}
	if h := f.rec.Hearts(f.id); h.Current != economy.DefaultMaxHearts-1 {
		t.Errorf("Expected exactly one heart lost, have %d", h.Current)
	}
}

func TestTimedResultsSubmitted(t *testing.T) {
	f := newFixture(t, fastTiming)
	ctx := context.Background()

	s := f.start(t, 1, progress.ModeTimeTrial)
	playThrough(t, s)
	sum, _ := s.Summary()
	if !sum.Submitted || sum.Score <= 0 {
		t.Fatalf("Expected submitted positive score, got %+v", sum)
	}

	abandoned := f.start(t, 1, progress.ModeTimeTrial)
	answerCorrect(t, abandoned)
	abandoned.Abandon(ctx)

	top, err := f.results.TopResults(ctx, 1, 10)
	if err != nil || len(top) != 1 {
		t.Fatalf("Expected one result row, got %v (%v)", top, err)
	}
	if top[0].BestScore != sum.Score || top[0].PlaysCount != 2 {
		t.Errorf("Expected best %d over 2 plays, got %+v", sum.Score, top[0])
	}
}

func TestClassicDoesNotSubmit(t *testing.T) {
	f := newFixture(t, fastTiming)
	s := f.start(t, 1, progress.ModeClassic)
	playThrough(t, s)
	if sum, _ := s.Summary(); sum.Submitted {
		t.Error("Classic runs should not submit results")
	}
}

func TestLocalModeEarnsNoCoins(t *testing.T) {
	f := newFixture(t, fastTiming)
	s := f.start(t, 1, progress.ModeLocal)
	playThrough(t, s)
	sum, _ := s.Summary()
	if sum.Stars != 3 || sum.Reward != 0 {
		t.Errorf("Expected 3 stars and no reward, got %+v", sum)
	}
	if got := f.rec.LoadProgress(context.Background(), f.id, progress.ModeClassic).Stars().Get(1); got != 0 {
		t.Errorf("Local progress leaked into classic: %d", got)
	}
}

func TestHintsConsumedOnlyWhenApplied(t *testing.T) {
	f := newFixture(t, fastTiming)
	ctx := context.Background()
	start := f.rec.Hints(f.id)

	s := f.start(t, 1, progress.ModeClassic)
	if _, err := s.UseHint(ctx, economy.HintPause); !errors.Is(err, run.ErrHintUnavailable) {
		t.Errorf("Expected pause unavailable in classic, got %v", err)
	}
	if got := f.rec.Hints(f.id); got != start {
		t.Errorf("Failed hint was consumed: %+v", got)
	}

	out, err := s.UseHint(ctx, economy.HintRemoveTwo)
	if err != nil {
		t.Fatalf("UseHint(remove2) failed: %v", err)
	}
	if len(out.Removed) != 2 || out.Hints.RemoveTwo != start.RemoveTwo-1 {
		t.Errorf("Unexpected remove2 outcome: %+v", out)
	}

	out, err = s.UseHint(ctx, economy.HintAutoPass)
	if err != nil {
		t.Fatalf("UseHint(autoPass) failed: %v", err)
	}
	if out.Result == nil || !out.Result.Correct {
		t.Errorf("Expected autoPass to answer correctly, got %+v", out.Result)
	}
	if _, err := s.UseHint(ctx, economy.HintAutoPass); !errors.Is(err, economy.ErrNoHint) {
		t.Errorf("Expected ErrNoHint once autoPass is used up, got %v", err)
	}
}

func TestCountdownTimeoutSettles(t *testing.T) {
	timing := fastTiming
	timing.Question = 30 * time.Millisecond
	f := newFixture(t, timing)

	s := f.start(t, 1, progress.ModeTimeTrial)
	done := make(chan struct{})
	s.StartCountdown(context.Background(), func(o run.Outcome) {
		if o.Terminal() {
			select {
			case <-done:
			default:
				close(done)
			}
		}
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Countdown never ended the run")
	}
	sum, final := s.Summary()
	if !final || sum.Outcome != run.Failed || !sum.HeartLost {
		t.Errorf("Unexpected summary after timeout: %+v", sum)
	}
	if s.Abandon(context.Background()) {
		t.Error("Abandon after timeout should be free")
	}
}

func TestTerminalAnswerStopsCountdown(t *testing.T) {
	timing := fastTiming
	timing.Tick = time.Hour
	f := newFixture(t, timing)

	s := f.start(t, 1, progress.ModeClassic)
	s.StartCountdown(context.Background(), nil)
	playThrough(t, s)

	select {
	case <-s.countdown.Done():
	default:
		t.Fatal("Expected countdown stopped when the last answer ended the run")
	}
}

func TestOverview(t *testing.T) {
	f := newFixture(t, fastTiming)
	ctx := context.Background()
	for level := 1; level <= 4; level++ {
		f.rec.RecordStars(ctx, f.id, progress.ModeClassic, level, 3)
	}

	overview := f.svc.Overview(ctx, f.id, progress.ModeClassic)
	if len(overview) != progress.TotalLevels {
		t.Fatalf("Expected %d levels, got %d", progress.TotalLevels, len(overview))
	}
	if !overview[9].Unlocked || overview[10].Unlocked {
		t.Errorf("Expected levels 1-10 unlocked, got 10:%v 11:%v", overview[9].Unlocked, overview[10].Unlocked)
	}
	if overview[0].Stars != 3 {
		t.Errorf("Expected 3 stars on level 1, got %d", overview[0].Stars)
	}
	if req := overview[12].Requirement; req.Needed != 12 {
		t.Errorf("Expected 12 stars needed for level 13, got %d", req.Needed)
	}
}
