package session

import (
	"context"
	"sync"
	"time"

	"github.com/vovakirdan/flagquest/internal/economy"
	"github.com/vovakirdan/flagquest/internal/levels"
	"github.com/vovakirdan/flagquest/internal/progress"
	"github.com/vovakirdan/flagquest/internal/reconcile"
	"github.com/vovakirdan/flagquest/internal/run"
)

// Summary is what a finished session did to persisted state.
type Summary struct {
	LevelID    int
	Mode       progress.Mode
	Outcome    run.Outcome
	Stars      int // Stars earned by this run
	BestStars  int // Best-ever stars after this run
	FirstClear bool
	Reward     int // Coins paid for this run
	Coins      int // Balance after the reward, when one was paid
	Score      int
	Mistakes   int
	HeartLost  bool
	Submitted  bool // Timed result accepted by the result sink
}

// Session is one play-through of a level.
type Session struct {
	svc *Service
	id  reconcile.Identity
	run *run.Run
	rng levels.Rand

	cdMu      sync.Mutex
	countdown *run.Countdown

	mu       sync.Mutex
	finished bool
	lifeLost bool
	summary  Summary
}

// Identity returns the session owner.
func (s *Session) Identity() reconcile.Identity {
	return s.id
}

// Run returns the underlying state machine for rendering.
func (s *Session) Run() *run.Run {
	return s.run
}

// Snapshot returns the current run state.
func (s *Session) Snapshot() run.Snapshot {
	return s.run.Snapshot()
}

// Summary returns the end-of-session summary and whether it is final.
func (s *Session) Summary() (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary, s.finished
}

// Answer submits an option. A terminal answer stops the countdown and
// settles the session before returning.
func (s *Session) Answer(ctx context.Context, answer string) (run.Result, error) {
	res, err := s.run.Submit(answer)
	if err != nil {
		return res, err
	}
	if res.Outcome.Terminal() {
		s.finish(ctx)
		s.stopCountdown()
	}
	return res, nil
}

// HintOutcome reports what a hint did.
type HintOutcome struct {
	Kind    economy.HintKind
	Removed []string    // Options hidden by remove2
	Result  *run.Result // Set by autoPass
	Hints   economy.Hints
}

// UseHint applies a hint to the current question and, only if it took
// effect, consumes one unit from the inventory.
func (s *Session) UseHint(ctx context.Context, kind economy.HintKind) (HintOutcome, error) {
	out := HintOutcome{Kind: kind}
	rec := s.svc.rec
	if rec.Hints(s.id).Count(kind) <= 0 {
		return out, economy.ErrNoHint
	}

	switch kind {
	case economy.HintRemoveTwo:
		removed, err := s.run.RemoveTwo(s.rng)
		if err != nil {
			return out, err
		}
		out.Removed = removed
	case economy.HintAutoPass:
		res, err := s.run.AutoPass()
		if err != nil {
			return out, err
		}
		out.Result = &res
	case economy.HintPause:
		if err := s.run.Pause(); err != nil {
			return out, err
		}
	default:
		return out, economy.ErrUnknownHint
	}

	hints, err := rec.ConsumeHint(s.id, kind)
	if err != nil {
		s.svc.log.Warn("hint applied but not consumed", "identity", s.id, "hint", kind, "error", err)
	}
	out.Hints = hints
	if out.Result != nil && out.Result.Outcome.Terminal() {
		s.finish(ctx)
		s.stopCountdown()
	}
	return out, nil
}

// Tick advances the run's clocks manually. Front-ends that drive their own
// timer use this instead of StartCountdown.
func (s *Session) Tick(ctx context.Context, d time.Duration) run.Outcome {
	outcome := s.run.Tick(d)
	if outcome.Terminal() {
		s.finish(ctx)
	}
	return outcome
}

// StartCountdown drives the run's clocks in the background until the run
// ends or the session is abandoned. In untimed modes it only drains the
// input lock. onTick is called after every tick.
func (s *Session) StartCountdown(ctx context.Context, onTick func(run.Outcome)) {
	s.cdMu.Lock()
	defer s.cdMu.Unlock()
	if s.countdown != nil {
		return
	}
	s.countdown = run.StartCountdown(ctx, s.run, func(o run.Outcome) {
		if o.Terminal() {
			s.finish(ctx)
		}
		if onTick != nil {
			onTick(o)
		}
	})
}

// stopCountdown waits for the countdown goroutine to exit. It must not be
// called from that goroutine, and not while holding s.mu.
func (s *Session) stopCountdown() {
	s.cdMu.Lock()
	cd := s.countdown
	s.cdMu.Unlock()
	if cd != nil {
		cd.Stop()
	}
}

// Abandon tears the session down. If the player had interacted and the run
// was still going, it costs exactly one life and, in timed mode, submits a
// zero score. Calling it again does nothing. Returns whether a life was lost.
func (s *Session) Abandon(ctx context.Context) bool {
	// The countdown goroutine may be waiting on s.mu inside finish, so it
	// is stopped before s.mu is taken.
	s.stopCountdown()
	if !s.run.Abandon() {
		return false
	}
	sum := s.finish(ctx)
	return sum.HeartLost
}

// Close releases the session, abandoning it if still in progress.
func (s *Session) Close(ctx context.Context) {
	s.Abandon(ctx)
}

// finish settles the session once the run is terminal. Later calls return
// the first summary.
func (s *Session) finish(ctx context.Context) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return s.summary
	}
	s.finished = true

	r := s.run
	rec := s.svc.rec
	mode := r.Mode()
	sum := Summary{
		LevelID:  r.LevelID(),
		Mode:     mode,
		Outcome:  r.Outcome(),
		Score:    r.Score(),
		Mistakes: r.Mistakes(),
	}

	switch sum.Outcome {
	case run.Completed:
		sum.Stars = r.Stars()
		update, err := rec.RecordStars(ctx, s.id, mode, sum.LevelID, sum.Stars)
		if err != nil {
			s.svc.log.Error("cannot record stars", "identity", s.id, "level", sum.LevelID, "error", err)
			break
		}
		sum.BestStars = update.After
		sum.FirstClear = update.FirstClear
		if reward := progress.CoinReward(mode, update.Before, update.After); reward > 0 {
			sum.Reward = reward
			sum.Coins = rec.AddCoins(ctx, s.id, reward)
		}
	case run.Failed:
		sum.Score = 0
		if !s.lifeLost {
			s.lifeLost = true
			if _, err := rec.LoseHeart(s.id); err != nil {
				s.svc.log.Warn("cannot charge heart", "identity", s.id, "error", err)
			} else {
				sum.HeartLost = true
			}
		}
	case run.Playing:
		s.finished = false
		return sum
	}

	if mode.SubmitsResults() && s.svc.results != nil && s.id.LoggedIn() {
		if err := s.svc.results.SubmitResult(ctx, s.id.UserID, sum.LevelID, sum.Score); err != nil {
			s.svc.log.Warn("result submission failed", "user", s.id.UserID, "level", sum.LevelID, "error", err)
		} else {
			sum.Submitted = true
		}
	}

	s.svc.log.Info("session finished",
		"identity", s.id, "level", sum.LevelID, "mode", mode,
		"outcome", sum.Outcome, "stars", sum.Stars, "score", sum.Score)
	s.summary = sum
	return sum
}
