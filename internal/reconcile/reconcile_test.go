package reconcile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/flagquest/internal/economy"
	"github.com/vovakirdan/flagquest/internal/levels"
	"github.com/vovakirdan/flagquest/internal/progress"
	"github.com/vovakirdan/flagquest/internal/remote"
	"github.com/vovakirdan/flagquest/internal/storage"
)

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// failingRemote rejects every record call.
type failingRemote struct{ *remote.MemoryStore }

var errOffline = errors.New("offline")

func (failingRemote) Ensure(context.Context, string) error { return errOffline }
func (failingRemote) Read(context.Context, string) (remote.Record, error) {
	return remote.Record{}, errOffline
}
func (failingRemote) Patch(context.Context, string, remote.Patch) error { return errOffline }
func (failingRemote) ReplaceProgress(context.Context, string, map[string]progress.Record) error {
	return errOffline
}

// patchDownRemote reads normally but rejects patches while down is set.
type patchDownRemote struct {
	*remote.MemoryStore
	down bool
}

func (p *patchDownRemote) Patch(ctx context.Context, userID string, patch remote.Patch) error {
	if p.down {
		return errOffline
	}
	return p.MemoryStore.Patch(ctx, userID, patch)
}

// countingCache counts reads of each key.
type countingCache struct {
	*storage.MemoryCache
	mu    sync.Mutex
	reads map[string]int
}

func (c *countingCache) Get(key string) (string, bool, error) {
	c.mu.Lock()
	c.reads[key]++
	c.mu.Unlock()
	return c.MemoryCache.Get(key)
}

// recordingLog collects purchase log entries.
type recordingLog struct {
	entries []economy.PurchaseRecord
}

func (l *recordingLog) LogPurchase(rec economy.PurchaseRecord) error {
	l.entries = append(l.entries, rec)
	return nil
}

// declineAll refuses every purchase.
type declineAll struct{}

func (declineAll) Purchase(context.Context, string, economy.Product) (economy.PurchaseResult, error) {
	return economy.PurchaseResult{Success: false, Error: "card declined"}, nil
}

type fixture struct {
	rec    *Reconciler
	cache  *storage.MemoryCache
	remote *remote.MemoryStore
	clock  *clock
	log    *recordingLog
	id     Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cache:  storage.NewMemoryCache(),
		remote: remote.NewMemoryStore(),
		clock:  &clock{now: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)},
		log:    &recordingLog{},
	}
	f.rec = New(f.cache, f.remote, Options{Now: f.clock.Now, PurchaseLog: f.log})
	f.id = f.rec.Identity("alice")
	return f
}

func TestRecordStarsValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, level := range []int{0, -3, progress.TotalLevels + 1} {
		if _, err := f.rec.RecordStars(ctx, f.id, progress.ModeClassic, level, 2); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Level %d: expected ErrInvalidLevel, got %v", level, err)
		}
	}
	for _, stars := range []int{-1, 4} {
		if _, err := f.rec.RecordStars(ctx, f.id, progress.ModeClassic, 1, stars); !errors.Is(err, ErrInvalidStars) {
			t.Errorf("Stars %d: expected ErrInvalidStars, got %v", stars, err)
		}
	}
}

func TestRecordStarsIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.rec.RecordStars(ctx, f.id, progress.ModeClassic, 3, 2)
	if err != nil {
		t.Fatalf("RecordStars failed: %v", err)
	}
	if !first.FirstClear || first.Before != 0 || first.After != 2 {
		t.Errorf("Unexpected first update: %+v", first)
	}

	replay, _ := f.rec.RecordStars(ctx, f.id, progress.ModeClassic, 3, 2)
	if replay.FirstClear {
		t.Error("Replaying the same result reported a first clear")
	}

	worse, _ := f.rec.RecordStars(ctx, f.id, progress.ModeClassic, 3, 1)
	if worse.After != 2 {
		t.Errorf("Expected best-ever kept at 2, got %d", worse.After)
	}

	better, _ := f.rec.RecordStars(ctx, f.id, progress.ModeClassic, 3, 3)
	if better.FirstClear || better.After != 3 {
		t.Errorf("Unexpected improvement update: %+v", better)
	}

	if got := f.rec.LoadProgress(ctx, f.id, progress.ModeTimeTrial).Stars().Get(3); got != 0 {
		t.Errorf("Expected modes kept apart, time trial has %d", got)
	}
}

func TestProgressMergesLocalAndRemote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mode := progress.ModeClassic.String()

	// Remote knows level 1, the device knows level 2 from an offline session.
	f.remote.Ensure(ctx, "alice")
	f.remote.ReplaceProgress(ctx, "alice", map[string]progress.Record{
		mode: progress.NewRecord(progress.Stars{1: 3, 2: 1}),
	})
	storage.SetJSON(f.cache, storage.Key(f.id.Namespace(), storage.PurposeProgress), map[string]progress.Record{
		mode: progress.NewRecord(progress.Stars{2: 3, 4: 3}),
	})

	got := f.rec.LoadProgress(ctx, f.id, progress.ModeClassic).Stars()
	want := progress.Stars{1: 3, 2: 3, 4: 3}
	for level, n := range want {
		if got[level] != n {
			t.Errorf("Level %d: expected %d stars, got %d", level, n, got[level])
		}
	}

	rec, _ := f.remote.Read(ctx, "alice")
	if rec.Progress[mode].StarsByLevel["4"] != 3 {
		t.Error("Merged progress was not written back to the remote record")
	}
	// 9 stars in the first batch: 12 needed, still 5 unlocked.
	if rec.Progress[mode].UnlockedUntil != 5 {
		t.Errorf("Expected 5 unlocked, got %d", rec.Progress[mode].UnlockedUntil)
	}
}

func TestStaleUnlockHeals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mode := progress.ModeClassic.String()

	stale := progress.NewRecord(progress.Stars{1: 3, 2: 3, 3: 3, 4: 3})
	stale.UnlockedUntil = 5
	f.remote.Ensure(ctx, "alice")
	f.remote.ReplaceProgress(ctx, "alice", map[string]progress.Record{mode: stale})

	if got := f.rec.LoadProgress(ctx, f.id, progress.ModeClassic); !got.IsUnlocked(10) {
		t.Errorf("Expected level 10 unlocked after recompute, unlocked until %d", got.UnlockedUntil)
	}
}

func TestRemoteFailureDegradesToLocal(t *testing.T) {
	cache := storage.NewMemoryCache()
	store := remote.NewMemoryStore()
	rec := New(cache, failingRemote{store}, Options{})
	id := rec.Identity("bob")
	ctx := context.Background()

	update, err := rec.RecordStars(ctx, id, progress.ModeClassic, 1, 3)
	if err != nil {
		t.Fatalf("RecordStars failed with remote down: %v", err)
	}
	if !update.FirstClear {
		t.Error("Expected first clear recorded locally")
	}
	if got := rec.AddCoins(ctx, id, 100); got != 100 {
		t.Errorf("Expected local balance 100, got %d", got)
	}
	if got := rec.LoadProgress(ctx, id, progress.ModeClassic).Stars().Get(1); got != 3 {
		t.Errorf("Expected local progress kept, got %d", got)
	}

	// The remote comes back with an empty record.
	back := New(cache, store, Options{})
	if got := back.Coins(ctx, id); got != 100 {
		t.Errorf("Expected balance 100 after the remote recovered, got %d", got)
	}
	stored, err := store.Read(ctx, "bob")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if stored.Coins != 100 {
		t.Errorf("Expected pending balance pushed to the remote, got %d", stored.Coins)
	}
}

func TestRejectedPatchKeepsLocalBalance(t *testing.T) {
	rs := &patchDownRemote{MemoryStore: remote.NewMemoryStore(), down: true}
	rec := New(storage.NewMemoryCache(), rs, Options{})
	id := rec.Identity("carol")
	ctx := context.Background()

	if got := rec.AddCoins(ctx, id, 100); got != 100 {
		t.Fatalf("Expected 100, got %d", got)
	}
	if got := rec.Coins(ctx, id); got != 100 {
		t.Errorf("Expected unsynced balance kept over the stale remote, got %d", got)
	}

	rs.down = false
	if got := rec.Coins(ctx, id); got != 100 {
		t.Errorf("Expected 100 after sync, got %d", got)
	}
	stored, _ := rs.Read(ctx, "carol")
	if stored.Coins != 100 {
		t.Errorf("Expected remote balance 100, got %d", stored.Coins)
	}

	// Once synced, the remote is authoritative again.
	coins := 40
	rs.MemoryStore.Patch(ctx, "carol", remote.Patch{Coins: &coins})
	if got := rec.Coins(ctx, id); got != 40 {
		t.Errorf("Expected remote balance 40, got %d", got)
	}
}

func TestCorruptLocalProgressFallsBack(t *testing.T) {
	f := newFixture(t)
	anon := Identity{DeviceID: "dev-1"}
	f.cache.Set(storage.Key(anon.Namespace(), storage.PurposeProgress), "{not json")

	got := f.rec.LoadProgress(context.Background(), anon, progress.ModeClassic)
	if got.UnlockedUntil != progress.BatchSize || len(got.StarsByLevel) != 0 {
		t.Errorf("Expected default progress, got %+v", got)
	}
}

func TestCoins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if got := f.rec.AddCoins(ctx, f.id, 250); got != 250 {
		t.Fatalf("Expected 250, got %d", got)
	}
	if got := f.rec.AddCoins(ctx, f.id, -400); got != 0 {
		t.Errorf("Expected balance clamped to 0, got %d", got)
	}

	// Remote balance is authoritative for logged-in users.
	coins := 900
	f.remote.Patch(ctx, "alice", remote.Patch{Coins: &coins})
	if got := f.rec.Coins(ctx, f.id); got != 900 {
		t.Errorf("Expected remote balance 900, got %d", got)
	}

	if _, err := f.rec.SpendCoins(ctx, f.id, 1000); !errors.Is(err, economy.ErrInsufficientCoins) {
		t.Errorf("Expected ErrInsufficientCoins, got %v", err)
	}
	if got, _ := f.rec.SpendCoins(ctx, f.id, 400); got != 500 {
		t.Errorf("Expected 500 left, got %d", got)
	}
	rec, _ := f.remote.Read(ctx, "alice")
	if rec.Coins != 500 {
		t.Errorf("Expected remote balance 500, got %d", rec.Coins)
	}
}

func TestHintsMigrateOnce(t *testing.T) {
	f := newFixture(t)
	key := storage.Key(f.id.Namespace(), storage.PurposeHints)
	f.cache.Set(key, `{"fiftyFifty":2,"skip":1,"timeFreeze":4}`)

	h := f.rec.Hints(f.id)
	if h != (economy.Hints{RemoveTwo: 2, AutoPass: 1, Pause: 4}) {
		t.Fatalf("Unexpected migrated hints: %+v", h)
	}
	raw, _, _ := f.cache.Get(key)
	if !strings.Contains(raw, `"remove2":2`) || strings.Contains(raw, "fiftyFifty") {
		t.Errorf("Expected new shape persisted, got %s", raw)
	}

	h, err := f.rec.ConsumeHint(f.id, economy.HintPause)
	if err != nil || h.Pause != 3 {
		t.Errorf("Expected pause consumed to 3, got %+v (%v)", h, err)
	}
	if again := f.rec.Hints(f.id); again.Pause != 3 {
		t.Errorf("Expected consumption to persist, got %+v", again)
	}
}

func TestNewIdentityGetsStarterHints(t *testing.T) {
	f := newFixture(t)
	if h := f.rec.Hints(Identity{DeviceID: "fresh"}); h != economy.StarterHints() {
		t.Errorf("Expected starter hints, got %+v", h)
	}
}

func TestHeartsRegenerateLazily(t *testing.T) {
	f := newFixture(t)

	if h := f.rec.Hearts(f.id); h.Current != economy.DefaultMaxHearts {
		t.Fatalf("Expected full hearts, got %d", h.Current)
	}
	f.rec.LoseHeart(f.id)
	f.rec.LoseHeart(f.id)
	if h := f.rec.Hearts(f.id); h.Current != 3 {
		t.Fatalf("Expected 3 hearts, got %d", h.Current)
	}
	if wait := f.rec.NextHeartIn(f.id); wait != 10*time.Minute {
		t.Errorf("Expected 10m until next heart, got %v", wait)
	}

	f.clock.Advance(12 * time.Minute)
	if h := f.rec.Hearts(f.id); h.Current != 4 {
		t.Errorf("Expected 4 hearts after 12m, got %d", h.Current)
	}
	if wait := f.rec.NextHeartIn(f.id); wait != 8*time.Minute {
		t.Errorf("Expected 8m until next heart, got %v", wait)
	}

	if h := f.rec.RefillHearts(f.id); h.Current != economy.DefaultMaxHearts {
		t.Errorf("Expected refill to max, got %d", h.Current)
	}
}

func TestLoseHeartWhenEmpty(t *testing.T) {
	f := newFixture(t)
	for range economy.DefaultMaxHearts {
		if _, err := f.rec.LoseHeart(f.id); err != nil {
			t.Fatalf("LoseHeart failed: %v", err)
		}
	}
	if _, err := f.rec.LoseHeart(f.id); !errors.Is(err, economy.ErrNoHearts) {
		t.Errorf("Expected ErrNoHearts, got %v", err)
	}
}

func TestDeviceIDReadOnce(t *testing.T) {
	cache := &countingCache{MemoryCache: storage.NewMemoryCache(), reads: map[string]int{}}
	rec := New(cache, nil, Options{})

	first := rec.DeviceID()
	if first == "" {
		t.Fatal("Expected a generated device id")
	}
	for range 5 {
		if got := rec.DeviceID(); got != first {
			t.Errorf("Device id changed: %s -> %s", first, got)
		}
	}
	if n := cache.reads[storage.DeviceIDKey]; n != 1 {
		t.Errorf("Expected device id read once, got %d reads", n)
	}

	// A new process sees the persisted id.
	if got := New(cache, nil, Options{}).DeviceID(); got != first {
		t.Errorf("Expected persisted id %s, got %s", first, got)
	}
}

func TestAnonymousIdentityStaysLocal(t *testing.T) {
	f := newFixture(t)
	anon := f.rec.Identity("")
	if anon.LoggedIn() {
		t.Fatal("Expected anonymous identity")
	}
	f.rec.AddCoins(context.Background(), anon, 40)
	if _, err := f.remote.Read(context.Background(), ""); !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("Anonymous identity should not create remote records, got %v", err)
	}
}

func TestBuyAppliesRewardOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.rec.Buy(ctx, f.id, "coins_1200")
	if err != nil || !res.Success {
		t.Fatalf("Buy failed: %+v %v", res, err)
	}
	if got := f.rec.Coins(ctx, f.id); got != 1200 {
		t.Errorf("Expected 1200 coins, got %d", got)
	}
	if len(f.log.entries) != 1 || f.log.entries[0].ProductID != "coins_1200" {
		t.Errorf("Expected one purchase log entry, got %+v", f.log.entries)
	}

	f.rec.LoseHeart(f.id)
	if _, err := f.rec.Buy(ctx, f.id, "hearts_refill"); err != nil {
		t.Fatalf("Buy hearts failed: %v", err)
	}
	if h := f.rec.Hearts(f.id); h.Current != h.Max {
		t.Errorf("Expected hearts refilled, got %d/%d", h.Current, h.Max)
	}

	if _, err := f.rec.Buy(ctx, f.id, "coins_9999"); !errors.Is(err, economy.ErrUnknownProduct) {
		t.Errorf("Expected ErrUnknownProduct, got %v", err)
	}
}

func TestDeclinedPurchaseAppliesNothing(t *testing.T) {
	log := &recordingLog{}
	rec := New(storage.NewMemoryCache(), nil, Options{Purchaser: declineAll{}, PurchaseLog: log})
	id := rec.Identity("carol")
	ctx := context.Background()

	res, err := rec.Buy(ctx, id, "coins_500")
	if err != nil {
		t.Fatalf("Buy returned error: %v", err)
	}
	if res.Success || res.Error == "" {
		t.Errorf("Expected a declined result, got %+v", res)
	}
	if got := rec.Coins(ctx, id); got != 0 {
		t.Errorf("Expected no coins credited, got %d", got)
	}
	if len(log.entries) != 0 {
		t.Errorf("Expected no log entries, got %d", len(log.entries))
	}
}

func TestBuyHint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.rec.BuyHint(ctx, f.id, economy.HintAutoPass); !errors.Is(err, economy.ErrInsufficientCoins) {
		t.Errorf("Expected ErrInsufficientCoins, got %v", err)
	}
	f.rec.AddCoins(ctx, f.id, 300)
	h, err := f.rec.BuyHint(ctx, f.id, economy.HintAutoPass)
	if err != nil {
		t.Fatalf("BuyHint failed: %v", err)
	}
	if h.AutoPass != economy.StarterHints().AutoPass+1 {
		t.Errorf("Expected one more autoPass, got %d", h.AutoPass)
	}
	if got := f.rec.Coins(ctx, f.id); got != 50 {
		t.Errorf("Expected 50 coins left, got %d", got)
	}
}

func TestDailySpin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := levels.NewRand(4)

	first, err := f.rec.DailySpin(ctx, f.id, rng)
	if err != nil {
		t.Fatalf("DailySpin failed: %v", err)
	}
	if first.Prize <= 0 || first.Balance != first.Prize {
		t.Errorf("Unexpected spin result: %+v", first)
	}

	f.clock.Advance(23 * time.Hour)
	if _, err := f.rec.DailySpin(ctx, f.id, rng); !errors.Is(err, ErrSpinNotReady) {
		t.Errorf("Expected ErrSpinNotReady, got %v", err)
	}

	f.clock.Advance(time.Hour)
	second, err := f.rec.DailySpin(ctx, f.id, rng)
	if err != nil {
		t.Fatalf("Second DailySpin failed: %v", err)
	}
	if second.Balance != first.Prize+second.Prize {
		t.Errorf("Expected balance %d, got %d", first.Prize+second.Prize, second.Balance)
	}
	rec, _ := f.remote.Read(ctx, "alice")
	if !rec.LastSpinAt.Equal(f.clock.Now()) {
		t.Errorf("Expected remote last spin %v, got %v", f.clock.Now(), rec.LastSpinAt)
	}
}

func TestPreferredLanguageAndPopup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.rec.SetPreferredLanguage(ctx, f.id, ""); err == nil {
		t.Error("Expected empty language rejected")
	}
	if err := f.rec.SetPreferredLanguage(ctx, f.id, "fr"); err != nil {
		t.Fatalf("SetPreferredLanguage failed: %v", err)
	}
	if got := f.rec.PreferredLanguage(ctx, f.id); got != "fr" {
		t.Errorf("Expected fr, got %q", got)
	}

	if f.rec.HintPopupSeen(f.id) {
		t.Error("Expected popup unseen")
	}
	f.rec.MarkHintPopupSeen(f.id)
	if !f.rec.HintPopupSeen(f.id) {
		t.Error("Expected popup seen")
	}
}
