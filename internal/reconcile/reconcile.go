// Package reconcile keeps per-identity progress, coins, hints and hearts in
// step between the local device cache and the remote user record. Merges
// only ever take the maximum or union, so replays and stale copies never
// lower anything.
package reconcile

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/flagquest/internal/economy"
	"github.com/vovakirdan/flagquest/internal/remote"
	"github.com/vovakirdan/flagquest/internal/storage"
)

var (
	ErrInvalidLevel = errors.New("reconcile: invalid level")
	ErrInvalidStars = errors.New("reconcile: invalid stars")
	ErrSpinNotReady = errors.New("reconcile: daily spin not ready")
	ErrNoIdentity   = errors.New("reconcile: identity has no user or device id")
)

// Identity owns one set of persisted state: a logged-in user, or an
// anonymous device before login.
type Identity struct {
	UserID   string
	DeviceID string
}

// LoggedIn reports whether the identity has a remote record.
func (i Identity) LoggedIn() bool {
	return i.UserID != ""
}

// Namespace returns the cache namespace for the identity.
func (i Identity) Namespace() string {
	if i.UserID != "" {
		return "user:" + i.UserID
	}
	return "device:" + i.DeviceID
}

// String returns a label for logs.
func (i Identity) String() string {
	return i.Namespace()
}

// PurchaseLog records completed purchases.
type PurchaseLog interface {
	LogPurchase(rec economy.PurchaseRecord) error
}

// Options configures a Reconciler. Zero values get defaults.
type Options struct {
	Logger       *log.Logger
	Now          func() time.Time
	MaxHearts    int
	HeartRegen   time.Duration
	SpinPrizes   []int
	SpinCooldown time.Duration
	Purchaser    economy.Purchaser
	PurchaseLog  PurchaseLog
}

// DefaultSpinPrizes are the coin amounts a daily spin can land on.
var DefaultSpinPrizes = []int{25, 50, 50, 75, 100, 150, 250}

// Reconciler is the single writer for persisted per-identity state.
type Reconciler struct {
	cache  storage.Cache
	remote remote.Store
	log    *log.Logger
	opts   Options

	mu sync.Mutex

	deviceOnce sync.Once
	deviceID   string
}

// New creates a Reconciler. rs may be nil for offline play.
func New(cache storage.Cache, rs remote.Store, opts Options) *Reconciler {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxHearts <= 0 {
		opts.MaxHearts = economy.DefaultMaxHearts
	}
	if opts.HeartRegen <= 0 {
		opts.HeartRegen = economy.DefaultHeartRegen
	}
	if len(opts.SpinPrizes) == 0 {
		opts.SpinPrizes = DefaultSpinPrizes
	}
	if opts.SpinCooldown <= 0 {
		opts.SpinCooldown = 24 * time.Hour
	}
	if opts.Purchaser == nil {
		opts.Purchaser = economy.ApproveAll{}
	}
	return &Reconciler{
		cache:  cache,
		remote: rs,
		log:    opts.Logger,
		opts:   opts,
	}
}

// DeviceID returns the anonymous device id, creating and caching it on the
// first call. Later calls never touch the cache again.
func (r *Reconciler) DeviceID() string {
	r.deviceOnce.Do(func() {
		id, ok, err := r.cache.Get(storage.DeviceIDKey)
		if err != nil {
			r.log.Warn("cannot read device id", "error", err)
		}
		if ok && id != "" {
			r.deviceID = id
			return
		}
		r.deviceID = uuid.New().String()
		if err := r.cache.Set(storage.DeviceIDKey, r.deviceID); err != nil {
			r.log.Warn("cannot persist device id", "error", err)
		}
	})
	return r.deviceID
}

// Identity builds the identity for userID, falling back to the device.
func (r *Reconciler) Identity(userID string) Identity {
	return Identity{UserID: userID, DeviceID: r.DeviceID()}
}

func (r *Reconciler) useRemote(id Identity) bool {
	return r.remote != nil && id.LoggedIn()
}

func (r *Reconciler) key(id Identity, purpose string) string {
	return storage.Key(id.Namespace(), purpose)
}

// readLocal decodes a cached JSON value, logging and reporting false for
// missing or corrupt entries.
func (r *Reconciler) readLocal(id Identity, purpose string, v any) bool {
	found, err := storage.GetJSON(r.cache, r.key(id, purpose), v)
	if err != nil {
		r.log.Warn("local cache read failed", "identity", id, "purpose", purpose, "error", err)
		return false
	}
	return found
}

func (r *Reconciler) writeLocal(id Identity, purpose string, v any) {
	if err := storage.SetJSON(r.cache, r.key(id, purpose), v); err != nil {
		r.log.Warn("local cache write failed", "identity", id, "purpose", purpose, "error", err)
	}
}

// readRemote fetches the remote record, creating it when absent. ok is false
// when the remote is unavailable; the caller then works from local state.
func (r *Reconciler) readRemote(ctx context.Context, id Identity) (remote.Record, bool) {
	if !r.useRemote(id) {
		return remote.Record{}, false
	}
	rec, err := r.remote.Read(ctx, id.UserID)
	if errors.Is(err, remote.ErrNotFound) {
		if err = r.remote.Ensure(ctx, id.UserID); err == nil {
			rec, err = r.remote.Read(ctx, id.UserID)
		}
	}
	if err != nil {
		r.log.Warn("remote read failed", "user", id.UserID, "error", err)
		return remote.Record{}, false
	}
	return rec, true
}

// patchRemote applies p to the remote record and reports whether the
// remote accepted it. Identities without a remote report true.
func (r *Reconciler) patchRemote(ctx context.Context, id Identity, p remote.Patch) bool {
	if !r.useRemote(id) || p.Empty() {
		return true
	}
	err := r.remote.Patch(ctx, id.UserID, p)
	if errors.Is(err, remote.ErrNotFound) {
		if err = r.remote.Ensure(ctx, id.UserID); err == nil {
			err = r.remote.Patch(ctx, id.UserID, p)
		}
	}
	if err != nil {
		r.log.Warn("remote patch failed", "user", id.UserID, "error", err)
		return false
	}
	return true
}
