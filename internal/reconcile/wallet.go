package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/flagquest/internal/economy"
	"github.com/vovakirdan/flagquest/internal/levels"
	"github.com/vovakirdan/flagquest/internal/remote"
	"github.com/vovakirdan/flagquest/internal/storage"
)

// Coins returns the identity's balance. For logged-in users the remote
// balance wins and refreshes the local copy, unless the local copy holds a
// change the remote never accepted; that change is pushed first. Offline the
// local copy is used.
func (r *Reconciler) Coins(ctx context.Context, id Identity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coinsLocked(ctx, id)
}

func (r *Reconciler) coinsLocked(ctx context.Context, id Identity) int {
	var w economy.Wallet
	r.readLocal(id, storage.PurposeCoins, &w)
	rec, ok := r.readRemote(ctx, id)
	switch {
	case !ok:
	case w.Pending:
		coins := w.Coins
		if r.patchRemote(ctx, id, remote.Patch{Coins: &coins}) {
			w.Pending = false
			r.writeLocal(id, storage.PurposeCoins, w)
			r.log.Info("pending balance synced", "identity", id, "coins", coins)
		}
	case rec.Coins != w.Coins:
		w.Coins = rec.Coins
		r.writeLocal(id, storage.PurposeCoins, w)
	}
	return max(w.Coins, 0)
}

// setCoinsLocked stores w locally and remotely. A rejected remote write
// leaves the local copy marked pending so a stale remote cannot replace it.
func (r *Reconciler) setCoinsLocked(ctx context.Context, id Identity, w economy.Wallet, extra remote.Patch) {
	extra.Coins = &w.Coins
	w.Pending = !r.patchRemote(ctx, id, extra)
	r.writeLocal(id, storage.PurposeCoins, w)
}

// AddCoins applies delta to the absolute balance, clamping at zero, and
// returns the new balance.
func (r *Reconciler) AddCoins(ctx context.Context, id Identity, delta int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := economy.Wallet{Coins: r.coinsLocked(ctx, id)}.Apply(delta)
	r.setCoinsLocked(ctx, id, w, remote.Patch{})
	return w.Coins
}

// SpendCoins removes amount or fails with economy.ErrInsufficientCoins.
func (r *Reconciler) SpendCoins(ctx context.Context, id Identity, amount int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spendLocked(ctx, id, amount)
}

func (r *Reconciler) spendLocked(ctx context.Context, id Identity, amount int) (int, error) {
	w, err := economy.Wallet{Coins: r.coinsLocked(ctx, id)}.Spend(amount)
	if err != nil {
		return w.Coins, err
	}
	r.setCoinsLocked(ctx, id, w, remote.Patch{})
	return w.Coins, nil
}

// PreferredLanguage returns the stored language, remote first.
func (r *Reconciler) PreferredLanguage(ctx context.Context, id Identity) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var lang string
	r.readLocal(id, storage.PurposeLanguage, &lang)
	if rec, ok := r.readRemote(ctx, id); ok && rec.PreferredLanguage != "" {
		lang = rec.PreferredLanguage
	}
	return lang
}

// SetPreferredLanguage stores lang locally and remotely.
func (r *Reconciler) SetPreferredLanguage(ctx context.Context, id Identity, lang string) error {
	if lang == "" {
		return fmt.Errorf("reconcile: empty language")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeLocal(id, storage.PurposeLanguage, lang)
	r.patchRemote(ctx, id, remote.Patch{PreferredLanguage: &lang})
	return nil
}

// SpinResult is the outcome of a daily spin.
type SpinResult struct {
	Prize   int
	Balance int
	NextAt  time.Time
}

// DailySpin awards a random coin prize once per cooldown. The last spin time
// is the later of the local and remote values.
func (r *Reconciler) DailySpin(ctx context.Context, id Identity, rng levels.Rand) (SpinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var last time.Time
	r.readLocal(id, storage.PurposeLastSpinAt, &last)
	if rec, ok := r.readRemote(ctx, id); ok && rec.LastSpinAt.After(last) {
		last = rec.LastSpinAt
	}

	now := r.opts.Now()
	if !last.IsZero() {
		next := last.Add(r.opts.SpinCooldown)
		if now.Before(next) {
			return SpinResult{Balance: r.coinsLocked(ctx, id), NextAt: next}, ErrSpinNotReady
		}
	}

	prize := r.opts.SpinPrizes[rng.Intn(len(r.opts.SpinPrizes))]
	w := economy.Wallet{Coins: r.coinsLocked(ctx, id)}.Apply(prize)
	r.writeLocal(id, storage.PurposeLastSpinAt, now)
	r.setCoinsLocked(ctx, id, w, remote.Patch{LastSpinAt: &now})
	return SpinResult{Prize: prize, Balance: w.Coins, NextAt: now.Add(r.opts.SpinCooldown)}, nil
}

// Buy settles a store product through the Purchaser. Only a successful
// purchase applies its reward and writes a log entry, once each.
func (r *Reconciler) Buy(ctx context.Context, id Identity, productID string) (economy.PurchaseResult, error) {
	p, err := economy.ProductByID(productID)
	if err != nil {
		return economy.PurchaseResult{Error: err.Error()}, err
	}
	res, err := r.opts.Purchaser.Purchase(ctx, id.Namespace(), p)
	if err != nil {
		return economy.PurchaseResult{Error: err.Error()}, fmt.Errorf("reconcile: purchase %s: %w", p.ID, err)
	}
	if !res.Success {
		r.log.Info("purchase declined", "identity", id, "product", p.ID, "reason", res.Error)
		return res, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch p.Type {
	case economy.ProductCoins:
		w := economy.Wallet{Coins: r.coinsLocked(ctx, id)}.Apply(p.Reward)
		r.setCoinsLocked(ctx, id, w, remote.Patch{})
	case economy.ProductHearts:
		h := r.heartsLocked(id).Refill(r.opts.Now())
		r.writeLocal(id, storage.PurposeHearts, h)
	default:
		return res, fmt.Errorf("%w: type %q", economy.ErrUnknownProduct, p.Type)
	}

	if r.opts.PurchaseLog != nil {
		err := r.opts.PurchaseLog.LogPurchase(economy.PurchaseRecord{
			ID:        uuid.New().String(),
			UserID:    id.Namespace(),
			ProductID: p.ID,
			Type:      p.Type,
			Reward:    p.Reward,
			CreatedAt: r.opts.Now(),
		})
		if err != nil {
			r.log.Warn("purchase log failed", "identity", id, "product", p.ID, "error", err)
		}
	}
	r.log.Info("purchase applied", "identity", id, "product", p.ID)
	return res, nil
}

// BuyHint trades coins for one unit of a hint.
func (r *Reconciler) BuyHint(ctx context.Context, id Identity, kind economy.HintKind) (economy.Hints, error) {
	price, err := economy.HintPrice(kind)
	if err != nil {
		return economy.Hints{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.spendLocked(ctx, id, price); err != nil {
		return r.hintsLocked(id), err
	}
	hints, err := r.hintsLocked(id).Add(kind, 1)
	if err != nil {
		return hints, err
	}
	r.writeLocal(id, storage.PurposeHints, hints)
	return hints, nil
}
