// Package economy holds the virtual-currency side of the game: coins, hint
// inventory, hearts and the store catalog.
package economy

import "errors"

var (
	ErrInsufficientCoins = errors.New("economy: insufficient coins")
	ErrUnknownProduct    = errors.New("economy: unknown product")
	ErrUnknownHint       = errors.New("economy: unknown hint")
	ErrNoHint            = errors.New("economy: hint inventory empty")
	ErrNoHearts          = errors.New("economy: no hearts left")
)

// Wallet is an absolute coin balance, never negative. Pending marks a
// balance the remote record has not accepted yet.
type Wallet struct {
	Coins   int  `json:"coins"`
	Pending bool `json:"pending,omitempty"`
}

// Apply adds delta to the balance, clamping at zero.
func (w Wallet) Apply(delta int) Wallet {
	w.Coins = max(w.Coins+delta, 0)
	return w
}

// Spend removes amount, failing instead of clamping when funds are short.
func (w Wallet) Spend(amount int) (Wallet, error) {
	if amount < 0 {
		return w, errors.New("economy: negative spend")
	}
	if w.Coins < amount {
		return w, ErrInsufficientCoins
	}
	w.Coins -= amount
	return w, nil
}
