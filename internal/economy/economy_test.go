package economy

import (
	"errors"
	"testing"
	"time"
)

func TestWalletClamps(t *testing.T) {
	w := Wallet{Coins: 50}.Apply(-80)
	if w.Coins != 0 {
		t.Errorf("Expected balance clamped to 0, got %d", w.Coins)
	}
	w = w.Apply(120)
	if _, err := w.Spend(200); !errors.Is(err, ErrInsufficientCoins) {
		t.Errorf("Expected ErrInsufficientCoins, got %v", err)
	}
	w, err := w.Spend(100)
	if err != nil || w.Coins != 20 {
		t.Errorf("Expected 20 coins after spend, got %d (%v)", w.Coins, err)
	}
}

func TestDecodeHintsCurrentShape(t *testing.T) {
	h, migrated, err := DecodeHints([]byte(`{"remove2":4,"autoPass":0,"pause":-2}`))
	if err != nil {
		t.Fatalf("DecodeHints failed: %v", err)
	}
	if migrated {
		t.Error("Current shape should not be migrated")
	}
	if h != (Hints{RemoveTwo: 4, AutoPass: 0, Pause: 0}) {
		t.Errorf("Unexpected hints: %+v", h)
	}
}

func TestDecodeHintsLegacy(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Hints
	}{
		{"fifty and skip", `{"fifty":2,"skip":1,"freeze":3}`, Hints{RemoveTwo: 2, AutoPass: 1, Pause: 3}},
		{"long names", `{"fiftyFifty":1,"timeFreeze":2}`, Hints{RemoveTwo: 1, Pause: 2}},
		{"mixed keys summed", `{"fifty":1,"fiftyFifty":2,"autoPass":1}`, Hints{RemoveTwo: 3, AutoPass: 1}},
		{"junk ignored", `{"fifty":"x","coins":50}`, Hints{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, migrated, err := DecodeHints([]byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeHints failed: %v", err)
			}
			if !migrated {
				t.Error("Expected legacy record to be migrated")
			}
			if h != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, h)
			}
		})
	}
}

func TestDecodeHintsFallbacks(t *testing.T) {
	h, migrated, err := DecodeHints(nil)
	if err != nil || !migrated || h != StarterHints() {
		t.Errorf("Expected starter hints for empty input, got %+v %v %v", h, migrated, err)
	}
	h, _, err = DecodeHints([]byte(`{not json`))
	if err == nil {
		t.Error("Expected decode error for corrupt input")
	}
	if h != StarterHints() {
		t.Errorf("Expected starter hints on corrupt input, got %+v", h)
	}
}

func TestConsumeHint(t *testing.T) {
	h := Hints{AutoPass: 1}
	h, err := h.Consume(HintAutoPass)
	if err != nil || h.AutoPass != 0 {
		t.Fatalf("Expected autoPass consumed, got %+v (%v)", h, err)
	}
	if _, err := h.Consume(HintAutoPass); !errors.Is(err, ErrNoHint) {
		t.Errorf("Expected ErrNoHint, got %v", err)
	}
	if _, err := h.Consume("teleport"); !errors.Is(err, ErrUnknownHint) {
		t.Errorf("Expected ErrUnknownHint, got %v", err)
	}
}

func TestHeartsRegenerate(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := FullHearts(5, start)

	h, err := h.LoseOne(start)
	if err != nil {
		t.Fatalf("LoseOne failed: %v", err)
	}
	h, _ = h.LoseOne(start.Add(time.Minute))
	if h.Current != 3 {
		t.Fatalf("Expected 3 hearts, got %d", h.Current)
	}
	if got := h.TimeUntilNext(start.Add(4*time.Minute), DefaultHeartRegen); got != 6*time.Minute {
		t.Errorf("Expected 6m until next heart, got %v", got)
	}

	h = h.Regenerate(start.Add(15*time.Minute), DefaultHeartRegen)
	if h.Current != 4 {
		t.Errorf("Expected 4 hearts after 15m, got %d", h.Current)
	}
	if !h.LastRegenAt.Equal(start.Add(10 * time.Minute)) {
		t.Errorf("Expected regen clock at +10m, got %v", h.LastRegenAt)
	}

	h = h.Regenerate(start.Add(3*time.Hour), DefaultHeartRegen)
	if h.Current != 5 {
		t.Errorf("Expected regen capped at max, got %d", h.Current)
	}
	if !h.NextRefreshAt(DefaultHeartRegen).IsZero() {
		t.Error("Expected no next refresh at max")
	}
}

func TestHeartsEmpty(t *testing.T) {
	now := time.Now()
	h := Hearts{Current: 0, Max: 5, LastRegenAt: now}
	if _, err := h.LoseOne(now); !errors.Is(err, ErrNoHearts) {
		t.Errorf("Expected ErrNoHearts, got %v", err)
	}
	if h.Refill(now).Current != 5 {
		t.Error("Expected refill to max")
	}
}

func TestProducts(t *testing.T) {
	if len(Products()) != 4 {
		t.Errorf("Expected 4 products, got %d", len(Products()))
	}
	p, err := ProductByID("hearts_refill")
	if err != nil || p.Type != ProductHearts {
		t.Errorf("Expected hearts refill product, got %+v (%v)", p, err)
	}
	if _, err := ProductByID("gems"); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("Expected ErrUnknownProduct, got %v", err)
	}
	if price, _ := HintPrice(HintPause); price != 100 {
		t.Errorf("Expected pause price 100, got %d", price)
	}
}
