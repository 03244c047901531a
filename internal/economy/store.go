package economy

import (
	"context"
	"fmt"
	"time"
)

// ProductType is what a store product grants.
type ProductType string

const (
	ProductCoins  ProductType = "coins"
	ProductHearts ProductType = "hearts"
)

// Product is one entry of the fixed store catalog.
type Product struct {
	ID     string      `json:"id" yaml:"id"`
	Type   ProductType `json:"type" yaml:"type"`
	Reward int         `json:"reward" yaml:"reward"` // Coins credited; ignored for heart refills
	Label  string      `json:"label" yaml:"label"`
}

var products = []Product{
	{ID: "coins_500", Type: ProductCoins, Reward: 500, Label: "500 coins"},
	{ID: "coins_1200", Type: ProductCoins, Reward: 1200, Label: "1,200 coins"},
	{ID: "coins_3000", Type: ProductCoins, Reward: 3000, Label: "3,000 coins"},
	{ID: "hearts_refill", Type: ProductHearts, Reward: 0, Label: "Refill hearts"},
}

// Products returns the store catalog.
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// ProductByID looks up a catalog entry.
func ProductByID(id string) (Product, error) {
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, id)
}

// HintOffer is a hint bundle sold for coins.
type HintOffer struct {
	Kind  HintKind
	Price int
}

// HintOffers lists the coin prices of single hints.
func HintOffers() []HintOffer {
	return []HintOffer{
		{Kind: HintRemoveTwo, Price: 150},
		{Kind: HintAutoPass, Price: 250},
		{Kind: HintPause, Price: 100},
	}
}

// HintPrice returns the coin price of kind.
func HintPrice(kind HintKind) (int, error) {
	for _, o := range HintOffers() {
		if o.Kind == kind {
			return o.Price, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHint, kind)
}

// PurchaseResult is what the payment boundary reports.
type PurchaseResult struct {
	Success bool
	Error   string
}

// Purchaser settles a product purchase for a user.
type Purchaser interface {
	Purchase(ctx context.Context, userID string, p Product) (PurchaseResult, error)
}

// ApproveAll is a Purchaser that settles every request, for local play.
type ApproveAll struct{}

// Purchase implements Purchaser.
func (ApproveAll) Purchase(_ context.Context, _ string, _ Product) (PurchaseResult, error) {
	return PurchaseResult{Success: true}, nil
}

// PurchaseRecord is one purchase log entry.
type PurchaseRecord struct {
	ID        string
	UserID    string
	ProductID string
	Type      ProductType
	Reward    int
	CreatedAt time.Time
}
