package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flagquest/internal/economy"
	"github.com/vovakirdan/flagquest/internal/levels"
	"github.com/vovakirdan/flagquest/internal/reconcile"
)

var flagHistoryLimit int

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Buy coins, hearts and hints; daily spin",
	Long: `The store: coin packs and heart refills, hints bought with coins, and a
free daily spin.

Examples:
  flagquest shop list
  flagquest shop buy coins_500
  flagquest shop buy-hint remove2
  flagquest shop spin
  flagquest shop history`,
}

var shopListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products and hint prices",
	Args:  cobra.NoArgs,
	Run:   runShopList,
}

var shopBuyCmd = &cobra.Command{
	Use:   "buy <product>",
	Short: "Buy a product",
	Args:  cobra.ExactArgs(1),
	Run:   runShopBuy,
}

var shopBuyHintCmd = &cobra.Command{
	Use:   "buy-hint <hint>",
	Short: "Trade coins for one hint (remove2, autoPass, pause)",
	Args:  cobra.ExactArgs(1),
	Run:   runShopBuyHint,
}

var shopSpinCmd = &cobra.Command{
	Use:   "spin",
	Short: "Spin the daily wheel for coins",
	Args:  cobra.NoArgs,
	Run:   runShopSpin,
}

var shopHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past purchases",
	Args:  cobra.NoArgs,
	Run:   runShopHistory,
}

func init() {
	shopHistoryCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of purchases to show")

	shopCmd.AddCommand(shopListCmd)
	shopCmd.AddCommand(shopBuyCmd)
	shopCmd.AddCommand(shopBuyHintCmd)
	shopCmd.AddCommand(shopSpinCmd)
	shopCmd.AddCommand(shopHistoryCmd)
}

func runShopList(_ *cobra.Command, _ []string) {
	fmt.Println("Products:")
	fmt.Println()
	fmt.Printf("  %-14s  %-7s  %s\n", "ID", "Type", "Item")
	fmt.Printf("  %-14s  %-7s  %s\n", "--", "----", "----")
	for _, p := range economy.Products() {
		fmt.Printf("  %-14s  %-7s  %s\n", p.ID, p.Type, p.Label)
	}

	fmt.Println()
	fmt.Println("Hints (paid with coins):")
	fmt.Println()
	for _, offer := range economy.HintOffers() {
		fmt.Printf("  %-10s  %-10s  %d coins\n", offer.Kind, offer.Kind.Title(), offer.Price)
	}
}

func runShopBuy(_ *cobra.Command, args []string) {
	ctx := context.Background()
	a := mustOpenApp(ctx, log.WarnLevel)
	defer a.Close()

	rec := a.svc.Reconciler()
	id := a.identity()
	res, err := rec.Buy(ctx, id, args[0])
	if err != nil {
		a.fail("%v", err)
	}
	if !res.Success {
		a.fail("purchase declined: %s", res.Error)
	}
	hearts := rec.Hearts(id)
	fmt.Printf("Purchased %s. Coins: %d, hearts: %d/%d\n", args[0], rec.Coins(ctx, id), hearts.Current, hearts.Max)
}

func runShopBuyHint(_ *cobra.Command, args []string) {
	ctx := context.Background()
	kind, err := economy.ParseHintKind(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a := mustOpenApp(ctx, log.WarnLevel)
	defer a.Close()

	rec := a.svc.Reconciler()
	id := a.identity()
	hints, err := rec.BuyHint(ctx, id, kind)
	if errors.Is(err, economy.ErrInsufficientCoins) {
		price, _ := economy.HintPrice(kind)
		a.fail("%s costs %d coins, you have %d", kind.Title(), price, rec.Coins(ctx, id))
	}
	if err != nil {
		a.fail("%v", err)
	}
	fmt.Printf("Bought %s. You now have %d. Coins: %d\n", kind.Title(), hints.Count(kind), rec.Coins(ctx, id))
}

func runShopSpin(_ *cobra.Command, _ []string) {
	ctx := context.Background()
	a := mustOpenApp(ctx, log.WarnLevel)
	defer a.Close()

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	res, err := a.svc.Reconciler().DailySpin(ctx, a.identity(), levels.NewRand(seed))
	if errors.Is(err, reconcile.ErrSpinNotReady) {
		fmt.Printf("Already spun today. Next spin at %s\n", res.NextAt.Local().Format("2006-01-02 15:04"))
		return
	}
	if err != nil {
		a.fail("%v", err)
	}
	fmt.Printf("You won %d coins! Balance: %d\n", res.Prize, res.Balance)
}

func runShopHistory(_ *cobra.Command, _ []string) {
	ctx := context.Background()
	a := mustOpenApp(ctx, log.WarnLevel)
	defer a.Close()

	id := a.identity()
	records, err := a.store.Purchases(id.Namespace(), flagHistoryLimit)
	if err != nil {
		a.fail("retrieving purchases: %v", err)
	}
	if len(records) == 0 {
		fmt.Println("No purchases yet.")
		return
	}

	fmt.Printf("  %-16s  %-14s  %-7s  %s\n", "Date", "Product", "Type", "Reward")
	fmt.Printf("  %-16s  %-14s  %-7s  %s\n", "----", "-------", "----", "------")
	for _, r := range records {
		fmt.Printf("  %-16s  %-14s  %-7s  %d\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.ProductID, r.Type, r.Reward)
	}
}
