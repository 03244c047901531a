package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flagquest/internal/economy"
	"github.com/vovakirdan/flagquest/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show stars, coins, hearts and hints",
	Long: `Shows the current player's progress in every mode together with the
wallet, hearts and hint inventory. Signed-in progress is merged with the
remote record before it is shown.

Examples:
  flagquest progress
  flagquest progress --user alice`,
	Args: cobra.NoArgs,
	Run:  runProgress,
}

func runProgress(_ *cobra.Command, _ []string) {
	ctx := context.Background()
	a := mustOpenApp(ctx, log.WarnLevel)
	defer a.Close()

	rec := a.svc.Reconciler()
	id := a.identity()

	fmt.Printf("Player: %s\n", id)
	fmt.Println()
	for _, mode := range progress.Modes() {
		r := rec.LoadProgress(ctx, id, mode)
		stars := r.Stars()
		fmt.Printf("  %-11s  %3d stars  %2d/%d levels unlocked\n",
			mode.Title(), stars.Total(), r.Unlocked(), progress.TotalLevels)
	}
	fmt.Println()

	fmt.Printf("Coins:  %d\n", rec.Coins(ctx, id))

	hearts := rec.Hearts(id)
	line := fmt.Sprintf("Hearts: %d/%d", hearts.Current, hearts.Max)
	if hearts.Current < hearts.Max {
		line += fmt.Sprintf(" (next in %s)", rec.NextHeartIn(id).Round(time.Second))
	}
	fmt.Println(line)

	hints := rec.Hints(id)
	fmt.Print("Hints: ")
	for _, kind := range economy.HintKinds() {
		fmt.Printf(" %s x%d ", kind.Title(), hints.Count(kind))
	}
	fmt.Println()
}
