package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flagquest/internal/progress"
)

var flagLevelsMode string

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Show levels, stars and unlock requirements",
	Long: `Shows every level with its difficulty, your best stars in the chosen
mode and how many more stars unlock the next batch.

Examples:
  flagquest levels
  flagquest levels --mode timetrial --user alice`,
	Args: cobra.NoArgs,
	Run:  runLevels,
}

func init() {
	levelsCmd.Flags().StringVar(&flagLevelsMode, "mode", "classic", "Mode: classic, timetrial, local")
}

func runLevels(_ *cobra.Command, _ []string) {
	ctx := context.Background()
	mode := parseModeFlag(flagLevelsMode)
	a := mustOpenApp(ctx, log.WarnLevel)
	defer a.Close()

	id := a.identity()
	statuses := a.svc.Overview(ctx, id, mode)
	defs := a.svc.Levels()

	fmt.Printf("Levels - %s (%s)\n", mode.Title(), id)
	fmt.Println()
	fmt.Printf("  %-5s  %-10s  %-5s  %-5s  %s\n", "Level", "Difficulty", "Flags", "Stars", "Status")
	fmt.Printf("  %-5s  %-10s  %-5s  %-5s  %s\n", "-----", "----------", "-----", "-----", "------")

	total := 0
	for i, st := range statuses {
		total += st.Stars
		status := "open"
		if !st.Unlocked {
			status = fmt.Sprintf("locked: %d more stars", st.Requirement.Needed)
		}
		fmt.Printf("  %-5d  %-10.1f  %-5d  %-5s  %s\n",
			st.ID, defs[i].MeanDifficulty(), len(defs[i].Pool), starsText(st.Stars), status)
	}

	fmt.Println()
	fmt.Printf("Total stars: %d/%d\n", total, len(statuses)*progress.MaxStarsPerLevel)
}

// starsText renders stars for plain output.
func starsText(n int) string {
	n = progress.ClampStars(n)
	return strings.Repeat("*", n) + strings.Repeat(".", progress.MaxStarsPerLevel-n)
}
