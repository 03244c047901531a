package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var flagScoresLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores <level>",
	Short: "Show time trial results for a level",
	Long: `Display the best time trial scores for the specified level, read from
the configured remote backend.

Examples:
  flagquest scores 1
  flagquest scores 12 --limit 25`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of results to show")
}

func runScores(_ *cobra.Command, args []string) {
	ctx := context.Background()

	levelID, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid level %q\n", args[0])
		os.Exit(1)
	}

	a := mustOpenApp(ctx, log.WarnLevel)
	defer a.Close()

	if _, ok := a.svc.Levels().ByID(levelID); !ok {
		a.fail("unknown level %d", levelID)
	}
	if a.remote == nil {
		a.fail("remote backend %q is unavailable", a.cfg.Remote.Backend)
	}

	results, err := a.remote.TopResults(ctx, levelID, flagScoresLimit)
	if err != nil {
		a.fail("retrieving results: %v", err)
	}

	fmt.Printf("Time Trial - Level %d\n", levelID)
	fmt.Println()

	if len(results) == 0 {
		fmt.Println("No results recorded yet.")
		fmt.Println()
		fmt.Println("Play 'flagquest play --mode timetrial --user <name>' to set the first score!")
		return
	}

	fmt.Printf("  %-4s  %-16s  %-6s  %-5s  %s\n", "Rank", "Player", "Best", "Plays", "Updated")
	fmt.Printf("  %-4s  %-16s  %-6s  %-5s  %s\n", "----", "------", "----", "-----", "-------")
	for i, r := range results {
		fmt.Printf("  %-4d  %-16s  %-6d  %-5d  %s\n",
			i+1, r.UserID, r.BestScore, r.PlaysCount, r.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
}
