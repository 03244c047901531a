// flagquest is a flag-trivia game for the terminal.
//
// Usage:
//
//	flagquest play               - Pick a level and play
//	flagquest levels             - Show levels, stars and unlock requirements
//	flagquest progress           - Show stars, coins, hearts and hints
//	flagquest scores <level>     - Show time trial results for a level
//	flagquest shop ...           - Buy coins, hearts and hints; daily spin
//	flagquest catalog            - List the flag catalog
//	flagquest lang [code]        - Show or set the preferred language
//	flagquest serve              - Start SSH server for remote play
//
// Global flags:
//
//	--user <name>    - Play as a signed-in user (default: anonymous device)
//	--seed <value>   - Set RNG seed for reproducible levels and questions
//	--db <path>      - Set local database path (default: ~/.flagquest/flagquest.db)
//	--config <path>  - Use a custom game config YAML
//	--pace <preset>  - Question timer preset: relaxed, normal, blitz
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagUser    string
	flagSeed    int64
	flagDBPath  string
	flagConfig  string
	flagFPS     int
	flagPace    string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flagquest",
	Short: "FlagQuest - Guess the flag in your terminal",
	Long: `FlagQuest is a flag-trivia game: thirty levels of growing difficulty,
three stars per level, hints, hearts and a time trial leaderboard.

Available commands:
  play      - Pick a level and play
  levels    - Show levels, stars and unlock requirements
  progress  - Show stars, coins, hearts and hints
  scores    - View time trial results
  shop      - Buy coins, hearts and hints; daily spin
  catalog   - List the flag catalog
  lang      - Show or set the preferred language
  serve     - Start SSH server for remote play

Examples:
  flagquest play
  flagquest play --mode timetrial --user alice
  flagquest levels --mode classic
  flagquest shop buy-hint remove2
  flagquest serve --ssh :2222`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "Signed-in user id (empty = anonymous device)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.flagquest/flagquest.db", "Path to local database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagPace, "pace", "", "Question timer preset: relaxed, normal, blitz (default from config)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 20, "Question screen redraw rate")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(shopCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(langCmd)
	rootCmd.AddCommand(serveCmd)
}
