package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/flagquest/internal/platform/tui"
)

var flagMode string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Pick a level and play",
	Long: `Open the level picker and play.

Controls:
  1-4        - Answer
  X          - Remove two wrong options (hint)
  A          - Auto-pass the question (hint)
  P          - Pause the timer (hint, time trial only)
  M          - Switch mode in the level picker
  Tab        - Time trial scores
  D          - Daily spin
  Esc/B      - Give up (costs a heart once you have answered)
  Q/Ctrl+C   - Quit

Modes:
  classic    - Stars by mistakes, coins for new stars
  timetrial  - Score by speed; results go to the leaderboard when signed in
  local      - Practice: classic rules, separate progress, no coins

Pace options (time trial question timer):
  relaxed    - 15 seconds per question
  normal     - 10 seconds per question
  blitz      - 6 seconds per question

Examples:
  flagquest play
  flagquest play --mode timetrial --user alice
  flagquest play --pace blitz
  flagquest play --config ./my-flagquest.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMode, "mode", "classic", "Starting mode: classic, timetrial, local")
}

func runPlay(_ *cobra.Command, _ []string) {
	ctx := context.Background()
	mode := parseModeFlag(flagMode)

	// Logs would tear the alternate screen; only errors get through.
	a := mustOpenApp(ctx, log.ErrorLevel)
	defer a.Close()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	opts := tui.AppOptions{
		Service:  a.svc,
		Identity: a.identity(),
		Mode:     mode,
		FPS:      flagFPS,
		Seed:     flagSeed,
		Width:    width,
		Height:   height,
	}
	if a.remote != nil {
		opts.Board = a.remote
	}

	if err := tui.Run(ctx, opts); err != nil {
		a.fail("%v", err)
	}
	fmt.Println("Thanks for playing!")
}
