package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flagquest/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagServeMode   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the flagquest SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH user name is a signed-in player with its own progress, coins,
hearts and hints. Time trial results share one leaderboard per server.
Dropping the connection mid-level counts as giving up.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.flagquest/host_key

Examples:
  flagquest serve                           # Listen on :23234 with auto-generated key
  flagquest serve --ssh :2222               # Listen on port 2222
  flagquest serve --host-key ./my_host_key  # Use specific host key
  flagquest serve --mode timetrial          # Open the picker in time trial

Users can connect with:
  ssh alice@localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServeMode, "mode", "classic", "Starting mode: classic, timetrial, local")
}

func runServe(_ *cobra.Command, _ []string) {
	ctx := context.Background()
	mode := parseModeFlag(flagServeMode)

	a := mustOpenApp(ctx, log.InfoLevel)
	defer a.Close()

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		Mode:        mode,
		FPS:         flagFPS,
	}

	var board tui.Leaderboard
	if a.remote != nil {
		board = a.remote
	}

	server, err := tui.NewSSHServer(cfg, a.svc, board, a.log.WithPrefix("flagquest-ssh"))
	if err != nil {
		a.fail("creating server: %v", err)
	}

	fmt.Printf("Starting flagquest SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with: ssh <name>@localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		a.fail("server: %v", err)
	}
}
