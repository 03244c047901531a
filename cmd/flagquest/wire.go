package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flagquest/internal/catalog"
	"github.com/vovakirdan/flagquest/internal/config"
	"github.com/vovakirdan/flagquest/internal/levels"
	"github.com/vovakirdan/flagquest/internal/progress"
	"github.com/vovakirdan/flagquest/internal/reconcile"
	"github.com/vovakirdan/flagquest/internal/remote"
	"github.com/vovakirdan/flagquest/internal/session"
	"github.com/vovakirdan/flagquest/internal/storage"
)

// defaultLayoutSeed builds the level pools when no --seed is given.
const defaultLayoutSeed = 20240601

// app holds everything a command needs, opened from the global flags.
type app struct {
	cfg     config.Game
	catalog *catalog.Catalog
	store   *storage.Store
	remote  remote.Store // nil when the remote backend is unavailable
	svc     *session.Service
	log     *log.Logger
}

func newLogger(level log.Level) *log.Logger {
	if flagVerbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "flagquest",
	})
	logger.SetLevel(level)
	return logger
}

// openApp loads config and catalog, opens storage and builds the service.
// A failing remote backend is logged and play continues offline.
func openApp(ctx context.Context, logger *log.Logger) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagPace != "" {
		config.ApplyPace(&cfg, config.Pace(flagPace))
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, err
	}

	var rs remote.Store
	if opened, openErr := remote.Open(ctx, cfg.Remote, store.DB()); openErr != nil {
		logger.Warn("remote store unavailable, playing offline", "backend", cfg.Remote.Backend, "error", openErr)
	} else {
		rs = opened
	}

	// Level pools stay the same between runs unless --seed asks otherwise;
	// question order does not.
	layoutSeed, seed := int64(defaultLayoutSeed), flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	} else {
		layoutSeed = seed
	}

	rec := reconcile.New(store, rs, reconcile.Options{
		Logger:       logger,
		MaxHearts:    cfg.Economy.MaxHearts,
		HeartRegen:   cfg.Economy.HeartRegen,
		SpinPrizes:   cfg.Economy.SpinPrizes,
		SpinCooldown: cfg.Economy.SpinCooldown,
		PurchaseLog:  store,
	})

	svcCfg := session.Config{
		Levels:        levels.Build(cat.Flags(), cfg.LevelParams(), levels.NewRand(layoutSeed)),
		Reconciler:    rec,
		Timing:        cfg.Timing(),
		QuestionCount: cfg.Levels.Questions,
		Seed:          seed + 1,
		Logger:        logger,
	}
	if rs != nil {
		svcCfg.Results = rs
	}

	logger.Debug("opened", "db", flagDBPath, "remote", cfg.Remote.Backend, "flags", cat.Len(), "seed", seed)
	return &app{
		cfg:     cfg,
		catalog: cat,
		store:   store,
		remote:  rs,
		svc:     session.NewService(svcCfg),
		log:     logger,
	}, nil
}

// mustOpenApp opens the app or exits with an error message.
func mustOpenApp(ctx context.Context, level log.Level) *app {
	a, err := openApp(ctx, newLogger(level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return a
}

// Close releases the remote backend and the local database.
func (a *app) Close() {
	if a.remote != nil {
		if err := a.remote.Close(); err != nil {
			a.log.Warn("closing remote store", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing local database", "error", err)
	}
}

// identity returns the player selected by --user.
func (a *app) identity() reconcile.Identity {
	return a.svc.Reconciler().Identity(flagUser)
}

// fail prints an error, releases the app and exits.
func (a *app) fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	a.Close()
	os.Exit(1)
}

// parseModeFlag parses --mode or exits.
func parseModeFlag(s string) progress.Mode {
	mode, err := progress.ParseMode(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return mode
}
