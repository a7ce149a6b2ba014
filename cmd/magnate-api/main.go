package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"magnate/internal/api"
	"magnate/internal/config"
	"magnate/internal/db"
	"magnate/internal/econ"
	"magnate/internal/savefile"
	"magnate/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadAPIFromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var st *store.Store
	catalog := econ.DefaultCatalog(logger)
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		st = store.New(pool, logger)
		if cfg.SeedCatalog {
			if err := st.SeedDefaults(ctx); err != nil {
				logger.Error("seed catalog failed", "err", err)
				os.Exit(1)
			}
		}
		catalog, err = st.LoadCatalog(ctx)
		if err != nil {
			logger.Error("load catalog failed", "err", err)
			os.Exit(1)
		}
	}

	session := econ.NewSession(catalog, logger)
	session.SetEventProbability(cfg.EventProb)

	var snap econ.Snapshot
	var found bool
	var err error
	if st != nil {
		snap, found, err = st.LoadSnapshot(ctx, cfg.SaveSlot)
	} else {
		snap, found, err = savefile.Load("")
	}
	if err != nil {
		logger.Error("load save failed", "err", err)
		os.Exit(1)
	}
	if found {
		if err := session.Restore(snap); err != nil {
			logger.Error("restore save failed", "err", err)
			os.Exit(1)
		}
		logger.Info("session restored", "slot", cfg.SaveSlot, "saved_at", snap.SavedAt)
	}

	clock := econ.NewClock(session, cfg.TickEvery, logger)
	go clock.Run(ctx)
	go autosave(ctx, cfg, logger, session, st)

	server := api.New(cfg, logger, session, st)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("magnate api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}

	// One final save on the way out so a clean shutdown never loses progress.
	if err := persist(context.Background(), cfg, session, st); err != nil {
		logger.Error("final save failed", "err", err)
	}
}

func autosave(ctx context.Context, cfg config.APIConfig, logger *slog.Logger, session *econ.Session, st *store.Store) {
	if cfg.AutosaveEvery <= 0 {
		return
	}
	ticker := time.NewTicker(cfg.AutosaveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := persist(ctx, cfg, session, st); err != nil {
				logger.Error("autosave failed", "err", err)
				continue
			}
			logger.Info("autosave complete", "slot", cfg.SaveSlot)
		}
	}
}

func persist(ctx context.Context, cfg config.APIConfig, session *econ.Session, st *store.Store) error {
	snap := session.Snapshot(time.Now())
	if st != nil {
		return st.SaveSnapshot(ctx, cfg.SaveSlot, snap)
	}
	return savefile.Save("", snap)
}
