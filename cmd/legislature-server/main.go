// Package main is the entry point for the Legislatura game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MRamiBalles/Legislatura/internal/clock"
	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/collaborators/baseline"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/engine"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/infra/ai"
	"github.com/MRamiBalles/Legislatura/internal/infra/cache"
	"github.com/MRamiBalles/Legislatura/internal/infra/storage"
	"github.com/MRamiBalles/Legislatura/internal/network"
	"github.com/MRamiBalles/Legislatura/internal/platform/config"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
	"github.com/MRamiBalles/Legislatura/internal/platform/metrics"
	"github.com/MRamiBalles/Legislatura/internal/random"
	"github.com/MRamiBalles/Legislatura/internal/scenario"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	appLogger := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, appLogger *logger.Logger) error {
	seed := cfg.Seed
	if seed == 0 {
		s, err := random.NewSeed()
		if err != nil {
			return err
		}
		seed = s
	}
	appLogger.Info("bootstrapping engine", "seed", seed, "political_system", cfg.PoliticalSystem)
	collector := metrics.New()
	engOpts := []engine.Option{engine.WithRandom(random.NewSeeded(seed)), engine.WithMetrics(collector)}
	if cfg.LLMAPIKey != "" {
		wire := ai.NewChatWire(ai.ChatConfig{
			APIKey: cfg.LLMAPIKey,
			URL:    cfg.LLMBaseURL,
			Model:  cfg.LLMModel,
		}, ai.NewAllowance(cfg.LLMDailyBudget, cfg.LLMDailyBudget*30))
		appLogger.Info("news desk uses LLM", "wire", wire.Name())
		engOpts = append(engOpts, engine.WithCollaborators(collaborators.Set{
			News: ai.NewNewsWriter(wire, baseline.News{}, appLogger.With("component", "newsroom")),
		}))
	}
	eng := engine.New(appLogger, engOpts...)

	var (
		repo     *storage.SQLRepository
		recap    *storage.Reconstructor
		eventLog = events.NewEventLog(nil)
		sessOpts []engine.SessionOption
		apiOpts  = []network.APIOption{network.WithMetricsHandler(collector.Handler())}
		loaded   *campaign.Campaign
		closeDB  = func() {}
	)
	if cfg.DBDriver != "none" {
		appLogger.Info("opening database", "driver", cfg.DBDriver)
		db, dialect, err := storage.Open(ctx, cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return err
		}
		closeDB = func() { db.Close() }
		repo = storage.NewSQLRepository(db, dialect)
		recap = storage.NewReconstructor(repo)
		eventLog = events.NewEventLog(storage.NewEventSink(repo, collector))
		apiOpts = append(apiOpts, network.WithRecap(recap))
		if cfg.Autosave {
			sessOpts = append(sessOpts, engine.WithSaver(repo))
		}
		loaded, err = loadCampaign(ctx, repo, cfg.CampaignID)
		if err != nil {
			closeDB()
			return err
		}
	}
	defer closeDB()

	c := loaded
	if c == nil {
		start, err := cfg.Start()
		if err != nil {
			return fmt.Errorf("start date: %w", err)
		}
		appLogger.Info("starting new campaign", "campaign", cfg.CampaignID, "start", start.String())
		fresh, err := scenario.Default(scenario.Options{ID: cfg.CampaignID, PoliticalSystem: cfg.PoliticalSystem, Start: start})
		if err != nil {
			return err
		}
		c = fresh
		if repo != nil {
			if err := repo.SaveCampaign(ctx, c); err != nil {
				return err
			}
		}
	} else {
		appLogger.Info("restored campaign", "campaign", c.ID, "date", c.CurrentDate.String())
		n, err := recap.Restore(ctx, c.ID, eventLog)
		if err != nil {
			return err
		}
		appLogger.Info("restored event log", "events", n)
	}

	session := engine.NewSession(eng, c, appLogger, append(sessOpts, engine.WithEventLog(eventLog))...)

	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			appLogger.Warn("redis unavailable, serving status from memory", "error", err)
		} else {
			defer rdb.Close()
			apiOpts = append(apiOpts, network.WithCache(cache.NewCampaignCache(rdb)))
		}
	}

	hub := network.NewHub(session, collector, appLogger)
	session.Observe(hub.Observer())
	api := network.NewAPI(session, hub, appLogger, apiOpts...)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	if cfg.DayInterval > 0 {
		clk := clock.New(session, cfg.DayInterval, appLogger)
		g.Go(func() error {
			clk.Start(gctx)
			return nil
		})
	}
	g.Go(func() error {
		appLogger.Info("HTTP API & WS server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// loadCampaign returns nil when no snapshot exists yet.
func loadCampaign(ctx context.Context, repo *storage.SQLRepository, id string) (*campaign.Campaign, error) {
	c, err := repo.LoadCampaign(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return c, err
}
