package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/matchups/internal/api"
	"github.com/ramonehamilton/matchups/internal/config"
	"github.com/ramonehamilton/matchups/internal/dashboard"
	"github.com/ramonehamilton/matchups/internal/events"
	"github.com/ramonehamilton/matchups/internal/logger"
	"github.com/ramonehamilton/matchups/internal/matchups"
	"github.com/ramonehamilton/matchups/internal/snapshot"
	"github.com/ramonehamilton/matchups/internal/statsapi"
	"github.com/ramonehamilton/matchups/internal/storage"
	"github.com/ramonehamilton/matchups/internal/storage/repository"
)

var (
	servePort        int
	serveOpenBrowser bool
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "API server port (overrides config)")
	serveCmd.Flags().BoolVar(&serveOpenBrowser, "open", false, "open the frontend in a browser once started")
}

// serve runs the server until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config) error {
	db, err := storage.Open(storage.DefaultConfig(cfg.Storage.Path))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	dispatcher := events.NewEventDispatcher()
	dispatcher.Register(events.NewLogObserver(logger.Component("events")))

	svc := dashboard.NewService(dashboard.Config{
		Source:     buildSource(cfg, db),
		Settings:   repository.NewSettingsRepository(db.Conn()),
		Dispatcher: dispatcher,
		Options:    cfg.Engine,
	})

	// The server still starts without tables; POST /refresh retries.
	if err := svc.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial load failed, serving without tables")
	}

	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: []string{cfg.Server.FrontendOrigin},
		OpenBrowser:    serveOpenBrowser,
		FrontendURL:    cfg.Server.FrontendOrigin,
	}, svc)
	dispatcher.Register(server.NewWebSocketObserver())

	if err := server.Start(); err != nil {
		return err
	}

	if cfg.Snapshot.Dir != "" && cfg.Snapshot.Watch {
		watcher := snapshot.NewWatcher(cfg.Snapshot.Dir, reloadInto(ctx, svc, cfg.Snapshot.Dir))
		go func() {
			if err := watcher.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Snapshot watcher stopped")
			}
		}()
	}

	if cfg.Snapshot.Dir == "" && cfg.RefreshInterval() > 0 {
		scheduler := dashboard.NewRefreshScheduler(svc, cfg.RefreshInterval(), func(err error) {
			if err != nil {
				log.Warn().Err(err).Msg("Scheduled refresh failed")
			}
		})
		go func() {
			if err := scheduler.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Refresh scheduler stopped")
			}
		}()
	}

	log.Info().Int("port", cfg.Server.Port).Msg("Dashboard ready")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("Dashboard stopped")
	return nil
}

// buildSource prefers a snapshot directory; otherwise it queries the stats
// API through the persisted snapshot cache.
func buildSource(cfg *config.Config, db *storage.DB) dashboard.Source {
	if cfg.Snapshot.Dir != "" {
		return snapshot.Dir(cfg.Snapshot.Dir)
	}

	opts := statsapi.ClientOptions{
		BaseURL:  cfg.API.BaseURL,
		Token:    cfg.API.Token,
		Timeout:  cfg.APITimeout(),
		CacheTTL: cfg.CacheTTL(),
	}
	if gap := cfg.RateLimit(); gap > 0 {
		opts.RateLimit = rate.Every(gap)
	}

	query := statsapi.Query{
		GameType:  cfg.API.GameType,
		RankRange: cfg.API.RankRange,
		TimeRange: cfg.API.TimeRange,
		Region:    cfg.API.Region,
	}
	upstream := statsapi.NewClient(opts).Source(query)
	return dashboard.NewCachedSource(upstream, repository.NewSnapshotRepository(db.Conn()), upstream.Key())
}

func reloadInto(ctx context.Context, svc *dashboard.Service, dir string) func(matchups.RawTables, error) {
	return func(raw matchups.RawTables, err error) {
		if err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Snapshot reload failed")
			return
		}
		tables, err := raw.Decode()
		if err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Snapshot decode failed")
			return
		}
		svc.ReplaceTables(ctx, tables, snapshot.Dir(dir).Name())
	}
}
