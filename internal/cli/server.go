package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"quiz-rooms/internal/app"
	"quiz-rooms/internal/config"
	"quiz-rooms/internal/infra/logger"
	"quiz-rooms/internal/infra/memory"
	"quiz-rooms/internal/infra/postgres"
	infraredis "quiz-rooms/internal/infra/redis"
	transport "quiz-rooms/internal/transport/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Init(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	res, err := openSources(ctx, cfg)
	if err != nil {
		return err
	}
	defer res.Close()

	bank, err := app.LoadQuestionBank(ctx, res.loader, cfg.Questions.Deck)
	if err != nil {
		return err
	}
	log.Info("question bank loaded", "deck", cfg.Questions.Deck, "questions", bank.Len(), "source", res.name)

	hub := memory.NewHub(cfg.WS.SendBuffer)
	var notifier app.Notifier = hub
	var rooms app.RoomRegistry = memory.NewRoomStore()
	var publisher *infraredis.Publisher
	markerTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)
	if res.redis != nil {
		rooms = infraredis.NewRoomStore(res.redis, markerTTL)
		publisher = infraredis.NewPublisher(hub, res.redis, 0, log)
		notifier = publisher
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithBarrierRecheckOnLeave(cfg.RecheckOnLeave()),
		app.WithScoreCap(cfg.Rooms.ScoreOncePerQuestion),
	}
	routerOpts := transport.RouterOptions{AllowedOrigins: cfg.Server.AllowedOrigins}

	var archive *postgres.ResultArchive
	if cfg.Postgres.URL != "" {
		db := postgres.OpenBun(cfg.Postgres.URL)
		defer db.Close()
		archive = postgres.NewResultArchive(db, 0, log)
		opts = append(opts, app.WithResultRecorder(archive))
		routerOpts.Results = archive
	}

	service := app.NewQuizService(rooms, bank, notifier, opts...)
	wsHandler := transport.NewWSHandler(service, hub,
		transport.WithWSLogger(log),
		transport.WithRateLimit(cfg.WS.RateLimit, cfg.WS.RateBurst),
		transport.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(service, wsHandler, routerOpts),
		ReadTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting quiz service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	// The sweep also refreshes Redis room markers, so it must run well inside their TTL.
	idle := config.TTLDuration(cfg.Rooms.IdleTimeout, 0)
	sweep := config.TTLDuration(cfg.Rooms.SweepInterval, time.Minute)
	if res.redis != nil && markerTTL > 0 && sweep > markerTTL/3 {
		sweep = markerTTL / 3
	}
	if idle > 0 || res.redis != nil {
		g.Go(func() error { return service.RunJanitor(gctx, sweep, idle) })
	}
	if archive != nil {
		g.Go(func() error { return archive.Run(gctx) })
	}
	if publisher != nil {
		g.Go(func() error { return publisher.Run(gctx) })
	}

	err = g.Wait()
	if err != nil {
		log.Error("server stopped", "err", err)
	}
	return err
}
