package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"bingohall/internal/config"
	"bingohall/internal/game"
	"bingohall/internal/handlers"
	"bingohall/internal/logger"
	"bingohall/internal/relay"
	"bingohall/internal/telemetry"
	"bingohall/internal/viewmodel"
)

func main() {
	if err := run(); err != nil {
		slog.Error("bingohall exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.Logging.Service)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			log.Warn("telemetry shutdown", "error", err)
		}
	}()

	metrics, err := telemetry.NewMetrics(otel.Meter(telemetry.MeterName))
	if err != nil {
		return err
	}

	hall, err := game.NewHall(game.Config{
		PoolSize:         cfg.Game.PoolSize,
		DrawInterval:     cfg.Game.DrawInterval,
		SubscriberBuffer: cfg.Game.SubscriberBuffer,
	}, game.WithLogger(log), game.WithRecorder(metrics), game.WithObserver(metrics))
	if err != nil {
		return err
	}

	encoder, err := viewmodel.NewWinnerEncoder(cfg.Cache.MaxCostBytes)
	if err != nil {
		return err
	}
	defer encoder.Close()

	if cfg.NATS.URL != "" {
		rl, err := relay.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, log)
		if err != nil {
			return err
		}
		rl.Attach(hall)
		defer func() {
			rl.Detach(hall)
			rl.Close()
		}()
		log.Info("nats relay attached", "numbers", rl.NumbersSubject(), "winners", rl.WinnersSubject())
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)
	r.Use(telemetry.HTTPMiddleware(cfg.Logging.Service))

	homeHandler := handlers.NewHomeHandler(hall)
	gameHandler := handlers.NewGameHandler(hall, cfg.Server.KeepAlive, log)
	bingoHandler := handlers.NewBingoHandler(hall, encoder, cfg.Server.KeepAlive, log)
	socketHandler := handlers.NewSocketHandler(hall, encoder, log)

	// Streams stay open for as long as the client listens, so only the
	// request/response routes get a deadline.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
		homeHandler.RegisterRoutes(r)
		gameHandler.RegisterRoutes(r)
		bingoHandler.RegisterRoutes(r)
	})
	gameHandler.RegisterStreams(r)
	bingoHandler.RegisterStreams(r)
	socketHandler.RegisterStreams(r)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		hall.Close()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(sctx)
	})
	return g.Wait()
}
