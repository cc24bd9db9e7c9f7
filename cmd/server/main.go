package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-transit-auth/auth"
	"github.com/jrsteele09/go-transit-auth/clients"
	"github.com/jrsteele09/go-transit-auth/internal/config"
	"github.com/jrsteele09/go-transit-auth/internal/metrics"
	"github.com/jrsteele09/go-transit-auth/internal/storage/postgres"
	"github.com/jrsteele09/go-transit-auth/internal/sweeper"
	"github.com/jrsteele09/go-transit-auth/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	c := config.New()
	logger := newLogger(c.GetEnv())

	if err := run(c, logger); err != nil {
		logger.Fatal().Err(err).Msg("error running server")
	}
	logger.Info().Msg("server stopped")
}

func newLogger(env string) zerolog.Logger {
	if env == "DEV" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

func run(c config.Config, logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	ctx := context.Background()
	db, err := postgres.Open(ctx, c.GetDatabaseURL(), postgres.Options{
		MaxConns:    c.GetMaxDBConns(),
		PingTimeout: 10 * time.Second,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	userStore := postgres.NewUserStore(db)
	clientStore := postgres.NewClientStore(db)
	cachedClients := clients.NewCachedRepo(clientStore, c.GetClientCacheSize(), c.GetClientCacheTTL())

	seed := &bootstrapper{
		clients: clientStore,
		cache:   cachedClients,
		users:   userStore,
		logger:  logger.With().Str("component", "bootstrap").Logger(),
	}
	if err := seed.initialiseSystem(ctx, c); err != nil {
		return err
	}

	service, err := auth.NewService(auth.Repos{
		Users:    userStore,
		Clients:  cachedClients,
		Sessions: postgres.NewSessionStore(db),
		Tokens:   postgres.NewTokenStore(db),
	},
		auth.WithDebugAllowed(c.GetDebugAllowed()),
		auth.WithLogger(logger),
		auth.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	sw := sweeper.New(service.Sessions(), service.Tokens(),
		sweeper.WithLogger(logger.With().Str("component", "sweeper").Logger()),
		sweeper.WithMetrics(m),
	)
	if err := sw.Start(c.GetSweepSchedule()); err != nil {
		return fmt.Errorf("sweeper.Start: %w", err)
	}
	defer func() { <-sw.Stop().Done() }()

	handler, err := server.New(c, service,
		server.WithSweeper(sw),
		server.WithGatherer(registry),
		server.WithLogger(logger.With().Str("component", "http").Logger()),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer, logger)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
