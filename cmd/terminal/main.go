package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bedside_terminal/internal/config"
	"bedside_terminal/internal/handlers"
	"bedside_terminal/internal/logger"
	"bedside_terminal/internal/metrics"
	"bedside_terminal/internal/presentation"
	"bedside_terminal/internal/protocol"
	"bedside_terminal/internal/repository"
	"bedside_terminal/internal/repository/db"
	"bedside_terminal/internal/server"
	"bedside_terminal/internal/service"
	"bedside_terminal/internal/session"
	"bedside_terminal/internal/stream"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// load configs/config.yml
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	defer func() { _ = log.Sync() }()

	// open DB
	conn, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// presentation: websocket renderers plus the log
	hub := presentation.NewHub(0, log)
	sink := presentation.Multi{hub, presentation.NewLogSink(log)}

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.TerminalOptions{
		Machine: session.NewMachine(session.Config{
			DefaultPatient:  cfg.Session.DefaultPatient,
			DefaultEditTime: cfg.Session.DefaultEditTime,
			SwipeStep:       cfg.Session.SwipeStep,
			WarningDuration: cfg.Notices.WarningDuration,
			SuccessDuration: cfg.Notices.SuccessDuration,
		}),
		Sink:    sink,
		Metrics: m,
		Log:     log,
		Seed:    cfg.Seed,
	})
	apiHandler := handlers.NewHandler(services, hub, reg, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := services.Terminal.Start(ctx); err != nil {
		log.Errorw("terminal_start_degraded", "err", err)
	}

	// event source -> terminal, one ordered channel
	events := make(chan protocol.Event)
	manager := stream.NewManager(stream.Config{
		Addr:          cfg.Stream.Addr(),
		RetryInterval: cfg.Stream.RetryInterval,
		DialTimeout:   cfg.Stream.DialTimeout,
		ReadBuffer:    cfg.Stream.ReadBuffer,
		MaxLineBytes:  cfg.Stream.MaxLineBytes,
	}, nil, sink, log, m)
	go manager.Run(ctx, events)
	go services.Terminal.Run(ctx, events)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.HTTP.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	log.Infow("opening sqlite", "path", cfg.DB.Path)
	return db.InitDB(cfg.DB.Path)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down terminal...")

	// stop the stream and terminal loops
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
