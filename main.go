package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/debemdeboas/folio/internal/api"
	"github.com/debemdeboas/folio/internal/app"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/logger"
	"github.com/debemdeboas/folio/internal/sse"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Error loading .env file:", err)
	}

	configPath := flag.String("config", defaultConfigPath(), "Path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	app.SetLoggers(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, nil); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func defaultConfigPath() string {
	if p := os.Getenv(config.EnvConfigPath); p != "" {
		return p
	}
	return "config.yaml"
}

// newServer wires the HTTP server for a, with change events flowing from
// the post repository to SSE clients.
func newServer(a *app.App, log zerolog.Logger) (*http.Server, error) {
	authService, err := a.NewAuth()
	if err != nil {
		return nil, err
	}
	if authService == nil {
		log.Warn().Msg("Authentication is disabled, every write endpoint is public")
	}

	cfg := a.Config
	server := api.New(a.Posts, a.Ingest, authService, sse.NewSSEClients(), api.Options{
		MaxUploadSize: cfg.Server.MaxUploadSize,
		IngestTimeout: cfg.Ingest.Timeout,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		SyntaxTheme:   cfg.Render.SyntaxTheme,
		UploadsDir:    a.UploadsDir,
		Health: func(ctx context.Context) error {
			return a.DB.Get().PingContext(ctx)
		},
	})
	a.Posts.SetNotifier(server.Notify)

	return &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Handler(log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}

// run serves until ctx is done. ready, when set, receives the bound address
// once the listener is open.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, ready func(net.Addr)) error {
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		if ctx.Err() != nil {
			log.Info().Err(err).Msg("Interrupted during startup")
			return nil
		}
		return err
	}
	defer a.Close()

	srv, err := newServer(a, log)
	if err != nil {
		return err
	}

	// Request contexts end on shutdown so open event streams return.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	srv.BaseContext = func(net.Listener) context.Context { return baseCtx }
	srv.RegisterOnShutdown(cancelBase)

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	if ready != nil {
		ready(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", ln.Addr().String()).
			Str("storage", cfg.Storage.Backend).
			Str("render_engine", cfg.Render.Engine).
			Bool("auth", cfg.Auth.Enabled).
			Msg("Starting server")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf(config.ErrServerShutdownFmt, err)
	}
	return nil
}
