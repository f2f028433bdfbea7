// Package app builds the components shared by the server and the CLI tools
// from a loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/debemdeboas/folio/internal/api"
	"github.com/debemdeboas/folio/internal/archive"
	"github.com/debemdeboas/folio/internal/auth"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/db"
	"github.com/debemdeboas/folio/internal/ingest"
	"github.com/debemdeboas/folio/internal/render"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/storage"
	"github.com/debemdeboas/folio/internal/util/compression"
	"github.com/rs/zerolog"
)

// SetLoggers hands every package its component logger.
func SetLoggers(l zerolog.Logger) {
	component := func(name string) zerolog.Logger {
		return l.With().Str("component", name).Logger()
	}
	config.SetLogger(component("config"))
	db.SetLogger(component("db"))
	repository.SetLogger(component("repository"))
	storage.SetLogger(component("storage"))
	render.SetLogger(component("render"))
	auth.SetLogger(component("auth"))
	api.SetLogger(component("api"))
}

type App struct {
	Config *config.Config

	DB     db.DB
	Posts  *repository.DBPostRepository
	Users  *auth.DBUserRepository
	Store  storage.ObjectStore
	Ingest *ingest.Service

	// UploadsDir is the fs backend's root, empty for s3.
	UploadsDir string
}

func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	if err := render.SetEngine(cfg.Render.Engine); err != nil {
		return nil, err
	}

	database := db.NewSQLite(cfg.Database.Path)
	if err := database.Init(ctx); err != nil {
		return nil, fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
	}

	compressor, err := compression.New(cfg.Database.Compression)
	if err != nil {
		database.Close()
		return nil, err
	}

	store, uploadsDir, err := NewObjectStore(ctx, cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf(config.ErrCreateObjectStoreFmt, err)
	}

	posts := repository.NewDBPostRepository(database, compressor)
	service := ingest.New(
		storage.NewUploader(store, cfg.Storage.KeyPrefix),
		posts,
		ingest.Options{
			UploadConcurrency: cfg.Ingest.UploadConcurrency,
			Limits: archive.Limits{
				MaxEntrySize: cfg.Ingest.MaxEntrySize,
				MaxTotalSize: cfg.Ingest.MaxArchiveSize,
			},
			DuplicateImages: ingest.DuplicatePolicy(cfg.Ingest.DuplicateImages),
		},
		log,
	)

	return &App{
		Config:     cfg,
		DB:         database,
		Posts:      posts,
		Users:      auth.NewDBUserRepository(database),
		Store:      store,
		Ingest:     service,
		UploadsDir: uploadsDir,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

// NewObjectStore builds the configured storage backend.
func NewObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, string, error) {
	switch cfg.Storage.Backend {
	case config.StorageS3:
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
			PathStyle:       cfg.Storage.PathStyle,
			AccessKeyID:     cfg.Secrets.S3AccessKeyID,
			SecretAccessKey: cfg.Secrets.S3SecretAccessKey,
		})
		return store, "", err
	case config.StorageFS:
		store, err := storage.NewFSStore(cfg.Storage.RootDir, cfg.Storage.PublicBaseURL)
		return store, cfg.Storage.RootDir, err
	default:
		return nil, "", fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// NewAuth builds the sign-in service, or nil when authentication is off.
func (a *App) NewAuth() (*auth.Service, error) {
	cfg := a.Config
	if !cfg.Auth.Enabled {
		return nil, nil
	}

	verifier, err := auth.NewGoogleVerifier(cfg.Secrets.GoogleClientID)
	if err != nil {
		return nil, fmt.Errorf(config.ErrCreateVerifierFmt, err)
	}

	if cfg.Secrets.SessionSecret == "" {
		return nil, errors.New(config.ErrSessionSecret)
	}
	sessions, err := auth.NewSessions([]byte(cfg.Secrets.SessionSecret), auth.SessionOptions{
		Name:   cfg.Auth.SessionName,
		MaxAge: cfg.Auth.SessionMaxAge,
		Secure: cfg.Auth.CookieSecure,
	})
	if err != nil {
		return nil, err
	}

	return auth.NewService(verifier, a.Users, sessions, cfg.Auth.AllowedEmails), nil
}
