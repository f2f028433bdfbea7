// Package api serves posts, package uploads, sign-in and change events over
// HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/debemdeboas/folio/internal/auth"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/routes"
	"github.com/debemdeboas/folio/internal/sse"
	"github.com/rs/zerolog"
)

var apiLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

// Ingester runs the package ingestion pipeline.
type Ingester interface {
	IngestAs(ctx context.Context, data []byte, owner model.UserID) (*model.Post, error)
}

type Options struct {
	MaxUploadSize int64
	IngestTimeout time.Duration
	AllowedOrigin string
	SyntaxTheme   string

	// UploadsDir is served under /uploads/ when set.
	UploadsDir string

	// Health reports whether the service can serve requests.
	Health func(ctx context.Context) error
}

type Server struct {
	posts    repository.PostRepository
	ingester Ingester
	auth     *auth.Service // nil disables authentication
	events   *sse.SSEClients
	opts     Options

	mux *http.ServeMux
}

func New(posts repository.PostRepository, ingester Ingester, authService *auth.Service, events *sse.SSEClients, opts Options) *Server {
	s := &Server{
		posts:    posts,
		ingester: ingester,
		auth:     authService,
		events:   events,
		opts:     opts,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	protect := s.requireAuth()

	s.mux.HandleFunc(routes.Method(http.MethodGet, routes.Health), s.handleHealth)

	s.mux.HandleFunc(routes.Method(http.MethodGet, routes.Posts), s.handleListPosts)
	s.mux.HandleFunc(routes.Method(http.MethodGet, routes.PostBySlug), s.handleGetPost)
	s.mux.Handle(routes.Method(http.MethodPost, routes.Posts), protect(http.HandlerFunc(s.handleCreatePost)))
	s.mux.Handle(routes.Method(http.MethodPost, routes.PostsPackage), protect(http.HandlerFunc(s.handleUploadPackage)))
	s.mux.Handle(routes.Method(http.MethodPut, routes.PostByID), protect(http.HandlerFunc(s.handleUpdatePost)))
	s.mux.Handle(routes.Method(http.MethodDelete, routes.PostByID), protect(http.HandlerFunc(s.handleDeletePost)))

	s.mux.HandleFunc(routes.Method(http.MethodGet, routes.Events), s.handleEvents)

	s.mux.HandleFunc(routes.Method(http.MethodGet, routes.SyntaxThemes), s.handleListThemes)
	s.mux.HandleFunc(routes.Method(http.MethodGet, routes.SyntaxCSS), s.handleSyntaxCSS)

	if s.auth != nil {
		s.mux.HandleFunc(routes.Method(http.MethodPost, routes.AuthGoogle), s.handleGoogleLogin)
		s.mux.HandleFunc(routes.Method(http.MethodPost, routes.AuthLogout), s.handleLogout)
		s.mux.Handle(routes.Method(http.MethodGet, routes.AuthMe), protect(http.HandlerFunc(s.handleMe)))
	}

	if s.opts.UploadsDir != "" {
		s.mux.Handle(routes.Method(http.MethodGet, routes.Uploads), http.StripPrefix(routes.Uploads, http.FileServer(noDirFS{http.Dir(s.opts.UploadsDir)})))
	}

	s.mux.HandleFunc(routes.Root, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, repository.ErrNotFound)
	})
}

// Handler returns the mux wrapped in the standard middleware stack.
func (s *Server) Handler(base zerolog.Logger) http.Handler {
	return Chain(s.mux,
		WithLogging(base),
		WithRecovery,
		WithSecurityHeaders,
		WithCORS(s.opts.AllowedOrigin),
	)
}

func (s *Server) requireAuth() Middleware {
	if s.auth == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.auth.Require(writeError)
}

// Notify broadcasts a repository change to SSE clients.
func (s *Server) Notify(change repository.Change) {
	data, err := json.Marshal(change.Post)
	if err != nil {
		apiLogger.Error().Err(err).Msg("Failed to encode change event")
		return
	}
	delivered := s.events.Broadcast(change.Post.Slug, sse.Event{Name: string(change.Kind), Data: data})
	apiLogger.Debug().
		Str("event", string(change.Kind)).
		Str("slug", change.Post.Slug).
		Int("clients", delivered).
		Msg("Broadcast post change")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// noDirFS hides directory listings.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
