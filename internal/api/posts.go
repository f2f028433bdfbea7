package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/debemdeboas/folio/internal/auth"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/render"
	"github.com/rs/zerolog"
)

// Multipart parts above this size spill to temporary files.
const multipartMemory = 8 << 20

type postRequest struct {
	Title    string `json:"title"`
	Markdown string `json:"markdownContent"`
}

type postResponse struct {
	*model.Post
	HTML string `json:"html,omitempty"`
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, r, err)
		return
	}

	posts, err := s.posts.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, posts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	asHTML := r.URL.Query().Get("format") == "html"
	theme := r.URL.Query().Get("theme")
	if theme == "" {
		theme = s.opts.SyntaxTheme
	}

	// Rendered responses vary with engine and theme as well as content
	etag := `"` + post.ContentHash + `"`
	if asHTML {
		etag = `"` + post.ContentHash + "-" + render.Engine() + "-" + theme + `"`
	}
	w.Header().Set(config.HETag, etag)
	w.Header().Set(config.HCacheControl, "no-cache")
	if match := r.Header.Get(config.HIfNoneMatch); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	resp := postResponse{Post: post}
	if asHTML {
		resp.HTML = string(render.MarkdownCached([]byte(post.Markdown), post.ContentHash, theme))
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodePost(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner, _ := auth.UserIDFromContext(r.Context())
	post, err := s.posts.Insert(r.Context(), req.Title, req.Markdown, owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.WarmCache([]byte(post.Markdown), post.ContentHash, s.opts.SyntaxTheme)
	writeData(w, http.StatusCreated, post)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodePost(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	post, err := s.posts.Update(r.Context(), model.PostID(r.PathValue("id")), req.Title, req.Markdown)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.WarmCache([]byte(post.Markdown), post.ContentHash, s.opts.SyntaxTheme)
	writeData(w, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := model.PostID(r.PathValue("id"))
	if err := s.posts.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]model.PostID{"id": id})
}

// handleUploadPackage runs a zipped blog package through ingestion.
func (s *Server) handleUploadPackage(w http.ResponseWriter, r *http.Request) {
	l := zerolog.Ctx(r.Context())

	if s.opts.MaxUploadSize > 0 {
		if r.ContentLength > s.opts.MaxUploadSize {
			writeError(w, r, fmt.Errorf("%w: request of %d bytes exceeds %d", errPayloadTooLarge, r.ContentLength, s.opts.MaxUploadSize))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(config.FormFieldPackage)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: missing form field %q", errBadRequest, config.FormFieldPackage))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: reading %s: %w", errBadRequest, header.Filename, err))
		return
	}

	ctx := r.Context()
	if s.opts.IngestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.IngestTimeout)
		defer cancel()
	}

	l.Info().Str("filename", header.Filename).Int64("size", header.Size).Msg("Ingesting uploaded package")

	owner, _ := auth.UserIDFromContext(r.Context())
	post, err := s.ingester.IngestAs(ctx, data, owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.WarmCache([]byte(post.Markdown), post.ContentHash, s.opts.SyntaxTheme)
	writeData(w, http.StatusCreated, post)
}

func (s *Server) decodePost(w http.ResponseWriter, r *http.Request) (postRequest, error) {
	var req postRequest
	if s.opts.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		if _, tooLarge := classify(err); tooLarge == CodePayloadTooLarge {
			return req, err
		}
		return req, fmt.Errorf("%w: invalid JSON body: %w", errBadRequest, err)
	}
	return req, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, name)
	}
	return n, nil
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
