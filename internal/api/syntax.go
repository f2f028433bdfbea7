package api

import (
	"fmt"
	"net/http"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/render"
	"github.com/debemdeboas/folio/internal/repository"
)

func (s *Server) handleListThemes(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]any{
		"default": s.opts.SyntaxTheme,
		"themes":  render.Themes(),
	})
}

func (s *Server) handleSyntaxCSS(w http.ResponseWriter, r *http.Request) {
	theme := r.PathValue("theme")
	if !render.HasTheme(theme) {
		writeError(w, r, fmt.Errorf("%w: syntax theme %q", repository.ErrNotFound, theme))
		return
	}

	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HCacheControl, "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(render.SyntaxCSS(theme)))
}
