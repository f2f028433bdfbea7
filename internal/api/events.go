package api

import (
	"net/http"
	"time"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/sse"
	"github.com/rs/zerolog"
)

const keepAliveInterval = 30 * time.Second

// handleEvents streams post changes. ?post=<slug> narrows the stream to one
// post.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	l := zerolog.Ctx(r.Context())
	rc := http.NewResponseController(w)

	// The server write timeout would otherwise end the stream
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		l.Debug().Err(err).Msg("Could not clear write deadline for SSE stream")
	}

	w.Header().Set(config.HCType, config.CTypeEventStream)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set(config.HConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Registered before the greeting so no event after it is missed
	client := sse.NewClient(r.URL.Query().Get("post"))
	s.events.Add(client)
	l.Debug().Str("post", client.Slug).Msg("SSE client connected")
	defer func() {
		s.events.Delete(client)
		l.Debug().Msg("SSE client disconnected")
	}()

	if err := sse.Write(w, sse.Event{Name: "connected", Data: []byte("ok")}); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		l.Error().Err(err).Msg("Streaming unsupported")
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-client.Msg:
			if !ok {
				return
			}
			if err := sse.Write(w, e); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
