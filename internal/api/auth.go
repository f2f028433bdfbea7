package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type googleLoginRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid JSON body: %w", errBadRequest, err))
		return
	}
	if req.Token == "" {
		writeError(w, r, fmt.Errorf("%w: token is required", errBadRequest))
		return
	}

	user, err := s.auth.Login(w, r, req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.CurrentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user)
}
