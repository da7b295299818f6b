package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/verdantpress/verdant/pkg/core"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.logger != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrReadOnlyEssay):
		status = http.StatusConflict
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// actorFrom reads the forwarded identity headers. X-Actor carries the
// identity, X-Actor-Role "editor" or "admin" grants privilege.
func actorFrom(r *http.Request) core.Actor {
	role := r.Header.Get("X-Actor-Role")
	return core.Actor{
		Identity:   r.Header.Get("X-Actor"),
		Privileged: role == "editor" || role == "admin",
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	section := mux.Vars(r)["section"]
	essays, err := s.service.ListEssays(r.Context(), section)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if essays == nil {
		essays = []core.Essay{}
	}
	s.writeJSON(w, http.StatusOK, essays)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload core.CreateEssay
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}
	payload.Section = mux.Vars(r)["section"]
	if payload.UpdatedBy == "" {
		payload.UpdatedBy = actorFrom(r).Identity
	}
	if payload.Slug == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "slug is required"})
		return
	}

	essay, err := s.service.Repository().Create(r.Context(), payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.logger != nil {
		s.logger.Info("essay created", "id", essay.ID, "section", essay.Section, "slug", essay.Slug)
	}
	s.writeJSON(w, http.StatusCreated, essay)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	essay, err := s.service.GetEssay(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, essay)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var updates core.UpdateEssay
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}
	if updates.UpdatedBy == "" {
		updates.UpdatedBy = actorFrom(r).Identity
	}

	essay, err := s.service.Repository().Update(r.Context(), mux.Vars(r)["id"], updates)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, essay)
}

type statusRequest struct {
	Status    core.Status `json:"status"`
	UpdatedBy string      `json:"updatedBy"`
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}
	if req.Status != core.StatusDraft && req.Status != core.StatusPublished {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "status must be draft or published"})
		return
	}
	if req.UpdatedBy == "" {
		req.UpdatedBy = actorFrom(r).Identity
	}

	essay, err := s.service.Repository().SetStatus(r.Context(), mux.Vars(r)["id"], req.Status, req.UpdatedBy)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, essay)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleEvents streams repository change events over a websocket. The
// optional "pattern" query parameter filters by "section/slug" glob.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "**"
	}

	events, err := s.service.Watch(r.Context(), pattern)
	if err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("websocket upgrade failed", "error", err)
		}
		return
	}
	defer conn.Close()

	// Reader goroutine: only pongs and client close are expected.
	go func() {
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
