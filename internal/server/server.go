package server

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"

	"panel-cli/internal/model"
)

const sessionCookie = "panel_session"

// Server serves the panel REST API.
type Server struct {
	cfg     Config
	storage *Storage
	auth    *Authenticator
	logger  *log.Logger
}

func New(cfg Config, storage *Storage, logger *log.Logger) (*Server, error) {
	auth, err := NewAuthenticator(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{cfg: cfg, storage: storage, auth: auth, logger: logger}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/auth/status", s.handleAuthStatus)
	mux.HandleFunc("POST /api/auth", s.handleAuth)
	mux.HandleFunc("GET /api/cards", s.handleListCards)
	mux.HandleFunc("POST /api/cards", s.requireAuth(s.handleCreateCard))
	mux.HandleFunc("PUT /api/cards/{id}", s.requireAuth(s.handleUpdateCard))
	mux.HandleFunc("DELETE /api/cards/{id}", s.requireAuth(s.handleDeleteCard))
	mux.HandleFunc("POST /api/cards/reorder", s.requireAuth(s.handleReorder))
	mux.HandleFunc("GET /api/icons", s.handleIcons)
	return mux
}

type responseEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Details any    `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, env responseEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.logger.Printf("write response: %v", err)
	}
}

func (s *Server) ok(w http.ResponseWriter, data any) {
	s.writeJSON(w, http.StatusOK, responseEnvelope{Success: true, Data: data})
}

func (s *Server) fail(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, responseEnvelope{Success: false, Message: message})
}

func (s *Server) authenticated(r *http.Request) bool {
	ck, err := r.Cookie(sessionCookie)
	return err == nil && s.auth.VerifySession(ck.Value)
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticated(r) {
			s.fail(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.ok(w, map[string]string{"status": "ok"})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	s.ok(w, map[string]bool{"authenticated": s.authenticated(r)})
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Password) == "" {
		s.fail(w, http.StatusBadRequest, "password is required")
		return
	}

	token, err := s.auth.Authenticate(body.Password, clientKey(r))
	if err != nil {
		var af *AuthFailure
		if errors.As(err, &af) {
			details := map[string]any{}
			if af.Locked {
				details["locked"] = true
			} else {
				details["attempts_left"] = af.AttemptsLeft
			}
			s.writeJSON(w, http.StatusUnauthorized, responseEnvelope{
				Success: false,
				Message: af.Message,
				Details: details,
			})
			return
		}
		s.logger.Printf("auth: %v", err)
		s.fail(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.writeJSON(w, http.StatusOK, responseEnvelope{Success: true})
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.storage.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.logger.Printf("list cards: %v", err)
		s.fail(w, http.StatusInternalServerError, "failed to load cards")
		return
	}
	if cards == nil {
		cards = []model.Card{}
	}
	s.ok(w, map[string]any{"items": cards})
}

func decodeFields(r *http.Request) (model.CardFields, error) {
	var fields model.CardFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return model.CardFields{}, errors.New("invalid request body")
	}
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return model.CardFields{}, err
	}
	return fields, nil
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	card, err := s.storage.Create(r.Context(), fields)
	if err != nil {
		s.storageError(w, "create card", err)
		return
	}
	s.ok(w, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	card, err := s.storage.Update(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		s.storageError(w, "update card", err)
		return
	}
	s.ok(w, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.storageError(w, "delete card", err)
		return
	}
	s.writeJSON(w, http.StatusOK, responseEnvelope{Success: true})
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Orders []model.OrderEntry `json:"orders"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.Orders) == 0 {
		s.fail(w, http.StatusBadRequest, "orders must not be empty")
		return
	}
	if err := s.storage.Reorder(r.Context(), body.Orders); err != nil {
		s.storageError(w, "reorder cards", err)
		return
	}
	s.writeJSON(w, http.StatusOK, responseEnvelope{Success: true})
}

func (s *Server) handleIcons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	catalog := FilterIcons(Icons(), q.Get("category"), q.Get("search"))
	total := 0
	for _, entries := range catalog {
		total += len(entries)
	}
	s.ok(w, map[string]any{"categories": catalog, "total_count": total})
}

func (s *Server) storageError(w http.ResponseWriter, op string, err error) {
	var dup NameExistsError
	switch {
	case errors.Is(err, ErrCardNotFound):
		s.fail(w, http.StatusNotFound, "card not found")
	case errors.As(err, &dup):
		s.fail(w, http.StatusConflict, dup.Error())
	default:
		s.logger.Printf("%s: %v", op, err)
		s.fail(w, http.StatusInternalServerError, "storage failure")
	}
}
