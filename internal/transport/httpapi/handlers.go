package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"newsobserver/internal/auth"
	"newsobserver/internal/domain"
	"newsobserver/internal/ports"
	"newsobserver/internal/usecase"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type syncResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Report  usecase.SyncReport `json:"report"`
}

type sessionResponse struct {
	Email         string      `json:"email,omitempty"`
	Name          string      `json:"name,omitempty"`
	Role          domain.Role `json:"role"`
	Authenticated bool        `json:"authenticated"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSyncNews(w http.ResponseWriter, r *http.Request) {
	report, err := s.sync.Sync(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}

		status := http.StatusInternalServerError
		var upstream *usecase.UpstreamError
		if errors.As(err, &upstream) {
			status = http.StatusBadGateway
		}
		s.logger.Error("sync failed", "request_id", requestIDFrom(r.Context()), "error", err)
		writeJSON(w, status, errorResponse{Error: "Sync failed", Details: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{Success: true, Message: "News synced!", Report: report})
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	articles, err := s.feed.ListArticles(r.Context(), ports.FeedFilter{
		Bias:  query.Get("bias"),
		Query: query.Get("q"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleListOutlets(w http.ResponseWriter, r *http.Request) {
	outlets, err := s.feed.ListOutlets(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outlets)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.feed.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	identity := s.identity(r)
	writeJSON(w, http.StatusOK, sessionResponse{
		Email:         identity.Email,
		Name:          identity.Name,
		Role:          s.policy.DeriveRole(identity),
		Authenticated: !identity.Anonymous(),
	})
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	identity := s.identity(r)
	if identity.Anonymous() {
		s.writeError(w, r, domain.ErrUnauthorized)
		return
	}

	var input usecase.CreateArticleInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	article, err := s.articles.CreateArticle(r.Context(), input, s.policy.DeriveRole(identity))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	identity := s.identity(r)
	if identity.Anonymous() {
		s.writeError(w, r, domain.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid article id"})
		return
	}

	if err := s.articles.DeleteArticle(r.Context(), id, s.policy.DeriveRole(identity)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) identity(r *http.Request) domain.Identity {
	return auth.IdentityFromRequest(r, s.opts.IdentityHeader, s.opts.NameHeader)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Forbidden"})
	case errors.Is(err, domain.ErrInvalidArticle):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid article", Details: err.Error()})
	case errors.Is(err, domain.ErrOutletNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Outlet not found"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
	case errors.Is(err, domain.ErrDuplicateArticle):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "Article already exists"})
	default:
		s.logger.Error("request failed",
			"request_id", requestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
