package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/hyperjump/ryori/internal/models"
	"github.com/hyperjump/ryori/internal/storage"
	"go.uber.org/zap"
)

const welcomeMessage = "Welcome to the recipe recommender!"

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(welcomeMessage))
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, "preferences not provided or k is not positive")
		return
	}
	if err := req.Validate(s.config.Recommend.DefaultK, s.config.Recommend.MaxK); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("recommend request", zap.String("preferences", req.Preferences), zap.Int("k", req.K))

	recs, err := s.service.Recommend(r.Context(), req.Preferences, req.K)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrEncoding):
			s.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			s.respondError(w, http.StatusServiceUnavailable, "request canceled")
		default:
			s.logger.Error("recommendation failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, models.RecommendResponse{
		Recommendations: recs,
		QueryTime:       time.Since(start).Milliseconds(),
		Preferences:     req.Preferences,
	})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.Item(itemName(r))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "recipe not found")
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleItemChart(w http.ResponseWriter, r *http.Request) {
	png, err := s.service.Chart(r.Context(), itemName(r))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "recipe not found")
			return
		}
		s.logger.Error("chart rendering failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "chart unavailable")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.service.Status()
	st.Provider = s.config.Embedding.Provider
	st.Version = s.version
	diskBytes, err := storage.DiskUsageBytes(s.config.Storage.DatabasePath, s.config.Storage.SnapshotPath)
	if err != nil {
		s.logger.Warn("status: disk usage failed", zap.Error(err))
	}
	st.DiskUsageBytes = diskBytes
	s.respondJSON(w, http.StatusOK, st)
}

// itemName returns the decoded {name} path parameter.
func itemName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
