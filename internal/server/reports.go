package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shadepath/shadepath/internal/store"
)

type reportRequest struct {
	Type      string  `json:"type"`
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Details   string  `json:"details"`
	Timestamp int64   `json:"timestamp"`
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type == "" || req.Label == "" {
		writeError(w, http.StatusBadRequest, "type and label are required")
		return
	}

	created, err := s.store.CreateReport(r.Context(), store.Report{
		Type:      req.Type,
		Label:     req.Label,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Details:   req.Details,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		zap.L().Error("create report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save report")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.store.ListReports(r.Context())
	if err != nil {
		zap.L().Error("list reports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load reports")
		return
	}
	if reports == nil {
		reports = []store.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleConfirmReport(w http.ResponseWriter, r *http.Request) {
	s.bumpReport(w, r, s.store.ConfirmReport)
}

func (s *Server) handleDenyReport(w http.ResponseWriter, r *http.Request) {
	s.bumpReport(w, r, s.store.DenyReport)
}

func (s *Server) bumpReport(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (*store.Report, error)) {
	id := chi.URLParam(r, "id")
	updated, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type accessibilityRequest struct {
	LocationName string  `json:"location_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	IssueType    string  `json:"issue_type"`
	Description  string  `json:"description"`
}

func (s *Server) handleCreateAccessibility(w http.ResponseWriter, r *http.Request) {
	var req accessibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IssueType == "" {
		writeError(w, http.StatusBadRequest, "issue_type is required")
		return
	}

	created, err := s.store.CreateAccessibility(r.Context(), store.AccessibilitySubmission{
		LocationName: req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		IssueType:    req.IssueType,
		Description:  req.Description,
	})
	if err != nil {
		zap.L().Error("create accessibility submission", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save submission")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListAccessibility(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.ListAccessibility(r.Context())
	if err != nil {
		zap.L().Error("list accessibility submissions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load submissions")
		return
	}
	if subs == nil {
		subs = []store.AccessibilitySubmission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleWeatherNearby(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "lat and lon query parameters are required")
		return
	}
	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	forecasts, err := s.weather.NearbyForecasts(r.Context(), lat, lon, limit)
	if err != nil {
		zap.L().Error("nearby forecasts", zap.Error(err))
		writeError(w, http.StatusBadGateway, "weather service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, forecasts)
}
