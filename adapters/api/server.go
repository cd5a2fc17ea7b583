// Package api exposes the read-only HTTP surface the dashboard consumes:
// prediction records and accuracy summaries. No mutation happens here; the
// backfill CLI owns all writes.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lavanda/domain/core"
	"lavanda/domain/forecast"
	"lavanda/internal/accuracy"
	"lavanda/ports"
)

// Server serves the dashboard read API.
type Server struct {
	store      ports.PredictionStore
	aggregator *accuracy.Aggregator
	location   *time.Location
	window     int
}

// NewServer creates the read API server.
func NewServer(store ports.PredictionStore, aggregator *accuracy.Aggregator, location *time.Location, rollingWindow int) *Server {
	return &Server{
		store:      store,
		aggregator: aggregator,
		location:   location,
		window:     rollingWindow,
	}
}

// Router builds the chi router for the API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/predictions", s.handlePredictions)
	r.Get("/api/accuracy/rolling", s.handleRollingAccuracy)
	r.Get("/api/accuracy/weekly", s.handleWeeklyAccuracy)
	return r
}

// predictionResponse is the wire form of a prediction record.
type predictionResponse struct {
	PredictionDate   string             `json:"prediction_date"`
	PredictedRevenue float64            `json:"predicted_revenue"`
	ConfidenceLow    float64            `json:"confidence_low"`
	ConfidenceHigh   float64            `json:"confidence_high"`
	ModelTier        string             `json:"model_tier"`
	InSampleRSquared float64            `json:"in_sample_r_squared"`
	Features         map[string]float64 `json:"features,omitempty"`
	ActualRevenue    float64            `json:"actual_revenue"`
	Error            float64            `json:"error"`
	AbsError         float64            `json:"abs_error"`
	PctError         float64            `json:"pct_error"`
	IsClosure        bool               `json:"is_closure"`
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	from, to, ok := s.parseRange(w, r)
	if !ok {
		return
	}

	records, err := s.store.GetPredictionsInRange(r.Context(), from, to)
	if err != nil {
		http.Error(w, "failed to load predictions", http.StatusInternalServerError)
		return
	}

	out := make([]predictionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toResponse(rec))
	}
	writeJSON(w, out)
}

func (s *Server) handleRollingAccuracy(w http.ResponseWriter, r *http.Request) {
	end := core.Yesterday(s.location)
	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			http.Error(w, "invalid end date", http.StatusBadRequest)
			return
		}
		end = parsed
	}
	days := s.window
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	summary, err := s.aggregator.Rolling(r.Context(), end, days)
	if err != nil {
		http.Error(w, "failed to aggregate accuracy", http.StatusInternalServerError)
		return
	}
	writeJSON(w, summary)
}

func (s *Server) handleWeeklyAccuracy(w http.ResponseWriter, r *http.Request) {
	from, to, ok := s.parseRange(w, r)
	if !ok {
		return
	}

	weeks, err := s.aggregator.Weekly(r.Context(), from, to)
	if err != nil {
		http.Error(w, "failed to aggregate accuracy", http.StatusInternalServerError)
		return
	}
	writeJSON(w, weeks)
}

// parseRange reads from/to query params, defaulting to the trailing 90 days.
func (s *Server) parseRange(w http.ResponseWriter, r *http.Request) (core.CalendarDate, core.CalendarDate, bool) {
	to := core.Yesterday(s.location)
	from := to.AddDays(-89)

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			http.Error(w, "invalid from date", http.StatusBadRequest)
			return from, to, false
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			http.Error(w, "invalid to date", http.StatusBadRequest)
			return from, to, false
		}
		to = parsed
	}
	if to.Before(from) {
		http.Error(w, "to precedes from", http.StatusBadRequest)
		return from, to, false
	}
	return from, to, true
}

func toResponse(rec *forecast.PredictionRecord) predictionResponse {
	return predictionResponse{
		PredictionDate:   rec.PredictionDate.String(),
		PredictedRevenue: rec.PredictedRevenue,
		ConfidenceLow:    rec.ConfidenceLow,
		ConfidenceHigh:   rec.ConfidenceHigh,
		ModelTier:        string(rec.ModelTier),
		InSampleRSquared: rec.InSampleRSquared,
		Features:         rec.Features,
		ActualRevenue:    rec.ActualRevenue,
		Error:            rec.Error,
		AbsError:         rec.AbsError,
		PctError:         rec.PctError,
		IsClosure:        rec.IsClosure,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
