package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendwise/internal/analytics"
	"github.com/dvloznov/spendwise/internal/api/middleware"
)

// AnalyticsHandler handles the aggregation endpoints.
type AnalyticsHandler struct {
	svc *analytics.Service
	log zerolog.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(svc *analytics.Service, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, log: log}
}

// Summary handles GET /api/analytics/summary
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	summary, message, err := h.svc.Summarize(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to calculate summary")
		middleware.WriteError(w, http.StatusBadRequest, "Failed to calculate summary")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
		"summary": summary,
	})
}

// Categories handles GET /api/analytics/categories
func (h *AnalyticsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	categories, err := h.svc.CategoryBreakdown(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to calculate category spending")
		middleware.WriteError(w, http.StatusBadRequest, "Failed to calculate category spending")
		return
	}
	if categories == nil {
		categories = []analytics.CategoryTotal{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Spending by category calculated successfully",
		"categories": categories,
	})
}

// Trends handles GET /api/analytics/trends?period=
// The period parameter is echoed in the message; grouping is monthly.
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "month"
	}

	points, message, err := h.svc.Trends(r.Context(), userID, analytics.Period(period))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to calculate trends")
		middleware.WriteError(w, http.StatusBadRequest, "Failed to calculate trends")
		return
	}
	if points == nil {
		points = []analytics.TrendPoint{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
		"data":    points,
	})
}
