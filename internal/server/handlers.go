package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/jonathan/outreach-agent/internal/quota"
)

// StatusResponse is the /status payload: today's quota position plus the
// settings the server is running with.
type StatusResponse struct {
	Quota  quota.Stats   `json:"quota"`
	Config ConfigSummary `json:"config"`
}

// ConfigSummary reports the operational settings. Secrets (API key,
// database URL, SMTP password) are never included.
type ConfigSummary struct {
	DailySendLimit   int     `json:"daily_send_limit"`
	MinQualityScore  float64 `json:"min_quality_score"`
	SendDelaySeconds int     `json:"send_delay_seconds"`
	MaxResearchPages int     `json:"max_research_pages"`
	UseBrowser       bool    `json:"use_browser"`
	SenderEmail      string  `json:"sender_email,omitempty"`
	TestRecipient    string  `json:"test_recipient,omitempty"`
	DryRun           bool    `json:"dry_run,omitempty"`
}

// handleStatus reports today's quota usage and the active configuration
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.tracker.CurrentStats(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database query failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, StatusResponse{
		Quota: stats,
		Config: ConfigSummary{
			DailySendLimit:   s.cfg.DailySendLimit,
			MinQualityScore:  s.cfg.MinQualityScore,
			SendDelaySeconds: s.cfg.SendDelaySeconds,
			MaxResearchPages: s.cfg.MaxResearchPages,
			UseBrowser:       s.cfg.UseBrowser,
			SenderEmail:      s.cfg.Sender.Email,
			TestRecipient:    s.cfg.TestRecipient,
			DryRun:           s.cfg.DryRun,
		},
	})
}

// handleListOutcomes returns logged outcomes, filtered by the date,
// status, and limit query parameters
func (s *Server) handleListOutcomes(w http.ResponseWriter, r *http.Request) {
	filters, err := parseOutcomeFilters(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	outcomes, err := s.db.ListRecentOutcomes(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database query failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, outcomes)
}

// parseOutcomeFilters reads the date, status, and limit query parameters.
// A zero Day means any day.
func parseOutcomeFilters(r *http.Request) (db.OutcomeFilters, error) {
	var filters db.OutcomeFilters

	if v := r.URL.Query().Get("date"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filters, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", v)
		}
		filters.Day = day
	}

	filters.Status = r.URL.Query().Get("status")

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filters, fmt.Errorf("invalid limit %q", v)
		}
		filters.Limit = limit
	}

	return filters, nil
}
