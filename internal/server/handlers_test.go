package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestParseOutcomeFilters tests query parameter parsing for /outcomes
func TestParseOutcomeFilters(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/outcomes?date=2026-08-25&status=sent&limit=10", nil)

	filters, err := parseOutcomeFilters(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	if !filters.Day.Equal(want) {
		t.Errorf("expected day %v, got %v", want, filters.Day)
	}
	if filters.Status != "sent" {
		t.Errorf("expected status 'sent', got %q", filters.Status)
	}
	if filters.Limit != 10 {
		t.Errorf("expected limit 10, got %d", filters.Limit)
	}
}

// TestParseOutcomeFilters_Defaults tests that absent parameters stay zero
func TestParseOutcomeFilters_Defaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/outcomes", nil)

	filters, err := parseOutcomeFilters(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !filters.Day.IsZero() {
		t.Errorf("expected zero day, got %v", filters.Day)
	}
	if filters.Status != "" {
		t.Errorf("expected empty status, got %q", filters.Status)
	}
	if filters.Limit != 0 {
		t.Errorf("expected limit 0, got %d", filters.Limit)
	}
}

// TestParseOutcomeFilters_InvalidDate tests date validation
func TestParseOutcomeFilters_InvalidDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/outcomes?date=25-08-2026", nil)

	if _, err := parseOutcomeFilters(req); err == nil {
		t.Error("expected error for invalid date format")
	}
}

// TestParseOutcomeFilters_InvalidLimit tests limit validation
func TestParseOutcomeFilters_InvalidLimit(t *testing.T) {
	for _, limit := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/outcomes?limit="+limit, nil)

		if _, err := parseOutcomeFilters(req); err == nil {
			t.Errorf("expected error for limit %q", limit)
		}
	}
}

// TestOutcomesEndpoint_InvalidDate tests /outcomes rejects bad dates
func TestOutcomesEndpoint_InvalidDate(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/outcomes?date=yesterday", nil)
	w := httptest.NewRecorder()

	s.handleListOutcomes(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}
