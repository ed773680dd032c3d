package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/outreach-agent/internal/batch"
	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/jonathan/outreach-agent/internal/pipeline"
	"github.com/jonathan/outreach-agent/internal/types"
)

// CampaignRequest represents the request body for /campaigns
type CampaignRequest struct {
	// CSVPath names a prospect CSV on the server host. Exactly one of
	// CSVPath or Prospects must be set.
	CSVPath   string           `json:"csv_path,omitempty"`
	Prospects []types.Prospect `json:"prospects,omitempty"`

	StartRow int  `json:"start_row,omitempty"`
	Limit    int  `json:"limit,omitempty"`
	DryRun   bool `json:"dry_run,omitempty"`
}

// CampaignResponse represents the response for /campaigns
type CampaignResponse struct {
	CampaignID string `json:"campaign_id"`
	Status     string `json:"status"`
}

// Validate checks that the request names exactly one prospect source.
func (r *CampaignRequest) Validate() error {
	if r.CSVPath == "" && len(r.Prospects) == 0 {
		return &ErrValidation{Field: "csv_path", Message: "either csv_path or prospects is required"}
	}
	if r.CSVPath != "" && len(r.Prospects) > 0 {
		return &ErrValidation{Field: "csv_path", Message: "csv_path and prospects are mutually exclusive"}
	}
	if r.StartRow < 0 {
		return &ErrValidation{Field: "start_row", Message: "must not be negative"}
	}
	if r.Limit < 0 {
		return &ErrValidation{Field: "limit", Message: "must not be negative"}
	}
	return nil
}

// handleCreateCampaign starts a campaign run in the background
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req CampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	prospects := req.Prospects
	source := "inline"
	if req.CSVPath != "" {
		var err error
		prospects, err = batch.ParseProspectsFile(req.CSVPath)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Failed to read prospects: "+err.Error())
			return
		}
		source = req.CSVPath
	}
	if len(prospects) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "No prospects to process")
		return
	}

	campaignID, err := s.db.CreateBatch(r.Context(), source, len(prospects))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database query failed: "+err.Error())
		return
	}

	s.campaigns.register(campaignID)

	log.Printf("Starting campaign %s (%d prospects from %s)", campaignID, len(prospects), source)

	// Run the campaign in the background. The parent context outlives
	// this request and is canceled on shutdown.
	go s.runCampaign(s.runCtx, campaignID, prospects, req)

	s.jsonResponse(w, http.StatusAccepted, CampaignResponse{
		CampaignID: campaignID.String(),
		Status:     "started",
	})
}

// handleListCampaigns returns recent campaigns, newest first
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}

	campaigns, err := s.db.ListBatches(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database query failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, campaigns)
}

// handleGetCampaign returns a campaign's progress counts and status
func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	campaign, err := s.db.GetBatch(r.Context(), campaignID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database query failed: "+err.Error())
		return
	}
	if campaign == nil {
		err := &ErrCampaignNotFound{CampaignID: campaignID}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, campaign)
}

// handleCampaignEvents streams a campaign's progress via SSE
func (s *Server) handleCampaignEvents(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	campaign, err := s.db.GetBatch(r.Context(), campaignID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database query failed: "+err.Error())
		return
	}
	if campaign == nil {
		err := &ErrCampaignNotFound{CampaignID: campaignID}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	events, cancel, live := s.campaigns.subscribe(campaignID)

	sse, err := NewSSEWriter(w)
	if err != nil {
		if live {
			cancel()
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !live {
		// The campaign already finished; report its final status.
		s.writeCampaignComplete(sse, campaignID)
		return
	}
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				// Stream closed: the campaign finished while we were
				// attached.
				s.writeCampaignComplete(sse, campaignID)
				return
			}
			if err := sse.WriteEvent("progress", event); err != nil {
				log.Printf("Error writing SSE event: %v", err)
				return
			}
		}
	}
}

// writeCampaignComplete re-reads the campaign row for its final status
// and emits the completion event.
func (s *Server) writeCampaignComplete(sse *SSEWriter, campaignID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status := db.BatchStatusCompleted
	if campaign, err := s.db.GetBatch(ctx, campaignID); err == nil && campaign != nil {
		status = campaign.Status
	}
	sse.WriteComplete(campaignID.String(), status)
}

// runCampaign assembles the pipeline and processes the campaign's
// prospects, recording progress on the batch row as outcomes land.
func (s *Server) runCampaign(ctx context.Context, campaignID uuid.UUID, prospects []types.Prospect, req CampaignRequest) {
	defer s.campaigns.closeStream(campaignID)

	// Copy the config so a dry-run request cannot flip the shared one.
	cfg := *s.cfg
	if req.DryRun {
		cfg.DryRun = true
	}

	tally := &progressTally{}
	agent, err := pipeline.Build(ctx, pipeline.BuildOptions{
		Config:   &cfg,
		Database: s.db,
		BatchID:  campaignID,
		OnProgress: func(event pipeline.ProgressEvent) {
			s.campaigns.publish(campaignID, event)

			// The logging stage carries the finished outcome; fold it
			// into the batch row so polling clients see progress.
			if event.Stage != string(types.StageLog) {
				return
			}
			outcome, ok := event.Content.(*types.Outcome)
			if !ok {
				return
			}
			progress := tally.record(outcome)
			if err := s.db.UpdateBatchProgress(ctx, campaignID, progress); err != nil {
				log.Printf("Campaign %s: failed to update progress: %v", campaignID, err)
			}
		},
	})
	if err != nil {
		log.Printf("Campaign %s: %v", campaignID, err)
		s.finishCampaign(campaignID, nil, db.BatchStatusFailed)
		return
	}
	defer agent.Close()

	runner := batch.NewRunner(agent.Orchestrator, agent.Tracker, nil)
	summary := runner.Run(ctx, prospects, batch.Options{
		StartRow:     req.StartRow,
		Limit:        req.Limit,
		SendInterval: time.Duration(cfg.SendDelaySeconds) * time.Second,
	})

	if summary.Unlogged > 0 {
		log.Printf("Campaign %s: %d outcomes could not be durably recorded", campaignID, summary.Unlogged)
	}

	status := db.BatchStatusCompleted
	if ctx.Err() != nil {
		status = db.BatchStatusCanceled
	}
	s.finishCampaign(campaignID, &summary, status)
}

// finishCampaign writes the final counts and status. The run context may
// already be canceled, so it uses a fresh one.
func (s *Server) finishCampaign(campaignID uuid.UUID, summary *batch.Summary, status string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if summary != nil {
		progress := db.BatchProgress{
			Attempted: summary.Attempted,
			Sent:      summary.Sent,
			Skipped:   summary.Skipped,
			Failed:    summary.Failed,
			Unlogged:  summary.Unlogged,
		}
		if err := s.db.UpdateBatchProgress(ctx, campaignID, progress); err != nil {
			log.Printf("Campaign %s: failed to record final progress: %v", campaignID, err)
		}
	}
	if err := s.db.CompleteBatch(ctx, campaignID, status); err != nil {
		log.Printf("Campaign %s: failed to mark %s: %v", campaignID, status, err)
	}
	log.Printf("Campaign %s %s", campaignID, status)
}

// progressTally accumulates per-prospect counts as outcomes land.
type progressTally struct {
	mu sync.Mutex
	p  db.BatchProgress
}

func (t *progressTally) record(o *types.Outcome) db.BatchProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.p.Attempted++
	switch o.Status {
	case types.StatusSent:
		t.p.Sent++
	case types.StatusSkipped:
		t.p.Skipped++
	case types.StatusFailed:
		t.p.Failed++
	}
	if o.Unlogged {
		t.p.Unlogged++
	}
	return t.p
}

// campaignHub fans campaign progress events out to SSE subscribers.
type campaignHub struct {
	mu      sync.Mutex
	streams map[uuid.UUID]*campaignStream
}

type campaignStream struct {
	subscribers map[chan pipeline.ProgressEvent]struct{}
}

func newCampaignHub() *campaignHub {
	return &campaignHub{streams: make(map[uuid.UUID]*campaignStream)}
}

// register opens a stream for a campaign that is about to run.
func (h *campaignHub) register(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.streams[id] = &campaignStream{subscribers: make(map[chan pipeline.ProgressEvent]struct{})}
}

// publish delivers an event to every subscriber of a live campaign. A
// subscriber whose buffer is full misses the event rather than stall
// the pipeline.
func (h *campaignHub) publish(id uuid.UUID, event pipeline.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stream, ok := h.streams[id]
	if !ok {
		return
	}
	for ch := range stream.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// subscribe attaches a listener to a campaign. The third return reports
// whether the campaign is still running; when it is, the caller must
// invoke cancel once done.
func (h *campaignHub) subscribe(id uuid.UUID) (<-chan pipeline.ProgressEvent, func(), bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stream, ok := h.streams[id]
	if !ok {
		return nil, nil, false
	}
	ch := make(chan pipeline.ProgressEvent, 64)
	stream.subscribers[ch] = struct{}{}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if stream, ok := h.streams[id]; ok {
			delete(stream.subscribers, ch)
		}
	}
	return ch, cancel, true
}

// closeStream ends a campaign's stream and closes every subscriber
// channel, which subscribers read as completion.
func (h *campaignHub) closeStream(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stream, ok := h.streams[id]
	if !ok {
		return
	}
	for ch := range stream.subscribers {
		close(ch)
	}
	delete(h.streams, id)
}
