// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/promopilot/promopilot-backend/internal/errors"
	"github.com/promopilot/promopilot-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

// GetCampaignStatus returns the progress view collaborators poll for
// user-facing reporting.
func (c *CampaignController) GetCampaignStatus(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	status, err := c.CampaignService.GetStatus(id)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (c *CampaignController) GetCampaignDetails(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	details, err := c.CampaignService.GetDetailsWithStats(id)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(details)
}

// RequeuePost moves one failed post back to scheduled with a fresh time.
// This is the only path back: nothing in the pipeline retries a failed post
// on its own.
func (c *CampaignController) RequeuePost(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	var body struct {
		ScheduledAt *time.Time `json:"scheduled_at"`
	}
	if r.Body != nil {
		// Empty body means re-queue for now.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	at := time.Now()
	if body.ScheduledAt != nil {
		at = *body.ScheduledAt
	}

	post, err := c.CampaignService.RequeuePost(id, at)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}
