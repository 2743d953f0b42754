// internal/service/campaign_service.go
package service

import (
	"fmt"
	"time"

	"github.com/promopilot/promopilot-backend/internal/model"
	"github.com/promopilot/promopilot-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	PostRepo     repository.PostRepositoryInterface
}

// CampaignStatus is the collaborator-facing progress view.
type CampaignStatus struct {
	CampaignID     int    `json:"campaign_id"`
	Status         string `json:"status"`
	PostsPublished int    `json:"posts_published"`
	TotalPosts     int    `json:"total_posts"`
}

type CampaignDetails struct {
	ID             int            `json:"id"`
	OrderID        int            `json:"order_id"`
	ContentRef     string         `json:"content_ref"`
	Channels       []int64        `json:"channel_set"`
	TotalPosts     int            `json:"total_posts"`
	PostsPublished int            `json:"posts_published"`
	PostsPerDay    int            `json:"posts_per_day"`
	Status         string         `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      *time.Time     `json:"updated_at,omitempty"`
	Stats          map[string]int `json:"stats"`
}

func (s *CampaignService) GetStatus(campaignID int) (*CampaignStatus, error) {
	c, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	return &CampaignStatus{
		CampaignID:     c.ID,
		Status:         c.Status,
		PostsPublished: c.PostsPublished,
		TotalPosts:     c.TotalPosts,
	}, nil
}

func (s *CampaignService) GetDetailsWithStats(campaignID int) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	stats, err := s.CampaignRepo.PostStats(campaignID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, count := range stats {
		total += count
	}
	stats["total"] = total

	return &CampaignDetails{
		ID:             campaign.ID,
		OrderID:        campaign.OrderID,
		ContentRef:     campaign.ContentRef,
		Channels:       campaign.Channels,
		TotalPosts:     campaign.TotalPosts,
		PostsPublished: campaign.PostsPublished,
		PostsPerDay:    campaign.PostsPerDay,
		Status:         campaign.Status,
		CreatedAt:      campaign.CreatedAt,
		UpdatedAt:      campaign.UpdatedAt,
		Stats:          stats,
	}, nil
}

// RequeuePost is the explicit recovery path for a failed post. Guarded by a
// CAS from failed, so a post that was already re-queued or never failed is
// rejected rather than silently rescheduled.
func (s *CampaignService) RequeuePost(postID int, at time.Time) (*model.Post, error) {
	post, err := s.PostRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("post %d not found", postID)
	}
	if post.Status != model.PostStatusFailed {
		return nil, fmt.Errorf("post %d is %s, only failed posts can be re-queued", postID, post.Status)
	}

	if at.IsZero() {
		at = time.Now()
	}

	ok, err := s.PostRepo.Requeue(postID, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("post %d is no longer failed", postID)
	}

	return s.PostRepo.GetByID(postID)
}
