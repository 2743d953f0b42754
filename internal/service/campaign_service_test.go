package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promopilot/promopilot-backend/internal/model"
	"github.com/promopilot/promopilot-backend/internal/service"
)

func TestGetStatus(t *testing.T) {
	repo := &MockCampaignRepo{
		existing: &model.Campaign{ID: 4, TotalPosts: 14, PostsPublished: 6, Status: model.CampaignStatusActive},
	}
	svc := &service.CampaignService{CampaignRepo: repo}

	status, err := svc.GetStatus(4)
	require.NoError(t, err)
	require.Equal(t, 6, status.PostsPublished)
	require.Equal(t, 14, status.TotalPosts)
	require.Equal(t, model.CampaignStatusActive, status.Status)
}

func TestRequeuePost(t *testing.T) {
	failed := &model.Post{
		ID:           8,
		CampaignID:   1,
		ChannelID:    2,
		Status:       model.PostStatusFailed,
		ErrorMessage: "transient delivery error: rate limited",
		ScheduledAt:  time.Now().Add(-time.Hour),
	}
	repo := NewMockPostRepo(failed)
	svc := &service.CampaignService{PostRepo: repo}

	at := time.Now().Add(10 * time.Minute)
	post, err := svc.RequeuePost(8, at)
	require.NoError(t, err)
	require.Equal(t, model.PostStatusScheduled, post.Status)
	require.Equal(t, at, post.ScheduledAt)
	require.Empty(t, post.ErrorMessage)
}

func TestRequeuePostRejectsNonFailed(t *testing.T) {
	published := &model.Post{ID: 8, Status: model.PostStatusPublished}
	svc := &service.CampaignService{PostRepo: NewMockPostRepo(published)}

	_, err := svc.RequeuePost(8, time.Now())
	require.Error(t, err)

	scheduled := &model.Post{ID: 9, Status: model.PostStatusScheduled}
	svc = &service.CampaignService{PostRepo: NewMockPostRepo(scheduled)}

	_, err = svc.RequeuePost(9, time.Now())
	require.Error(t, err)
}

func TestRequeuePostMissing(t *testing.T) {
	svc := &service.CampaignService{PostRepo: NewMockPostRepo()}

	_, err := svc.RequeuePost(404, time.Now())
	require.Error(t, err)
}
