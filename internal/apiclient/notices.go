package apiclient

import (
	"context"
	"net/http"

	"github.com/placementcell/portal/internal/models"
)

// CreateNoticeRequest represents the notice creation request
type CreateNoticeRequest struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Audience    string `json:"audience,omitempty"`
	AttachedURL string `json:"attached_url,omitempty"`
}

// ListNotices returns the notice board
func (c *Client) ListNotices(ctx context.Context) ([]models.Notice, error) {
	var resp struct {
		Notices []models.Notice `json:"notices"`
	}
	if err := c.Do(ctx, "/api/notices/all", RequestOptions{}, &resp); err != nil {
		return nil, err
	}
	return resp.Notices, nil
}

// CreateNotice publishes a notice
func (c *Client) CreateNotice(ctx context.Context, req CreateNoticeRequest) (*models.Notice, error) {
	var resp struct {
		Notice *models.Notice `json:"notice"`
	}
	err := c.Do(ctx, "/api/notices/create", RequestOptions{Method: http.MethodPost, Body: req}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Notice, nil
}
