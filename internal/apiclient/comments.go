package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/placementcell/portal/internal/models"
)

// AddCommentRequest represents the comment creation request
type AddCommentRequest struct {
	JobID string `json:"jobId"`
	Text  string `json:"text"`
}

// ListComments returns the discussion on a job posting
func (c *Client) ListComments(ctx context.Context, jobID string) ([]models.Comment, error) {
	var resp struct {
		Comments []models.Comment `json:"comments"`
	}
	path := "/api/comments?" + url.Values{"jobId": {jobID}}.Encode()
	if err := c.Do(ctx, path, RequestOptions{}, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

// AddComment posts a comment on a job posting
func (c *Client) AddComment(ctx context.Context, jobID, text string) (*models.Comment, error) {
	var resp struct {
		Comment *models.Comment `json:"comment"`
	}
	err := c.Do(ctx, "/api/comments", RequestOptions{
		Method: http.MethodPost,
		Body:   AddCommentRequest{JobID: jobID, Text: text},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Comment, nil
}
