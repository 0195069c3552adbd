package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/placementcell/portal/internal/models"
)

// CreateJobRequest represents the job creation request
type CreateJobRequest struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	CTC         string     `json:"ctc,omitempty"`
	Type        string     `json:"type,omitempty"`
	CycleID     string     `json:"cycle_id,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// ListJobs returns all job postings
func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	var resp struct {
		Jobs []models.Job `json:"jobs"`
	}
	if err := c.Do(ctx, "/api/jobs", RequestOptions{}, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// GetJob returns a single job posting
func (c *Client) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var resp struct {
		Job *models.Job `json:"job"`
	}
	if err := c.Do(ctx, "/api/jobs/"+url.PathEscape(jobID), RequestOptions{}, &resp); err != nil {
		return nil, err
	}
	return resp.Job, nil
}

// CreateJob publishes a new job posting
func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (*models.Job, error) {
	var resp struct {
		Job *models.Job `json:"job"`
	}
	err := c.Do(ctx, "/api/jobs", RequestOptions{Method: http.MethodPost, Body: req}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Job, nil
}

// DeleteJob removes a job posting
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	return c.Do(ctx, "/api/jobs/"+url.PathEscape(jobID), RequestOptions{Method: http.MethodDelete}, nil)
}
