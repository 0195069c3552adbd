package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/placementcell/portal/internal/models"
)

// ListPlacementCycles returns all placement cycles
func (c *Client) ListPlacementCycles(ctx context.Context) ([]models.PlacementCycle, error) {
	var resp struct {
		Cycles []models.PlacementCycle `json:"cycles"`
	}
	if err := c.Do(ctx, "/api/placement-cycles", RequestOptions{}, &resp); err != nil {
		return nil, err
	}
	return resp.Cycles, nil
}

// GetPlacementCycle returns one placement cycle
func (c *Client) GetPlacementCycle(ctx context.Context, cycleID string) (*models.PlacementCycle, error) {
	var resp struct {
		Cycle *models.PlacementCycle `json:"cycle"`
	}
	if err := c.Do(ctx, "/api/placement-cycles/"+url.PathEscape(cycleID), RequestOptions{}, &resp); err != nil {
		return nil, err
	}
	return resp.Cycle, nil
}

// ListCycleStudents returns the students registered in a placement cycle
func (c *Client) ListCycleStudents(ctx context.Context, cycleID string) ([]models.Student, error) {
	var resp struct {
		Students []models.Student `json:"students"`
	}
	path := "/api/placement-cycles/" + url.PathEscape(cycleID) + "/students"
	if err := c.Do(ctx, path, RequestOptions{}, &resp); err != nil {
		return nil, err
	}
	return resp.Students, nil
}

// UploadResume uploads the current student's resume and returns its URL
func (c *Client) UploadResume(ctx context.Context, filename string, content io.Reader) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	err := c.Do(ctx, "/api/students/resume", RequestOptions{
		Method: http.MethodPost,
		Body: &MultipartBody{
			Files: []MultipartFile{{Field: "resume", Filename: filename, Content: content}},
		},
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}
