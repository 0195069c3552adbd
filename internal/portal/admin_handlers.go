package portal

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/placementcell/portal/internal/apiclient"
	"github.com/placementcell/portal/internal/models"
)

// JobForm represents the job posting form
type JobForm struct {
	Title       string     `form:"title" json:"title" binding:"required,notblank,max=200"`
	Company     string     `form:"company" json:"company" binding:"required,notblank,max=200"`
	Description string     `form:"description" json:"description" binding:"required,notblank"`
	Location    string     `form:"location" json:"location"`
	CTC         string     `form:"ctc" json:"ctc"`
	Type        string     `form:"type" json:"type" binding:"omitempty,oneof=fulltime internship"`
	CycleID     string     `form:"cycle_id" json:"cycle_id"`
	Deadline    *time.Time `form:"deadline" json:"deadline" time_format:"2006-01-02"`
}

// NoticeForm represents the notice posting form
type NoticeForm struct {
	Title       string `form:"title" json:"title" binding:"required,notblank,max=200"`
	Body        string `form:"body" json:"body" binding:"required,notblank"`
	Audience    string `form:"audience" json:"audience"`
	AttachedURL string `form:"attached_url" json:"attached_url" binding:"omitempty,url"`
}

func (s *Server) adminDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	api := s.client(c)

	cycles, err := api.ListPlacementCycles(ctx)
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	jobs, err := api.ListJobs(ctx)
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	notices, err := api.ListNotices(ctx)
	if err != nil {
		s.respondAPIError(c, err)
		return
	}

	open := 0
	for _, cycle := range cycles {
		if cycle.Status == "open" {
			open++
		}
	}

	s.renderPage(c, http.StatusOK, "admin/dashboard", gin.H{
		"cycles":      len(cycles),
		"open_cycles": open,
		"jobs":        len(jobs),
		"notices":     len(notices),
	})
}

func (s *Server) createJob(c *gin.Context) {
	var form JobForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := s.client(c).CreateJob(c.Request.Context(), apiclient.CreateJobRequest{
		Title:       form.Title,
		Company:     form.Company,
		Description: form.Description,
		Location:    form.Location,
		CTC:         form.CTC,
		Type:        form.Type,
		CycleID:     form.CycleID,
		Deadline:    form.Deadline,
	})
	if err != nil {
		s.respondAPIError(c, err)
		return
	}

	s.logger.Info().Str("job_id", job.ID).Str("company", job.Company).Msg("Job posted")
	c.JSON(http.StatusCreated, gin.H{"job": job})
}

func (s *Server) deleteJob(c *gin.Context) {
	jobID := c.Param("id")
	if err := s.client(c).DeleteJob(c.Request.Context(), jobID); err != nil {
		s.respondAPIError(c, err)
		return
	}

	s.logger.Info().Str("job_id", jobID).Msg("Job deleted")
	if c.Request.Method == http.MethodDelete {
		c.Status(http.StatusNoContent)
		return
	}
	respondRedirect(c, "/admin/jobs")
}

func (s *Server) createNotice(c *gin.Context) {
	var form NoticeForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notice, err := s.client(c).CreateNotice(c.Request.Context(), apiclient.CreateNoticeRequest{
		Title:       form.Title,
		Body:        form.Body,
		Audience:    form.Audience,
		AttachedURL: form.AttachedURL,
	})
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"notice": notice})
}

func (s *Server) showCycle(c *gin.Context) {
	ctx := c.Request.Context()
	api := s.client(c)
	cycleID := c.Param("id")

	cycle, err := api.GetPlacementCycle(ctx, cycleID)
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	students, err := api.ListCycleStudents(ctx, cycleID)
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	if students == nil {
		students = []models.Student{}
	}

	placed := 0
	for _, st := range students {
		if st.Placed {
			placed++
		}
	}

	s.renderPage(c, http.StatusOK, "admin/cycle", gin.H{
		"cycle":    cycle,
		"students": students,
		"placed":   placed,
	})
}
