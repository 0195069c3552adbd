package portal

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/placementcell/portal/internal/apiclient"
	"github.com/placementcell/portal/internal/models"
)

const (
	maxResumeSize  = 5 << 20
	noticesOnBoard = 3
)

// CommentForm represents a comment submitted on a job
type CommentForm struct {
	Text string `form:"text" json:"text" binding:"required,notblank,max=2000"`
}

// pageName derives the page model name from the matched route,
// e.g. "/admin/jobs" becomes "admin/jobs".
func pageName(c *gin.Context) string {
	return strings.TrimPrefix(c.FullPath(), "/")
}

func (s *Server) studentDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	api := s.client(c)

	jobs, err := api.ListJobs(ctx)
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	notifications, err := api.ListNotifications(ctx)
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	notices, err := api.ListNotices(ctx)
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	if len(notices) > noticesOnBoard {
		notices = notices[:noticesOnBoard]
	}

	s.renderPage(c, http.StatusOK, "student/dashboard", gin.H{
		"open_jobs":      len(jobs),
		"unread":         apiclient.UnreadCount(notifications),
		"latest_notices": notices,
	})
}

func (s *Server) listJobs(c *gin.Context) {
	jobs, err := s.client(c).ListJobs(c.Request.Context())
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	s.renderPage(c, http.StatusOK, pageName(c), gin.H{"jobs": jobs})
}

func (s *Server) showJob(c *gin.Context) {
	ctx := c.Request.Context()
	api := s.client(c)
	jobID := c.Param("id")

	job, err := api.GetJob(ctx, jobID)
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	comments, err := api.ListComments(ctx, jobID)
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	s.renderPage(c, http.StatusOK, "student/job", gin.H{"job": job, "comments": comments})
}

func (s *Server) addComment(c *gin.Context) {
	var form CommentForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := s.client(c).AddComment(c.Request.Context(), c.Param("id"), strings.TrimSpace(form.Text))
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (s *Server) listNotifications(c *gin.Context) {
	notifications, err := s.client(c).ListNotifications(c.Request.Context())
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	s.renderPage(c, http.StatusOK, "student/notifications", gin.H{
		"notifications": notifications,
		"unread":        apiclient.UnreadCount(notifications),
	})
}

func (s *Server) markNotificationRead(c *gin.Context) {
	if err := s.client(c).MarkNotificationRead(c.Request.Context(), c.Param("id")); err != nil {
		s.respondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) markAllNotificationsRead(c *gin.Context) {
	if err := s.client(c).MarkAllNotificationsRead(c.Request.Context()); err != nil {
		s.respondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listNotices(c *gin.Context) {
	notices, err := s.client(c).ListNotices(c.Request.Context())
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	if notices == nil {
		notices = []models.Notice{}
	}
	s.renderPage(c, http.StatusOK, pageName(c), gin.H{"notices": notices})
}

func (s *Server) listCycles(c *gin.Context) {
	cycles, err := s.client(c).ListPlacementCycles(c.Request.Context())
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	if cycles == nil {
		cycles = []models.PlacementCycle{}
	}
	s.renderPage(c, http.StatusOK, pageName(c), gin.H{"cycles": cycles})
}

// uploadResume proxies a multipart resume upload to the backend
func (s *Server) uploadResume(c *gin.Context) {
	header, err := c.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A resume file is required"})
		return
	}
	if header.Size > maxResumeSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Resume must be 5 MB or smaller"})
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Resume must be a PDF"})
		return
	}

	file, err := header.Open()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to open uploaded resume")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	url, err := s.client(c).UploadResume(c.Request.Context(), filepath.Base(header.Filename), file)
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
