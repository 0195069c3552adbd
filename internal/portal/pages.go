package portal

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/placementcell/portal/internal/apiclient"
	"github.com/placementcell/portal/internal/models"
)

// statusClientClosedRequest is reported when the browser went away mid-call
const statusClientClosedRequest = 499

// client returns the API client bound to the request's session
func (s *Server) client(c *gin.Context) *apiclient.Client {
	store, _ := GetSession(c)
	return s.api.WithSession(store)
}

// renderPage writes the JSON page model for name
func (s *Server) renderPage(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["page"] = name
	if snap := snapshot(c); snap.User != nil {
		data["user"] = snap.User
	}
	c.JSON(status, data)
}

// respondAPIError surfaces a failed backend call as a transient error message
func (s *Server) respondAPIError(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) {
		s.logger.Debug().Str("path", c.Request.URL.Path).Msg("Client went away during backend call")
		c.AbortWithStatus(statusClientClosedRequest)
		return
	}

	msg := apiclient.UserMessage(err)

	if errors.Is(err, apiclient.ErrSessionExpired) {
		s.clearSessionCookie(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":    msg,
			"redirect": s.dest.LoginFor(c.Request.URL.Path),
		})
		return
	}

	status := http.StatusBadGateway
	var reqErr *apiclient.RequestError
	if errors.As(err, &reqErr) && reqErr.Status >= 400 && reqErr.Status < 500 {
		status = reqErr.Status
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// respondRedirect sends browsers a 303 and JSON clients the target
func respondRedirect(c *gin.Context, to string) {
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"redirect": to})
		return
	}
	c.Redirect(http.StatusSeeOther, to)
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// dashboardFor returns the landing page of a role
func dashboardFor(role models.Role) string {
	if role == models.RoleAdmin {
		return "/admin/dashboard"
	}
	return "/student/dashboard"
}

// home sends visitors to their dashboard, or to the student login
func (s *Server) home(c *gin.Context) {
	snap := snapshot(c)
	if !snap.IsAuthenticated {
		respondRedirect(c, s.dest.StudentLogin)
		return
	}
	respondRedirect(c, dashboardFor(snap.Role()))
}

func (s *Server) unauthorized(c *gin.Context) {
	s.renderPage(c, http.StatusForbidden, "unauthorized", gin.H{
		"message": "You do not have access to this page.",
	})
}
