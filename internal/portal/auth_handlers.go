package portal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/placementcell/portal/internal/apiclient"
	"github.com/placementcell/portal/internal/models"
	"github.com/placementcell/portal/internal/session"
)

// LoginForm represents the login form submitted by a browser
type LoginForm struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,notblank"`
}

func (s *Server) loginPage(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Already logged in with this role: skip the form
		if snap := snapshot(c); snap.IsAuthenticated && snap.Role() == role {
			respondRedirect(c, dashboardFor(role))
			return
		}
		s.renderPage(c, http.StatusOK, "login", gin.H{"role": role})
	}
}

func (s *Server) login(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form LoginForm
		if err := c.ShouldBind(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		previous, _ := GetSession(c)

		// Every login gets a new session ID, never the one the browser presented
		store := session.NewStore(ulid.Make().String(), s.persister, s.logger)
		resp, err := s.api.WithSession(store).Login(ctx, role, form.Email, form.Password)
		if err != nil {
			status := http.StatusInternalServerError
			var reqErr *apiclient.RequestError
			if errors.As(err, &reqErr) {
				status = http.StatusUnauthorized
				if reqErr.Status == 0 || reqErr.Status >= 500 {
					status = http.StatusBadGateway
				}
				s.logger.Info().Str("email", form.Email).Str("role", string(role)).Msg("Login rejected")
			} else {
				s.logger.Error().Err(err).Str("email", form.Email).Msg("Failed to establish session")
			}
			c.JSON(status, gin.H{"error": apiclient.UserMessage(err)})
			return
		}

		if previous != nil {
			if err := previous.Logout(ctx); err != nil {
				s.logger.Warn().Err(err).Str("session", previous.Key()).Msg("Failed to remove previous session")
			}
		}
		setSession(c, store)

		// An admin account logging in through the student form, or vice versa
		if resp.User.Role != role {
			_ = store.Logout(ctx)
			s.clearSessionCookie(c)
			respondRedirect(c, s.dest.Unauthorized)
			return
		}

		s.setSessionCookie(c, store)
		s.logger.Info().Str("user_id", resp.User.ID).Str("role", string(role)).Msg("User logged in")

		respondRedirect(c, dashboardFor(role))
	}
}

func (s *Server) logout(c *gin.Context) {
	store, _ := GetSession(c)
	role := store.Snapshot().Role()

	if err := store.Logout(c.Request.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to remove persisted session")
	}
	s.clearSessionCookie(c)

	if role == models.RoleAdmin {
		respondRedirect(c, s.dest.AdminLogin)
		return
	}
	respondRedirect(c, s.dest.StudentLogin)
}

func (s *Server) profile(c *gin.Context) {
	user, err := s.client(c).Me(c.Request.Context())
	if err != nil {
		s.respondAPIError(c, err)
		return
	}
	s.renderPage(c, http.StatusOK, "profile", gin.H{"profile": user})
}
