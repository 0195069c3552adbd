package portal

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/placementcell/portal/internal/session"
)

const (
	sessionCookie = "portal_session"
	sessionKey    = "session"
)

func setSession(c *gin.Context, store *session.Store) {
	c.Set(sessionKey, store)
}

// GetSession returns the session store of the request
func GetSession(c *gin.Context) (*session.Store, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	store, ok := v.(*session.Store)
	return store, ok
}

// snapshot is the guard's view of the request session
func snapshot(c *gin.Context) session.Snapshot {
	store, ok := GetSession(c)
	if !ok {
		return session.Snapshot{}
	}
	return store.Snapshot()
}

// sessionMiddleware attaches a resolved session store to every request.
// Browsers without a valid cookie get a fresh ID; the cookie is only set on login.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if v, err := c.Cookie(sessionCookie); err == nil {
			if parsed, err := ulid.ParseStrict(v); err == nil {
				id = parsed.String()
			}
		}

		if id == "" {
			id = ulid.Make().String()
		}

		store := session.NewStore(id, s.persister, s.logger)
		if err := store.Resolve(c.Request.Context()); err != nil {
			s.logger.Warn().Err(err).Str("session", store.Key()).Msg("Failed to resolve session")
		}

		setSession(c, store)
		c.Next()
	}
}

// setSessionCookie issues the browser cookie for an authenticated store
func (s *Server) setSessionCookie(c *gin.Context, store *session.Store) {
	maxAge := s.config.Server.SessionTTL
	if exp, ok := session.TokenExpiry(store.Token()); ok {
		maxAge = time.Until(exp)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, store.Key(), int(maxAge.Seconds()), "/", "", s.config.Server.CookieSecure, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", s.config.Server.CookieSecure, true)
}
