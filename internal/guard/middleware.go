package guard

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/placementcell/portal/internal/models"
	"github.com/placementcell/portal/internal/session"
)

const decisionKey = "guard_decision"

// SnapshotFunc returns the session of the request being served
type SnapshotFunc func(c *gin.Context) session.Snapshot

// ginNavigator redirects a single gin request. Browsers get a 303, JSON
// clients get 401/403 with the target in the body.
type ginNavigator struct {
	c    *gin.Context
	dest Destinations
}

func (n *ginNavigator) Redirect(to string) {
	if wantsJSON(n.c) {
		status := http.StatusUnauthorized
		if to == n.dest.Unauthorized {
			status = http.StatusForbidden
		}
		n.c.AbortWithStatusJSON(status, gin.H{"redirect": to})
		return
	}
	n.c.Redirect(http.StatusSeeOther, to)
	n.c.Abort()
}

func (n *ginNavigator) CurrentPath() string {
	return n.c.Request.URL.Path
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// Middleware gates the routes behind it. allowed may be empty to admit any
// authenticated session.
func Middleware(allowed []models.Role, dest Destinations, snapshot SnapshotFunc, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		nav := &ginNavigator{c: c, dest: dest}
		g := New(dest, nav, logger)

		decision := g.Update(Input{
			Session:      snapshot(c),
			Path:         nav.CurrentPath(),
			AllowedRoles: allowed,
		})
		c.Set(decisionKey, decision)

		switch {
		case decision.Busy:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		case decision.Render:
			c.Next()
		default:
			// Navigator already wrote the redirect
		}
	}
}

// DecisionFrom returns the guard decision recorded for the request
func DecisionFrom(c *gin.Context) (Decision, bool) {
	v, exists := c.Get(decisionKey)
	if !exists {
		return Decision{}, false
	}
	d, ok := v.(Decision)
	return d, ok
}
