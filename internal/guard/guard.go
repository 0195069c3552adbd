// Package guard decides whether a protected region may render for the
// current session, and where to send the visitor when it may not.
package guard

import (
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/placementcell/portal/internal/metrics"
	"github.com/placementcell/portal/internal/models"
	"github.com/placementcell/portal/internal/session"
)

// State is the route guard's view of a session against a protected region
type State int

const (
	Loading State = iota
	Unauthenticated
	AuthorizedNoRoleCheck
	AuthorizedRoleMismatch
	AuthorizedRoleMatch
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case AuthorizedNoRoleCheck:
		return "authorized_no_role_check"
	case AuthorizedRoleMismatch:
		return "authorized_role_mismatch"
	case AuthorizedRoleMatch:
		return "authorized_role_match"
	default:
		return "unknown"
	}
}

// Destinations are the redirect targets of the guard
type Destinations struct {
	StudentLogin string
	AdminLogin   string
	Unauthorized string
	// Paths starting with AdminPrefix send unauthenticated visitors to AdminLogin
	AdminPrefix string
}

// DefaultDestinations returns the portal's standard redirect targets
func DefaultDestinations() Destinations {
	return Destinations{
		StudentLogin: "/login",
		AdminLogin:   "/admin/login",
		Unauthorized: "/unauthorized",
		AdminPrefix:  "/admin",
	}
}

// LoginFor picks the login page for an unauthenticated visitor on path
func (d Destinations) LoginFor(path string) string {
	if strings.HasPrefix(path, d.AdminPrefix) {
		return d.AdminLogin
	}
	return d.StudentLogin
}

// Input is everything a guard decision depends on
type Input struct {
	Session      session.Snapshot
	Path         string
	AllowedRoles []models.Role // empty means any authenticated role
}

// Decision is the outcome of evaluating an Input
type Decision struct {
	State    State
	Render   bool   // render the guarded children
	Busy     bool   // render a busy indicator and nothing else
	Redirect string // navigate here, when non-empty
}

// Evaluate maps an input to a decision. It has no side effects.
func Evaluate(in Input, dest Destinations) Decision {
	switch {
	case in.Session.IsLoading:
		return Decision{State: Loading, Busy: true}
	case !in.Session.IsAuthenticated:
		return Decision{State: Unauthenticated, Redirect: dest.LoginFor(in.Path)}
	case len(in.AllowedRoles) == 0:
		return Decision{State: AuthorizedNoRoleCheck, Render: true}
	case !slices.Contains(in.AllowedRoles, in.Session.Role()):
		return Decision{State: AuthorizedRoleMismatch, Redirect: dest.Unauthorized}
	default:
		return Decision{State: AuthorizedRoleMatch, Render: true}
	}
}

// Navigator performs path-based redirects for the guard
type Navigator interface {
	Redirect(to string)
	CurrentPath() string
}

// Guard re-evaluates its decision whenever its input changes and performs
// the redirect side effect once per distinct input.
type Guard struct {
	mu        sync.Mutex
	dest      Destinations
	navigator Navigator
	logger    zerolog.Logger

	evaluated bool
	lastKey   string
	decision  Decision
}

// New creates a guard that redirects through navigator
func New(dest Destinations, navigator Navigator, logger zerolog.Logger) *Guard {
	return &Guard{
		dest:      dest,
		navigator: navigator,
		logger:    logger,
	}
}

// Decision returns the most recent decision
func (g *Guard) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision
}

// Update evaluates in. An unchanged input returns the previous decision
// without redirecting again.
func (g *Guard) Update(in Input) Decision {
	key := inputKey(in)

	g.mu.Lock()
	if g.evaluated && key == g.lastKey {
		d := g.decision
		g.mu.Unlock()
		return d
	}
	d := Evaluate(in, g.dest)
	g.evaluated = true
	g.lastKey = key
	g.decision = d
	g.mu.Unlock()

	metrics.GuardDecisions.WithLabelValues(d.State.String()).Inc()

	if d.Redirect != "" {
		g.logger.Debug().
			Str("path", in.Path).
			Str("state", d.State.String()).
			Str("redirect", d.Redirect).
			Msg("Route guard redirect")
		g.navigator.Redirect(d.Redirect)
	}
	return d
}

// Watch re-evaluates the guard on every change of store, for the region
// guarded by allowed. It evaluates the current state immediately.
func (g *Guard) Watch(store *session.Store, allowed []models.Role) Decision {
	store.Subscribe(func(snap session.Snapshot) {
		g.Update(Input{Session: snap, Path: g.navigator.CurrentPath(), AllowedRoles: allowed})
	})
	return g.Update(Input{Session: store.Snapshot(), Path: g.navigator.CurrentPath(), AllowedRoles: allowed})
}

func inputKey(in Input) string {
	roles := make([]string, len(in.AllowedRoles))
	for i, r := range in.AllowedRoles {
		roles[i] = string(r)
	}
	slices.Sort(roles)

	var userID string
	if in.Session.User != nil {
		userID = in.Session.User.ID
	}

	return strings.Join([]string{
		boolKey(in.Session.IsLoading),
		boolKey(in.Session.IsAuthenticated),
		in.Session.Token,
		userID,
		string(in.Session.Role()),
		in.Path,
		strings.Join(roles, ","),
	}, "\x00")
}

func boolKey(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
