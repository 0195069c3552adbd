package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/placementcell/portal/internal/apiclient"
	"github.com/placementcell/portal/internal/cli/userconfig"
	"github.com/placementcell/portal/internal/guard"
	"github.com/placementcell/portal/internal/logger"
	"github.com/placementcell/portal/internal/models"
	"github.com/placementcell/portal/internal/session"
)

// Options are the flags shared by every command
type Options struct {
	APIBaseURL string
	LogLevel   string
	Timeout    time.Duration
}

// cliDestinations maps guard redirects onto the commands a user should run
var cliDestinations = guard.Destinations{
	StudentLogin: "portal login",
	AdminLogin:   "portal login --role admin",
	Unauthorized: "unauthorized",
	AdminPrefix:  "portal admin",
}

// env is a resolved backend connection with its session
type env struct {
	baseURL string
	store   *session.Store
	api     *apiclient.Client
	logger  zerolog.Logger
}

// resolveBaseURL picks the backend from the --api flag, then
// PORTAL_API_BASE_URL, then the last successful login.
func resolveBaseURL(flag string) (string, error) {
	if flag != "" {
		return strings.TrimRight(flag, "/"), nil
	}
	if v := os.Getenv("PORTAL_API_BASE_URL"); v != "" {
		return strings.TrimRight(v, "/"), nil
	}

	cfg, err := userconfig.Load()
	if err != nil {
		return "", err
	}
	if cfg.APIBaseURL == "" {
		return "", fmt.Errorf("no backend configured. Use --api or set PORTAL_API_BASE_URL")
	}
	return cfg.APIBaseURL, nil
}

// connect resolves the backend and restores the keyring session for it.
// This is common logic used by most commands.
func connect(ctx context.Context, cmd *cobra.Command, opts *Options) (*env, error) {
	baseURL, err := resolveBaseURL(opts.APIBaseURL)
	if err != nil {
		return nil, err
	}

	log := logger.New(opts.LogLevel, "console", cmd.ErrOrStderr())

	store := session.NewStore(baseURL, session.NewKeyringPersister(), log)
	if err := store.Resolve(ctx); err != nil {
		return nil, err
	}

	api, err := apiclient.New(baseURL, store, log)
	if err != nil {
		return nil, err
	}
	if opts.Timeout > 0 {
		api.SetHTTPClient(&http.Client{Timeout: opts.Timeout})
	}

	return &env{baseURL: baseURL, store: store, api: api, logger: log}, nil
}

// cliNavigator records where the guard wants to send the user
type cliNavigator struct {
	path   string
	target string
}

func (n *cliNavigator) Redirect(to string) {
	n.target = to
}

func (n *cliNavigator) CurrentPath() string {
	return n.path
}

// authorize guards a command the way the web portal guards a page.
// allowed empty means any logged-in user.
func authorize(cmd *cobra.Command, e *env, allowed ...models.Role) error {
	nav := &cliNavigator{path: cmd.CommandPath()}
	decision := guard.New(cliDestinations, nav, e.logger).Watch(e.store, allowed)

	switch decision.State {
	case guard.AuthorizedRoleMatch, guard.AuthorizedNoRoleCheck:
		return nil
	case guard.Unauthenticated:
		return fmt.Errorf("not logged in. Please run '%s' first", nav.target)
	case guard.AuthorizedRoleMismatch:
		return fmt.Errorf("permission denied: '%s' is not available to %s accounts", cmd.CommandPath(), e.store.Snapshot().Role())
	default:
		return fmt.Errorf("session is still loading")
	}
}

// Hint returns a follow-up line for errors the user can act on
func Hint(err error) string {
	if errors.Is(err, apiclient.ErrSessionExpired) {
		return "Run 'portal login' to sign in again."
	}
	return ""
}

// formatDate renders optional dates in tables
func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
