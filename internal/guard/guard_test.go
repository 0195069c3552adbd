package guard

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementcell/portal/internal/models"
	"github.com/placementcell/portal/internal/session"
)

type recordingNavigator struct {
	path      string
	redirects []string
}

func (n *recordingNavigator) Redirect(to string) {
	n.redirects = append(n.redirects, to)
}

func (n *recordingNavigator) CurrentPath() string {
	return n.path
}

func authenticated(role models.Role) session.Snapshot {
	return session.Snapshot{
		Token:           "abc123",
		User:            &models.User{ID: "u-1", Role: role},
		IsAuthenticated: true,
	}
}

func TestEvaluate(t *testing.T) {
	dest := DefaultDestinations()
	admin := []models.Role{models.RoleAdmin}

	tests := []struct {
		name     string
		input    Input
		expected Decision
	}{
		{
			name:     "loading renders busy indicator only",
			input:    Input{Session: session.Snapshot{IsLoading: true}, Path: "/student/jobs"},
			expected: Decision{State: Loading, Busy: true},
		},
		{
			name:     "loading wins over an authenticated session",
			input:    Input{Session: session.Snapshot{IsLoading: true, IsAuthenticated: true}, Path: "/admin", AllowedRoles: admin},
			expected: Decision{State: Loading, Busy: true},
		},
		{
			name:     "unauthenticated on student path",
			input:    Input{Path: "/student/jobs"},
			expected: Decision{State: Unauthenticated, Redirect: "/login"},
		},
		{
			name:     "unauthenticated on admin path",
			input:    Input{Path: "/admin/notices", AllowedRoles: admin},
			expected: Decision{State: Unauthenticated, Redirect: "/admin/login"},
		},
		{
			name:     "unauthenticated on root path",
			input:    Input{Path: "/"},
			expected: Decision{State: Unauthenticated, Redirect: "/login"},
		},
		{
			name:     "no role restriction",
			input:    Input{Session: authenticated(models.RoleStudent), Path: "/profile"},
			expected: Decision{State: AuthorizedNoRoleCheck, Render: true},
		},
		{
			name:     "role mismatch",
			input:    Input{Session: authenticated(models.RoleStudent), Path: "/admin/jobs", AllowedRoles: admin},
			expected: Decision{State: AuthorizedRoleMismatch, Redirect: "/unauthorized"},
		},
		{
			name:     "role match",
			input:    Input{Session: authenticated(models.RoleAdmin), Path: "/admin/jobs", AllowedRoles: admin},
			expected: Decision{State: AuthorizedRoleMatch, Render: true},
		},
		{
			name:     "role in multi-role allow set",
			input:    Input{Session: authenticated(models.RoleStudent), Path: "/notices", AllowedRoles: []models.Role{models.RoleAdmin, models.RoleStudent}},
			expected: Decision{State: AuthorizedRoleMatch, Render: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Evaluate(tt.input, dest))
		})
	}
}

func TestGuard_NoRoleCheckRendersWithoutRedirect(t *testing.T) {
	nav := &recordingNavigator{path: "/profile"}
	g := New(DefaultDestinations(), nav, zerolog.Nop())

	d := g.Update(Input{Session: authenticated(models.RoleStudent), Path: nav.path, AllowedRoles: []models.Role{}})

	assert.True(t, d.Render)
	assert.Empty(t, nav.redirects)
}

func TestGuard_RoleMismatchRedirectsExactlyOnce(t *testing.T) {
	nav := &recordingNavigator{path: "/admin/jobs"}
	g := New(DefaultDestinations(), nav, zerolog.Nop())
	in := Input{Session: authenticated(models.RoleStudent), Path: nav.path, AllowedRoles: []models.Role{models.RoleAdmin}}

	first := g.Update(in)
	second := g.Update(in)

	assert.False(t, first.Render)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"/unauthorized"}, nav.redirects)
}

func TestGuard_AllowSetOrderDoesNotRetrigger(t *testing.T) {
	nav := &recordingNavigator{path: "/notices"}
	g := New(DefaultDestinations(), nav, zerolog.Nop())
	snap := session.Snapshot{}

	g.Update(Input{Session: snap, Path: nav.path, AllowedRoles: []models.Role{models.RoleAdmin, models.RoleStudent}})
	g.Update(Input{Session: snap, Path: nav.path, AllowedRoles: []models.Role{models.RoleStudent, models.RoleAdmin}})

	assert.Len(t, nav.redirects, 1)
}

func TestGuard_ReevaluatesOnInputChange(t *testing.T) {
	nav := &recordingNavigator{path: "/student/jobs"}
	g := New(DefaultDestinations(), nav, zerolog.Nop())
	students := []models.Role{models.RoleStudent}

	d := g.Update(Input{Session: session.Snapshot{}, Path: nav.path, AllowedRoles: students})
	assert.Equal(t, Unauthenticated, d.State)

	d = g.Update(Input{Session: authenticated(models.RoleStudent), Path: nav.path, AllowedRoles: students})
	assert.Equal(t, AuthorizedRoleMatch, d.State)
	assert.Equal(t, AuthorizedRoleMatch, g.Decision().State)

	// Allow-set change
	d = g.Update(Input{Session: authenticated(models.RoleStudent), Path: nav.path, AllowedRoles: []models.Role{models.RoleAdmin}})
	assert.Equal(t, AuthorizedRoleMismatch, d.State)

	// Path change
	nav.path = "/admin/cycles"
	d = g.Update(Input{Session: session.Snapshot{}, Path: nav.path, AllowedRoles: []models.Role{models.RoleAdmin}})
	assert.Equal(t, Unauthenticated, d.State)

	assert.Equal(t, []string{"/login", "/unauthorized", "/admin/login"}, nav.redirects)
}

func TestGuard_WatchFollowsSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore("s1", session.NewMemoryPersister(), zerolog.Nop())
	nav := &recordingNavigator{path: "/student/dashboard"}
	g := New(DefaultDestinations(), nav, zerolog.Nop())

	d := g.Watch(store, []models.Role{models.RoleStudent})
	assert.Equal(t, Loading, d.State)
	assert.True(t, d.Busy)
	assert.Empty(t, nav.redirects)

	require.NoError(t, store.Resolve(ctx))
	assert.Equal(t, Unauthenticated, g.Decision().State)

	require.NoError(t, store.Login(ctx, "abc123", &models.User{ID: "u-1", Role: models.RoleStudent}))
	assert.Equal(t, AuthorizedRoleMatch, g.Decision().State)

	require.True(t, store.Expire(ctx, "abc123"))
	assert.Equal(t, Unauthenticated, g.Decision().State)

	assert.Equal(t, []string{"/login", "/login"}, nav.redirects)
}

func TestDestinations_LoginFor(t *testing.T) {
	dest := DefaultDestinations()

	assert.Equal(t, "/admin/login", dest.LoginFor("/admin"))
	assert.Equal(t, "/admin/login", dest.LoginFor("/admin/students/42"))
	assert.Equal(t, "/login", dest.LoginFor("/student/admin"))
	assert.Equal(t, "/login", dest.LoginFor(""))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "authorized_role_mismatch", AuthorizedRoleMismatch.String())
	assert.Equal(t, "unknown", State(99).String())
}
