package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementcell/portal/internal/config"
	"github.com/placementcell/portal/internal/models"
	"github.com/placementcell/portal/internal/session"
)

func newTestServer(t *testing.T, backend http.HandlerFunc) (*Server, *session.MemoryPersister) {
	t.Helper()
	persister := session.NewMemoryPersister()
	return newTestServerWithPersister(t, backend, persister), persister
}

func newTestServerWithPersister(t *testing.T, backend http.HandlerFunc, persister session.Persister) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := httptest.NewServer(backend)
	t.Cleanup(api.Close)

	cfg := &config.Config{
		API: config.APIConfig{BaseURL: api.URL, Timeout: 5 * time.Second},
		Server: config.ServerConfig{
			Addr:           ":0",
			AllowedOrigins: []string{"http://localhost:5173"},
			SessionTTL:     time.Hour,
		},
	}

	srv, err := New(cfg, zerolog.Nop(), persister, "test")
	require.NoError(t, err)
	return srv
}

// loginAs stores a session directly and returns its browser cookie
func loginAs(t *testing.T, persister *session.MemoryPersister, role models.Role) *http.Cookie {
	t.Helper()
	id := ulid.Make().String()
	require.NoError(t, persister.Save(context.Background(), id, &session.Record{
		Token: "tok-" + string(role),
		User:  &models.User{ID: "u-" + string(role), Name: "Test", Role: role},
	}))
	return &http.Cookie{Name: sessionCookie, Value: id}
}

func do(srv *Server, req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func failBackend(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t, failBackend(t))

	w := do(srv, httptest.NewRequest(http.MethodGet, "/health", nil), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", decode(t, w)["status"])
}

func TestGuardedPage_RedirectsAnonymousStudent(t *testing.T) {
	srv, _ := newTestServer(t, failBackend(t))

	w := do(srv, httptest.NewRequest(http.MethodGet, "/student/jobs", nil), nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestGuardedPage_RedirectsAnonymousAdmin(t *testing.T) {
	srv, _ := newTestServer(t, failBackend(t))

	req := httptest.NewRequest(http.MethodGet, "/admin/jobs", nil)
	req.Header.Set("Accept", "application/json")
	w := do(srv, req, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/admin/login", decode(t, w)["redirect"])
}

func TestGuardedPage_StudentOnAdminPage(t *testing.T) {
	srv, persister := newTestServer(t, failBackend(t))
	cookie := loginAs(t, persister, models.RoleStudent)

	w := do(srv, httptest.NewRequest(http.MethodGet, "/admin/cycles", nil), cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/unauthorized", w.Header().Get("Location"))
}

func TestLogin_SetsCookieAndRedirects(t *testing.T) {
	srv, persister := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"token":"abc123","user":{"id":"s1","name":"Asha","email":"asha@campus.edu","role":"student"}}`))
	})

	form := url.Values{"email": {"asha@campus.edu"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(srv, req, nil)

	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/student/dashboard", w.Header().Get("Location"))

	cookie := findCookie(w, sessionCookie)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	record, err := persister.Load(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "abc123", record.Token)
}

func TestLogin_IssuesFreshSessionID(t *testing.T) {
	srv, persister := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"token":"abc123","user":{"id":"s1","name":"Asha","role":"student"}}`))
	})

	// A session ID chosen by someone else before the victim logs in
	planted := &http.Cookie{Name: sessionCookie, Value: ulid.Make().String()}

	form := url.Values{"email": {"asha@campus.edu"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(srv, req, planted)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	issued := findCookie(w, sessionCookie)
	require.NotNil(t, issued)
	assert.NotEqual(t, planted.Value, issued.Value)

	_, err := persister.Load(context.Background(), planted.Value)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// The planted ID stays anonymous
	w = do(srv, httptest.NewRequest(http.MethodGet, "/student/dashboard", nil), planted)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

type unavailablePersister struct {
	*session.MemoryPersister
}

func (unavailablePersister) Save(context.Context, string, *session.Record) error {
	return errors.New("redis: connection refused")
}

func TestLogin_SessionStoreFailureIsServerError(t *testing.T) {
	srv := newTestServerWithPersister(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"token":"abc123","user":{"id":"s1","role":"student"}}`))
	}, unavailablePersister{session.NewMemoryPersister()})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"asha@campus.edu","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(srv, req, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, findCookie(w, sessionCookie))
}

func TestLogin_AdminAccountOnStudentForm(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"token":"abc123","user":{"id":"a1","role":"admin"}}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"tpo@campus.edu","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	w := do(srv, req, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/unauthorized", decode(t, w)["redirect"])
	if cookie := findCookie(w, sessionCookie); cookie != nil {
		assert.Negative(t, cookie.MaxAge)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid email or password"}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"email":"tpo@campus.edu","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(srv, req, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode(t, w)["error"])
}

func TestLogin_ValidatesForm(t *testing.T) {
	srv, _ := newTestServer(t, failBackend(t))

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"not-an-email","password":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(srv, req, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentJobs_SendsBearerToken(t *testing.T) {
	srv, persister := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/jobs", r.URL.Path)
		assert.Equal(t, "Bearer tok-student", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"jobs":[{"id":"j1","title":"SDE Intern","company":"Acme"}]}`))
	})
	cookie := loginAs(t, persister, models.RoleStudent)

	w := do(srv, httptest.NewRequest(http.MethodGet, "/student/jobs", nil), cookie)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "student/jobs", body["page"])
	jobs := body["jobs"].([]any)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Acme", jobs[0].(map[string]any)["company"])
}

func TestExpiredSession_TearsDownAndRedirects(t *testing.T) {
	srv, persister := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"jwt expired"}`))
	})
	cookie := loginAs(t, persister, models.RoleStudent)

	w := do(srv, httptest.NewRequest(http.MethodGet, "/student/notifications", nil), cookie)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Your session has expired. Please log in again.", body["error"])
	assert.Equal(t, "/login", body["redirect"])

	cleared := findCookie(w, sessionCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	_, err := persister.Load(context.Background(), cookie.Value)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// The next visit with the stale cookie is sent to the login page
	w = do(srv, httptest.NewRequest(http.MethodGet, "/student/jobs", nil), cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestBackendFailure_KeepsSession(t *testing.T) {
	srv, persister := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"Database unavailable"}`))
	})
	cookie := loginAs(t, persister, models.RoleAdmin)

	w := do(srv, httptest.NewRequest(http.MethodGet, "/admin/notices", nil), cookie)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Database unavailable", decode(t, w)["error"])

	_, err := persister.Load(context.Background(), cookie.Value)
	assert.NoError(t, err)
}

func TestAdminCreateJob(t *testing.T) {
	srv, persister := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/jobs", r.URL.Path)
		assert.Equal(t, "Bearer tok-admin", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Globex", req["company"])
		assert.Equal(t, "internship", req["type"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"job":{"id":"j9","title":"Data Intern","company":"Globex"}}`))
	})
	cookie := loginAs(t, persister, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/admin/jobs",
		strings.NewReader(`{"title":"Data Intern","company":"Globex","description":"Summer role","type":"internship"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(srv, req, cookie)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "j9", decode(t, w)["job"].(map[string]any)["id"])
}

func TestAdminCreateJob_RejectsUnknownType(t *testing.T) {
	srv, persister := newTestServer(t, failBackend(t))
	cookie := loginAs(t, persister, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/admin/jobs",
		strings.NewReader(`{"title":"Data Intern","company":"Globex","description":"Summer role","type":"gig"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(srv, req, cookie)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadResume_ProxiesMultipart(t *testing.T) {
	srv, persister := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/students/resume", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		_, header, err := r.FormFile("resume")
		require.NoError(t, err)
		assert.Equal(t, "cv.pdf", header.Filename)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"url":"https://files.campus.edu/cv.pdf"}`))
	})
	cookie := loginAs(t, persister, models.RoleStudent)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("resume", "cv.pdf")
	require.NoError(t, err)
	part.Write([]byte("%PDF-1.7"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/student/resume", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := do(srv, req, cookie)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "https://files.campus.edu/cv.pdf", decode(t, w)["url"])
}

func TestUploadResume_RejectsNonPDF(t *testing.T) {
	srv, persister := newTestServer(t, failBackend(t))
	cookie := loginAs(t, persister, models.RoleStudent)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("resume", "cv.docx")
	part.Write([]byte("PK"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/student/resume", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := do(srv, req, cookie)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfile_AnyRole(t *testing.T) {
	srv, persister := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"user":{"id":"u-admin","role":"admin"}}`))
	})
	cookie := loginAs(t, persister, models.RoleAdmin)

	w := do(srv, httptest.NewRequest(http.MethodGet, "/profile", nil), cookie)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "profile", decode(t, w)["page"])
}

func TestLogout_ClearsSession(t *testing.T) {
	srv, persister := newTestServer(t, failBackend(t))
	cookie := loginAs(t, persister, models.RoleAdmin)

	w := do(srv, httptest.NewRequest(http.MethodPost, "/logout", nil), cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))
	_, err := persister.Load(context.Background(), cookie.Value)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestHome_RedirectsByRole(t *testing.T) {
	srv, persister := newTestServer(t, failBackend(t))

	w := do(srv, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = do(srv, httptest.NewRequest(http.MethodGet, "/", nil), loginAs(t, persister, models.RoleAdmin))
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
}
