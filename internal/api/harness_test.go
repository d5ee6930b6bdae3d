package api

import (
	"alcyxob/gym-manager/internal/content"
	"alcyxob/gym-manager/internal/notify"
	"alcyxob/gym-manager/internal/repository"
	"alcyxob/gym-manager/internal/repository/memory"
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/session"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "admin-secret"
)

type testApp struct {
	router   *gin.Engine
	repos    repository.Repositories
	services Services
	checks   map[string]Pinger
}

type appOption func(*RouterConfig)

func withCSRF(key []byte) appOption {
	return func(cfg *RouterConfig) { cfg.CSRFKey = key }
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	repos := memory.NewRepositories()
	clock := service.NewClock(time.UTC, nil)
	notifier := notify.NewMailNotifier(notify.LogSender{}, "Gimnasio")
	svc := Services{
		Auth:       service.NewAuthService(repos.Administrators, repos.Members),
		Member:     service.NewMemberService(repos.Members, repos.Plans, notifier, clock),
		Plan:       service.NewPlanService(repos.Plans),
		Instructor: service.NewInstructorService(repos.Instructors, clock),
		Class:      service.NewClassService(repos, nil),
		Attendance: service.NewAttendanceService(repos.Attendances, repos.Members, clock),
		Routine:    service.NewRoutineService(repos, clock),
		Progress:   service.NewProgressService(repos, clock),
		Dashboard:  service.NewDashboardService(repos, clock),
	}
	_, err := svc.Plan.SeedDefaults(ctx)
	require.NoError(t, err)
	_, err = svc.Auth.EnsureAdmin(ctx, service.AdminInput{
		Username: testAdminUser,
		Password: testAdminPassword,
		Name:     "Administrador",
		Email:    "admin@gym.test",
	})
	require.NoError(t, err)

	app := &testApp{repos: repos, services: svc, checks: map[string]Pinger{}}
	manager := session.NewManager(session.NewMemoryStore(), "test-secret", time.Hour)
	cfg := RouterConfig{
		Services:     svc,
		Sessions:     NewSessions(manager, "gym_session", false),
		Pages:        content.NewPages(),
		Clock:        clock,
		HealthChecks: app.checks,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	app.router = gin.New()
	SetupRoutes(app.router, cfg)
	return app
}

// browser keeps the session cookie between requests, like a real client.
type browser struct {
	t      *testing.T
	app    *testApp
	cookie *http.Cookie
}

func (a *testApp) browser(t *testing.T) *browser {
	return &browser{t: t, app: a}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.app.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name != "gym_session" {
			continue
		}
		if c.MaxAge < 0 || c.Value == "" {
			b.cookie = nil
			continue
		}
		b.cookie = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// postAJAX posts like the admin screens' fetch calls do.
func (b *browser) postAJAX(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return b.do(req)
}

func (b *browser) loginAdmin() {
	b.t.Helper()
	rec := b.postForm("/admin/login", url.Values{"usuario": {testAdminUser}, "password": {testAdminPassword}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code)
	require.Equal(b.t, "/admin/dashboard", rec.Header().Get("Location"))
}

// register signs up through the public form; the password is derived from dni.
func (b *browser) register(name, dni, plan string) {
	b.t.Helper()
	rec := b.postForm("/registro", url.Values{
		"nombre":          {name},
		"email":           {dni + "@gym.test"},
		"password":        {"clave-" + dni},
		"dni":             {dni},
		"telefono":        {"999888777"},
		"fechaNacimiento": {"1990-05-20"},
		"plan":            {plan},
	})
	require.Equal(b.t, http.StatusSeeOther, rec.Code)
	require.Equal(b.t, "/login", rec.Header().Get("Location"))
}

func (b *browser) loginMember(dni string) {
	b.t.Helper()
	rec := b.postForm("/miembro/login", url.Values{"dni": {dni}, "password": {"clave-" + dni}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code)
	require.Equal(b.t, "/miembro/dashboard", rec.Header().Get("Location"))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
