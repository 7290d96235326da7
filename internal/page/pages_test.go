package page

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Login ──────────────────────────────────────────────────────────────────

func TestLoginPage_Open(t *testing.T) {
	drv := newFakeDriver(LoginEmailInput)
	p := NewLoginPage(newTestBase(drv))

	require.NoError(t, p.Open(context.Background()))
	assert.Equal(t, []string{testBaseURL + "/"}, drv.navigated)
	assert.True(t, p.IsLoaded(context.Background()))
	assert.Equal(t, "login", p.Name())
}

func TestLoginPage_OpenWithoutForm(t *testing.T) {
	p := NewLoginPage(newTestBase(newFakeDriver()))
	err := p.Open(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login form did not appear")
}

func TestLoginPage_Login_TwoSteps(t *testing.T) {
	drv := newFakeDriver(LoginEmailInput, `text=Next`, LoginPasswordInput, `text=Sign in`)
	drv.onClick[`text=Sign in`] = testBaseURL + "/dashboard"
	p := NewLoginPage(newTestBase(drv))

	require.NoError(t, p.Login(context.Background(), "qa@example.com", "s3cret", true))
	assert.Equal(t, "qa@example.com", drv.fills[LoginEmailInput])
	assert.Equal(t, "s3cret", drv.fills[LoginPasswordInput])
	assert.Equal(t, []string{`text=Next`, `text=Sign in`}, drv.clicks)
	assert.Equal(t, testBaseURL+"/dashboard", drv.url)
}

func TestLoginPage_Login_UnknownUser(t *testing.T) {
	drv := newFakeDriver(LoginEmailInput, LoginNextButton)
	p := NewLoginPage(newTestBase(drv))

	require.NoError(t, p.Login(context.Background(), "nobody@example.com", "x", true))
	assert.NotContains(t, drv.fills, LoginPasswordInput)
	assert.Equal(t, []string{LoginNextButton}, drv.clicks)
}

func TestLoginPage_Login_EmailOnly(t *testing.T) {
	drv := newFakeDriver(LoginEmailInput, LoginNextButton, LoginPasswordInput)
	p := NewLoginPage(newTestBase(drv))

	require.NoError(t, p.Login(context.Background(), "qa@example.com", "s3cret", false))
	assert.NotContains(t, drv.fills, LoginPasswordInput)
}

func TestLoginPage_Login_MissingEmailField(t *testing.T) {
	p := NewLoginPage(newTestBase(newFakeDriver()))
	assert.ErrorIs(t, p.Login(context.Background(), "a", "b", true), ErrNotFound)
}

func TestLoginPage_ErrorMessage(t *testing.T) {
	drv := newFakeDriver(`[role="alert"]`)
	drv.texts[`[role="alert"]`] = "Invalid email or password"
	p := NewLoginPage(newTestBase(drv))
	assert.Equal(t, "Invalid email or password", p.ErrorMessage(context.Background()))

	p = NewLoginPage(newTestBase(newFakeDriver()))
	assert.Empty(t, p.ErrorMessage(context.Background()))
}

// ─── Sections ───────────────────────────────────────────────────────────────

func TestSectionPages_Routes(t *testing.T) {
	b := newTestBase(newFakeDriver())
	tests := []struct {
		page Checker
		name string
		path string
	}{
		{NewDashboardPage(b), "dashboard", "/dashboard"},
		{NewReportsPage(b), "reports", "/reports"},
		{NewUsersPage(b), "users", "/users"},
		{NewBranchesPage(b), "branches", "/branch"},
		{NewSettingsPage(b), "settings", "/settings"},
		{NewTasksPage(b), "tasks", "/tasks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.page.Name())
			drv := newFakeDriver()
			b.drv = drv
			require.NoError(t, tt.page.Open(context.Background()))
			assert.Equal(t, []string{testBaseURL + tt.path}, drv.navigated)
			assert.True(t, tt.page.IsLoaded(context.Background()))
		})
	}
}

func TestSectionPage_OpenTriesEveryRoute(t *testing.T) {
	drv := newFakeDriver()
	drv.redirect[testBaseURL+"/branch"] = testBaseURL + "/not-found"
	p := NewBranchesPage(newTestBase(drv))

	require.NoError(t, p.Open(context.Background()))
	assert.Equal(t, []string{testBaseURL + "/branch", testBaseURL + "/branches"}, drv.navigated)
	assert.Equal(t, testBaseURL+"/branches", drv.url)
}

func TestSectionPage_OpenFails(t *testing.T) {
	drv := newFakeDriver()
	drv.redirect[testBaseURL+"/users"] = testBaseURL + "/login"
	p := NewUsersPage(newTestBase(drv))

	err := p.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrURLTimeout)
	assert.Contains(t, err.Error(), "opening users")
}

func TestSectionPage_IsLoadedByHeader(t *testing.T) {
	drv := newFakeDriver(`text=Reports`)
	drv.url = testBaseURL + "/somewhere"
	p := NewReportsPage(newTestBase(drv))
	assert.True(t, p.IsLoaded(context.Background()))

	drv.visible = map[string]bool{}
	assert.False(t, p.IsLoaded(context.Background()))
}

func TestSectionPage_NotFound(t *testing.T) {
	drv := newFakeDriver()
	drv.texts["body"] = "Oops!\nPage Not Found"
	p := NewSettingsPage(newTestBase(drv))
	assert.True(t, p.NotFound(context.Background()))

	drv.texts["body"] = "Settings\nGeneral"
	assert.False(t, p.NotFound(context.Background()))
}

func TestSectionPage_ListActions(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver(`input[placeholder="Search"]`, `text=ADD USER`, `button:has-text("Next")`)
	p := NewUsersPage(newTestBase(drv))
	drv.counts[p.Sel.List] = 12

	assert.Equal(t, 12, p.RowCount(ctx))
	require.NoError(t, p.Search(ctx, "alice"))
	assert.Equal(t, "alice", drv.fills[`input[placeholder="Search"]`])
	require.NoError(t, p.ClickCreate(ctx))
	require.NoError(t, p.NextPage(ctx))
	assert.Equal(t, []string{`text=ADD USER`, `button:has-text("Next")`}, drv.clicks)
	assert.ErrorIs(t, p.PrevPage(ctx), ErrNotFound)
}

func TestSectionPage_MissingCapabilities(t *testing.T) {
	ctx := context.Background()
	p := NewSettingsPage(newTestBase(newFakeDriver()))

	assert.Equal(t, 0, p.RowCount(ctx))
	assert.ErrorIs(t, p.Search(ctx, "x"), ErrNotFound)
	assert.ErrorIs(t, p.ClickCreate(ctx), ErrNotFound)
	assert.ErrorIs(t, p.NextPage(ctx), ErrNotFound)
}

func TestSectionPage_FillForm(t *testing.T) {
	drv := newFakeDriver(`input[type="email"]`, `input[name*="name"]`)
	p := NewUsersPage(newTestBase(drv))

	n, err := p.FillForm(context.Background(),
		Field{UserEmailInput, "new.user@example.com"},
		Field{UserNameInput, "New User"},
		Field{UserPhoneInput, "555-0100"},
		Field{UserPasswordInput, ""},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "new.user@example.com", drv.fills[`input[type="email"]`])
	assert.Equal(t, "New User", drv.fills[`input[name*="name"]`])
}

func TestDashboardPage_WaitLoaded(t *testing.T) {
	drv := newFakeDriver()
	drv.url = testBaseURL + "/dashboard"
	drv.counts[DashboardMetricCards] = 3
	p := NewDashboardPage(newTestBase(drv))

	require.NoError(t, p.WaitLoaded(context.Background()))
	assert.Equal(t, 3, p.MetricCardCount(context.Background()))

	drv.url = testBaseURL + "/login"
	assert.ErrorIs(t, p.WaitLoaded(context.Background()), ErrURLTimeout)
}

func TestDashboardPage_WaitsForSpinner(t *testing.T) {
	drv := newFakeDriver(loadingSpinner)
	drv.url = testBaseURL + "/dashboard"
	p := NewDashboardPage(newTestBase(drv))

	require.NoError(t, p.WaitLoaded(context.Background()))
	assert.Contains(t, drv.waits, "hidden "+loadingSpinner)
}

func TestSettingsPage_SwitchTabAndChangePassword(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver(`text=Security`, `input[name*="current_password"]`, `input[name*="new_password"]`,
		`input[name*="confirm_password"]`, SettingsChangePassword)
	p := NewSettingsPage(newTestBase(drv))

	require.NoError(t, p.SwitchTab(ctx, "Security"))
	require.NoError(t, p.ChangePassword(ctx, "old", "n3w"))
	assert.Equal(t, "old", drv.fills[`input[name*="current_password"]`])
	assert.Equal(t, "n3w", drv.fills[`input[name*="new_password"]`])
	assert.Equal(t, "n3w", drv.fills[`input[name*="confirm_password"]`])
	assert.Equal(t, []string{`text=Security`, SettingsChangePassword}, drv.clicks)
}

// ─── Navigation ─────────────────────────────────────────────────────────────

func TestNavigationPage_GoToByURL(t *testing.T) {
	drv := newFakeDriver()
	b := newTestBase(drv)
	nav := NewNavigationPage(b)

	require.NoError(t, nav.GoTo(context.Background(), NewTasksPage(b)))
	assert.Equal(t, testBaseURL+"/tasks", drv.url)
	assert.Empty(t, drv.clicks)
}

func TestNavigationPage_GoToFallsBackToMenu(t *testing.T) {
	drv := newFakeDriver(navLinks["reports"])
	drv.redirect[testBaseURL+"/reports"] = testBaseURL + "/dashboard"
	drv.onClick[navLinks["reports"]] = testBaseURL + "/reports"
	b := newTestBase(drv)

	require.NoError(t, NewNavigationPage(b).GoTo(context.Background(), NewReportsPage(b)))
	assert.Equal(t, []string{navLinks["reports"]}, drv.clicks)
	assert.Equal(t, testBaseURL+"/reports", drv.url)
}

func TestNavigationPage_GoToNoMenu(t *testing.T) {
	drv := newFakeDriver()
	drv.navErr[testBaseURL+"/users"] = errors.New("net::ERR_ABORTED")
	b := newTestBase(drv)

	err := NewNavigationPage(b).GoTo(context.Background(), NewUsersPage(b))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_ABORTED")
}

func TestNavigationPage_Logout(t *testing.T) {
	t.Run("via menu", func(t *testing.T) {
		drv := newFakeDriver(NavUserMenu, NavLogout)
		drv.onClick[NavLogout] = testBaseURL + "/login"
		nav := NewNavigationPage(newTestBase(drv))

		require.NoError(t, nav.Logout(context.Background()))
		assert.Equal(t, []string{NavUserMenu, NavLogout}, drv.clicks)
	})

	t.Run("direct", func(t *testing.T) {
		drv := newFakeDriver()
		nav := NewNavigationPage(newTestBase(drv))

		require.NoError(t, nav.Logout(context.Background()))
		assert.Equal(t, []string{testBaseURL + "/logout"}, drv.navigated)
	})
}

func TestNavigationPage_IsLoaded(t *testing.T) {
	nav := NewNavigationPage(newTestBase(newFakeDriver(`aside`)))
	assert.True(t, nav.IsLoaded(context.Background()))
	assert.Equal(t, "navigation", nav.Name())
}

// ─── Screenshots ────────────────────────────────────────────────────────────

func TestScreenshotPath(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 5, 9, 0, time.UTC)
	got := ScreenshotPath("shots", "tests/test_login.py::test valid login", now)
	assert.Equal(t, filepath.Join("shots", "tests_test_login.py_test_valid_login_20240610_080509.png"), got)
}

func TestCaptureFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screenshots")
	drv := newFakeDriver()
	now := time.Date(2024, 6, 10, 8, 5, 9, 0, time.UTC)

	path, err := CaptureFailure(context.Background(), drv, dir, "test_dashboard_loads", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test_dashboard_loads_20240610_080509.png"), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestCaptureFailure_DriverError(t *testing.T) {
	drv := newFakeDriver()
	drv.shotErr = errors.New("target closed")

	_, err := CaptureFailure(context.Background(), drv, t.TempDir(), "t", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target closed")
}
