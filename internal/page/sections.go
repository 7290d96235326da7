package page

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SectionSelectors are the elements a portal section list page may expose.
// Empty selectors are absent from that section.
type SectionSelectors struct {
	Header     string
	List       string
	Table      string
	Create     string
	Search     string
	Filter     string
	Save       string
	Cancel     string
	Pagination string
	NextPage   string
	PrevPage   string
}

// Field pairs a form input with the value to type into it.
type Field struct {
	Selector string
	Value    string
}

const (
	headerTimeout   = 3 * time.Second
	optionalTimeout = 3 * time.Second
)

// SectionPage is a portal section reached by path after sign-in. Paths are
// tried in order; the first is the canonical route.
type SectionPage struct {
	*Base
	name  string
	paths []string
	Sel   SectionSelectors
}

func newSection(b *Base, name string, sel SectionSelectors, paths ...string) *SectionPage {
	return &SectionPage{Base: b, name: name, paths: paths, Sel: sel}
}

func (p *SectionPage) Name() string { return p.name }

// Path returns the canonical route of the section.
func (p *SectionPage) Path() string { return p.paths[0] }

// Open navigates to the section, trying each route until the browser lands
// on it.
func (p *SectionPage) Open(ctx context.Context) error {
	var lastErr error
	for _, path := range p.paths {
		if err := p.Goto(ctx, path); err != nil {
			lastErr = err
			continue
		}
		if err := p.WaitForURL(ctx, path, 0); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("opening %s: %w", p.name, lastErr)
}

// IsLoaded checks the URL first and falls back to the section header.
func (p *SectionPage) IsLoaded(ctx context.Context) bool {
	current := p.CurrentURL(ctx)
	for _, path := range p.paths {
		if strings.Contains(current, path) {
			return true
		}
	}
	return p.Sel.Header != "" && p.isVisibleWithin(ctx, p.Sel.Header, headerTimeout)
}

// NotFound reports whether the portal rendered its not-found page. Some
// environments ship without every section.
func (p *SectionPage) NotFound(ctx context.Context) bool {
	body, err := p.drv.Text(ctx, "body")
	if err != nil {
		return false
	}
	body = strings.ToLower(body)
	return strings.Contains(body, "page not found") || strings.Contains(body, "404")
}

// RowCount returns the number of list entries shown.
func (p *SectionPage) RowCount(ctx context.Context) int {
	if p.Sel.List == "" {
		return 0
	}
	return p.Count(ctx, p.Sel.List)
}

// Search types term into the section search box.
func (p *SectionPage) Search(ctx context.Context, term string) error {
	if p.Sel.Search == "" {
		return fmt.Errorf("%s has no search: %w", p.name, ErrNotFound)
	}
	return p.Fill(ctx, p.Sel.Search, term)
}

// ClickCreate opens the section's create form.
func (p *SectionPage) ClickCreate(ctx context.Context) error {
	if p.Sel.Create == "" {
		return fmt.Errorf("%s has no create action: %w", p.name, ErrNotFound)
	}
	return p.Click(ctx, p.Sel.Create)
}

// FillForm fills every field with a non-empty value whose input is shown.
// It returns the number of fields filled.
func (p *SectionPage) FillForm(ctx context.Context, fields ...Field) (int, error) {
	filled := 0
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		if !p.isVisibleWithin(ctx, f.Selector, optionalTimeout) {
			p.logger.Debug("form field not shown", "section", p.name, "selector", f.Selector)
			continue
		}
		if err := p.Fill(ctx, f.Selector, f.Value); err != nil {
			return filled, err
		}
		filled++
	}
	return filled, nil
}

// SaveForm submits the open form.
func (p *SectionPage) SaveForm(ctx context.Context) error {
	return p.clickOptional(ctx, p.Sel.Save)
}

// CancelForm dismisses the open form.
func (p *SectionPage) CancelForm(ctx context.Context) error {
	return p.clickOptional(ctx, p.Sel.Cancel)
}

// NextPage advances the list when a next-page control is shown.
func (p *SectionPage) NextPage(ctx context.Context) error {
	return p.clickOptional(ctx, p.Sel.NextPage)
}

// PrevPage goes back one list page when the control is shown.
func (p *SectionPage) PrevPage(ctx context.Context) error {
	return p.clickOptional(ctx, p.Sel.PrevPage)
}

func (p *SectionPage) clickOptional(ctx context.Context, selector string) error {
	if selector == "" || !p.isVisibleWithin(ctx, selector, optionalTimeout) {
		return fmt.Errorf("%s: %w", p.name, ErrNotFound)
	}
	return p.Click(ctx, selector)
}

// ─── Sections ───────────────────────────────────────────────────────────────

const (
	commonSearch   = `input[placeholder="Search"], input[placeholder*="Search" i], input[type="search"], input[name*="search"]`
	commonFilter   = `button:has-text("Filter"), [data-testid*="filter"]`
	commonTable    = `table, [role="table"]`
	commonPages    = `[data-testid*="pagination"], .pagination`
	commonNext     = `button[aria-label*="next" i], button:has-text("Next"), [aria-label*="next"]`
	commonPrev     = `button[aria-label*="previous" i], button:has-text("Previous"), [aria-label*="previous"]`
	commonSave     = `button:has-text("Save"), button[type="submit"], button:has-text("Create")`
	commonCancel   = `button:has-text("Cancel"), button[type="button"]`
	loadingSpinner = `[data-testid*="loading"], .spinner, .loading`
)

// Dashboard metric cards.
const (
	DashboardActiveUsers     = `text=Active Users, [class*="card"]:has-text("Active Users")`
	DashboardCheckedIn       = `text=Users Checked-In, [class*="card"]:has-text("Users Checked-In")`
	DashboardCheckedOut      = `text=Users Checked-Out, [class*="card"]:has-text("Users Checked-Out")`
	DashboardMetricCards     = `[class*="card"], .metric-card, [data-testid*="metric"]`
	DashboardContent         = `main, [role="main"], .content, .dashboard-content`
	DashboardLocationSection = `text=User Live Approx. Location, [class*="section"]:has-text("User Live Approx. Location")`
	DashboardAreasSection    = `text=Areas by Checked-In Users, [class*="section"]:has-text("Areas")`
	DashboardWidgets         = `[data-testid*="widget"], .widget, .card, [class*="widget"]`
	DashboardCharts          = `canvas, svg, [class*="chart"]`
)

// DashboardPage is the landing page after sign-in.
type DashboardPage struct {
	*SectionPage
}

func NewDashboardPage(b *Base) *DashboardPage {
	return &DashboardPage{newSection(b, "dashboard", SectionSelectors{
		Header: `text=Dashboard, h1:has-text("Dashboard"), [data-testid*="dashboard-header"]`,
		Search: `input[placeholder*="Search Users"], input[name*="search"], input[type="search"]`,
		Table:  commonTable,
	}, "/dashboard")}
}

// WaitLoaded waits for the dashboard URL and for any loading indicator to
// clear. A URL that already matches counts as loaded.
func (p *DashboardPage) WaitLoaded(ctx context.Context) error {
	if err := p.WaitForURL(ctx, p.Path(), 0); err != nil {
		return err
	}
	if ok, err := p.drv.IsVisible(ctx, loadingSpinner); err == nil && ok {
		if err := p.drv.WaitFor(ctx, loadingSpinner, StateHidden, p.navTimeout); err != nil {
			p.logger.Debug("loading indicator still shown", "error", err)
		}
	}
	return nil
}

// MetricCardCount returns the number of metric cards rendered.
func (p *DashboardPage) MetricCardCount(ctx context.Context) int {
	return p.Count(ctx, DashboardMetricCards)
}

// ContentVisible reports whether the main content area is shown.
func (p *DashboardPage) ContentVisible(ctx context.Context) bool {
	return p.IsVisible(ctx, DashboardContent)
}

// Reports page filter inputs.
const (
	ReportsUserDropdown = `input[id="user-dropdown"], input[placeholder="Search or select users"]`
	ReportsDateFilter   = `input[id="«r9»"], input[id="«rd»"], input[type="date"], [data-testid*="date"], input[name*="date"], input[aria-label*="date" i]`
	ReportsExport       = `button:has-text("EXPORT"), button:has-text("Export"), button:has-text("Download"), [data-testid*="export"]`
)

func NewReportsPage(b *Base) *SectionPage {
	return newSection(b, "reports", SectionSelectors{
		Header:     `text=Reports, h1:has-text("Reports"), [data-testid*="reports-header"]`,
		List:       `table tbody tr, [data-testid*="report"], .report-item, .report-card`,
		Table:      commonTable,
		Create:     `button:has-text("Create"), button:has-text("New Report"), [data-testid*="create-report"]`,
		Search:     `input[placeholder="Search or select users"], input[placeholder*="Search" i], input[type="search"], input[name*="search"]`,
		Filter:     commonFilter,
		Pagination: commonPages,
		NextPage:   commonNext,
		PrevPage:   commonPrev,
	}, "/reports")
}

// User form inputs.
const (
	UserEmailInput    = `input[type="email"], input[name*="email"]`
	UserNameInput     = `input[name*="name"], input[placeholder*="Name"]`
	UserPasswordInput = `input[type="password"], input[name*="password"]`
	UserConfirmInput  = `input[name*="confirm"], input[name*="confirm_password"]`
	UserPhoneInput    = `input[type="tel"], input[name*="phone"]`
)

func NewUsersPage(b *Base) *SectionPage {
	return newSection(b, "users", SectionSelectors{
		Header:     `text=Users, h1:has-text("Users"), [data-testid*="users-header"]`,
		List:       `table tbody tr, [data-testid*="user"], .user-item, .user-card`,
		Table:      commonTable,
		Create:     `button:has-text("ADD USER"), button:has-text("Create User"), button:has-text("Add User"), [data-testid*="create-user"]`,
		Search:     commonSearch,
		Filter:     commonFilter,
		Save:       commonSave,
		Cancel:     commonCancel,
		Pagination: commonPages,
		NextPage:   commonNext,
		PrevPage:   commonPrev,
	}, "/users")
}

// Branch form inputs.
const (
	BranchNameInput    = `input[name*="name"], input[placeholder*="Name"], input[placeholder*="Branch Name"]`
	BranchCodeInput    = `input[name*="code"], input[placeholder*="Code"], input[placeholder*="Branch Code"]`
	BranchAddressInput = `textarea[name*="address"], input[name*="address"], textarea[placeholder*="Address"]`
	BranchCityInput    = `input[name*="city"], input[placeholder*="City"]`
	BranchPhoneInput   = `input[type="tel"], input[name*="phone"]`
	BranchEmailInput   = `input[type="email"], input[name*="email"]`
)

func NewBranchesPage(b *Base) *SectionPage {
	return newSection(b, "branches", SectionSelectors{
		Header:     `text=Branch, text=Branches, h1:has-text("Branch"), h1:has-text("Branches"), [data-testid*="branch-header"]`,
		List:       `table tbody tr, [data-testid*="branch"], .branch-item, .branch-card`,
		Table:      commonTable,
		Create:     `button:has-text("ADD BRANCH"), button:has-text("Create Branch"), button:has-text("Add Branch"), [data-testid*="create-branch"]`,
		Search:     commonSearch,
		Filter:     commonFilter,
		Save:       commonSave,
		Cancel:     commonCancel,
		Pagination: commonPages,
		NextPage:   `button[aria-label="Go to next page"], ` + commonNext,
		PrevPage:   `button[aria-label="Go to previous page"], ` + commonPrev,
	}, "/branch", "/branches")
}

// Settings profile and password inputs.
const (
	SettingsFullNameInput   = `input[name*="name"], input[placeholder*="Full Name"]`
	SettingsEmailInput      = `input[type="email"], input[name*="email"]`
	SettingsPhoneInput      = `input[type="tel"], input[name*="phone"]`
	SettingsCurrentPassword = `input[name*="current_password"], input[placeholder*="Current Password"]`
	SettingsNewPassword     = `input[name*="new_password"], input[placeholder*="New Password"]`
	SettingsConfirmPassword = `input[name*="confirm_password"]`
	SettingsChangePassword  = `button:has-text("Change Password")`
)

// SettingsPage is the account settings section, split into tabs.
type SettingsPage struct {
	*SectionPage
}

func NewSettingsPage(b *Base) *SettingsPage {
	return &SettingsPage{newSection(b, "settings", SectionSelectors{
		Header: `text=Settings, h1:has-text("Settings"), [data-testid*="settings-header"]`,
		Save:   `button:has-text("Save"), button[type="submit"]`,
		Cancel: `button:has-text("Cancel")`,
	}, "/settings")}
}

// SwitchTab selects a settings tab by its label.
func (p *SettingsPage) SwitchTab(ctx context.Context, label string) error {
	sel := fmt.Sprintf(`button:has-text(%q), [role="tab"]:has-text(%q), [data-testid*="%s"]`,
		label, label, strings.ToLower(label))
	return p.Click(ctx, sel)
}

// ChangePassword fills the password tab and submits it.
func (p *SettingsPage) ChangePassword(ctx context.Context, current, next string) error {
	if _, err := p.FillForm(ctx,
		Field{SettingsCurrentPassword, current},
		Field{SettingsNewPassword, next},
		Field{SettingsConfirmPassword, next},
	); err != nil {
		return err
	}
	return p.clickOptional(ctx, SettingsChangePassword)
}

// Tasks date picker.
const TasksDatePicker = `input[id="«r4»"], input[placeholder="MM/DD/YYYY"], input[aria-label*="date" i], input[type="date"]`

func NewTasksPage(b *Base) *SectionPage {
	return newSection(b, "tasks", SectionSelectors{
		Header:     `text=Tasks, h1:has-text("Tasks"), [data-testid*="tasks-header"]`,
		List:       `table tbody tr, [data-testid*="task"], .task-item, .task-card`,
		Table:      commonTable,
		Create:     `button:has-text("ADD TASK"), button:has-text("Create Task"), button:has-text("Add Task"), [data-testid*="create-task"]`,
		Search:     commonSearch,
		Filter:     commonFilter,
		Save:       commonSave,
		Cancel:     commonCancel,
		Pagination: commonPages,
		NextPage:   commonNext,
		PrevPage:   commonPrev,
	}, "/tasks")
}
