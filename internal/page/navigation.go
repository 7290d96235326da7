package page

import (
	"context"
	"fmt"
	"time"
)

// Navigation menu selectors.
const (
	NavSidebar    = `nav, [role="navigation"], aside`
	NavMenuButton = `button[aria-label*="menu"], button[aria-label*="Menu"], [data-testid*="menu"]`
	NavUserMenu   = `[data-testid*="user-menu"], [aria-label*="user"]`
	NavLogout     = `button:has-text("Logout"), button:has-text("Sign out"), a:has-text("Logout"), [data-testid*="logout"]`
)

// navLinks maps a section name to its menu link.
var navLinks = map[string]string{
	"dashboard": `a[href*="dashboard"], nav a:has-text("Dashboard"), [data-testid*="dashboard"]`,
	"tasks":     `a[href*="tasks"], nav a:has-text("Tasks"), [data-testid*="tasks"]`,
	"reports":   `a[href*="reports"], nav a:has-text("Reports"), [data-testid*="reports"]`,
	"users":     `a[href*="users"], nav a:has-text("Users"), [data-testid*="users"]`,
	"branches":  `a[href*="branch"], nav a:has-text("Branch"), nav a:has-text("Branches"), [data-testid*="branch"]`,
	"settings":  `a[href*="settings"], nav a:has-text("Settings")`,
	"support":   `a[href*="support"], nav a:has-text("Support"), [data-testid*="support"]`,
	"profile":   `a[href*="profile"], nav a:has-text("Profile")`,
}

const (
	sidebarTimeout = 5 * time.Second
	menuTimeout    = 3 * time.Second
)

// NavigationPage is the sidebar and user menu present on every signed-in
// page.
type NavigationPage struct {
	*Base
}

func NewNavigationPage(b *Base) *NavigationPage {
	return &NavigationPage{Base: b}
}

func (p *NavigationPage) Name() string { return "navigation" }

// Open loads the dashboard, where the full menu is shown.
func (p *NavigationPage) Open(ctx context.Context) error {
	return p.Goto(ctx, "/dashboard")
}

// IsLoaded reports whether the sidebar is shown.
func (p *NavigationPage) IsLoaded(ctx context.Context) bool {
	return p.isVisibleWithin(ctx, NavSidebar, sidebarTimeout)
}

// GoTo opens section by URL and falls back to its menu link.
func (p *NavigationPage) GoTo(ctx context.Context, section *SectionPage) error {
	err := section.Open(ctx)
	if err == nil {
		return nil
	}
	p.logger.Debug("direct navigation failed, trying menu", "section", section.Name(), "error", err)

	link, ok := navLinks[section.Name()]
	if !ok || !p.isVisibleWithin(ctx, link, sidebarTimeout) {
		return err
	}
	if err := p.Click(ctx, link); err != nil {
		return fmt.Errorf("opening %s from menu: %w", section.Name(), err)
	}
	return p.WaitForURL(ctx, section.Path(), 0)
}

// Logout signs out through the user menu, or by loading /logout when no
// logout control is shown.
func (p *NavigationPage) Logout(ctx context.Context) error {
	if p.isVisibleWithin(ctx, NavUserMenu, menuTimeout) {
		if err := p.Click(ctx, NavUserMenu); err != nil {
			p.logger.Debug("user menu did not open", "error", err)
		}
	}
	if p.isVisibleWithin(ctx, NavLogout, menuTimeout) {
		if err := p.Click(ctx, NavLogout); err != nil {
			return err
		}
		return p.WaitForURL(ctx, "/login", 0)
	}
	return p.Goto(ctx, "/logout")
}
