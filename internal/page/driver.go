// Package page holds the page objects of the staging portal UI suite.
//
// Page objects never talk to a browser directly. They drive a Driver, which
// an automation backend implements, and share their wait and check
// behaviour through Base.
package page

import (
	"context"
	"time"
)

// WaitState is the element state a Driver waits for.
type WaitState string

const (
	StateVisible  WaitState = "visible"
	StateAttached WaitState = "attached"
	StateHidden   WaitState = "hidden"
)

// Driver is the browser automation contract the page objects consume.
// Selectors use the automation backend's syntax, including text= and
// :has-text() forms.
type Driver interface {
	// Navigate loads url and returns once the DOM content is loaded.
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	// WaitFor blocks until the first element matching selector reaches state
	// or timeout elapses.
	WaitFor(ctx context.Context, selector string, state WaitState, timeout time.Duration) error
	IsVisible(ctx context.Context, selector string) (bool, error)
	Text(ctx context.Context, selector string) (string, error)
	Count(ctx context.Context, selector string) (int, error)
	URL(ctx context.Context) (string, error)
	// Screenshot writes a PNG of the current viewport to path.
	Screenshot(ctx context.Context, path string) error
	// ClearSession drops cookies and web storage.
	ClearSession(ctx context.Context) error
}

// Checker is the capability every page object exposes, whichever section
// of the portal it represents.
type Checker interface {
	Name() string
	Open(ctx context.Context) error
	IsLoaded(ctx context.Context) bool
	IsVisible(ctx context.Context, selector string) bool
	WaitReady(ctx context.Context, selector string) error
}

var (
	_ Checker = (*LoginPage)(nil)
	_ Checker = (*SectionPage)(nil)
	_ Checker = (*DashboardPage)(nil)
	_ Checker = (*SettingsPage)(nil)
	_ Checker = (*NavigationPage)(nil)
)
