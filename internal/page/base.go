package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ancients-collective/allurexl/internal/config"
)

var (
	// ErrNotFound is returned when no form of a selector matches an element.
	ErrNotFound = errors.New("element not found")
	// ErrURLTimeout is returned when the browser never reaches an expected URL.
	ErrURLTimeout = errors.New("timed out waiting for url")
)

const (
	defaultNavigationTimeout = 30 * time.Second
	defaultElementTimeout    = 10 * time.Second
	defaultPollInterval      = 250 * time.Millisecond
)

// sectionPaths are the portal routes, in the order a current URL is split
// on when deriving the base URL from it.
var sectionPaths = []string{"/dashboard", "/reports", "/users", "/tasks", "/branch", "/settings"}

var (
	hasTextRe     = regexp.MustCompile(`:has-text\((["'])(.*?)\1\)`)
	placeholderRe = regexp.MustCompile(`placeholder[^=]*="([^"]+)"`)
	nameAttrRe    = regexp.MustCompile(`name[^=]*="([^"]+)"`)
)

// Base carries the behaviour every page object shares: selector fallback,
// navigation relative to the portal base URL and URL waits.
type Base struct {
	drv         Driver
	baseURL     string
	navTimeout  time.Duration
	elemTimeout time.Duration
	poll        time.Duration
	logger      *slog.Logger
}

// NewBase binds a driver to the suite settings. Zero timeouts fall back to
// 30s for navigation and 10s for elements.
func NewBase(drv Driver, suite config.SuiteConfig, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &Base{
		drv:         drv,
		baseURL:     strings.TrimRight(suite.BaseURL, "/"),
		navTimeout:  suite.NavigationTimeout,
		elemTimeout: suite.ElementTimeout,
		poll:        defaultPollInterval,
		logger:      logger,
	}
	if b.navTimeout <= 0 {
		b.navTimeout = defaultNavigationTimeout
	}
	if b.elemTimeout <= 0 {
		b.elemTimeout = defaultElementTimeout
	}
	return b
}

// Driver returns the underlying driver.
func (b *Base) Driver() Driver { return b.drv }

// ─── Selectors ──────────────────────────────────────────────────────────────

// SplitSelector splits a comma-separated selector list at top level. Commas
// inside quotes, brackets or parentheses do not split.
func SplitSelector(selector string) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, r := range selector {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			if p := strings.TrimSpace(selector[start:i]); p != "" {
				parts = append(parts, p)
			}
			start = i + 1
		}
	}
	if p := strings.TrimSpace(selector[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// TextFallback rewrites `X:has-text("Y")` to `text=Y`.
func TextFallback(part string) (string, bool) {
	m := hasTextRe.FindStringSubmatch(part)
	if m == nil || m[2] == "" {
		return "", false
	}
	return "text=" + m[2], true
}

// Candidates lists the forms of selector tried in order: the whole list,
// each part, then the text form of each :has-text part.
func Candidates(selector string) []string {
	parts := SplitSelector(selector)
	out := make([]string, 0, 2*len(parts)+1)
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(strings.TrimSpace(selector))
	if len(parts) > 1 {
		for _, p := range parts {
			add(p)
		}
	}
	for _, p := range parts {
		if t, ok := TextFallback(p); ok {
			add(t)
		}
	}
	return out
}

// fillCandidates extends Candidates with placeholder and name lookups.
func fillCandidates(selector string) []string {
	out := Candidates(selector)
	if m := placeholderRe.FindStringSubmatch(selector); m != nil {
		out = append(out, fmt.Sprintf(`[placeholder="%s"]`, m[1]))
	}
	if m := nameAttrRe.FindStringSubmatch(selector); m != nil {
		out = append(out, fmt.Sprintf(`input[name="%s"]`, m[1]))
	}
	return out
}

// ─── Element checks and actions ─────────────────────────────────────────────

// IsVisible waits up to the element timeout for selector, then checks every
// fallback form once.
func (b *Base) IsVisible(ctx context.Context, selector string) bool {
	return b.isVisibleWithin(ctx, selector, b.elemTimeout)
}

func (b *Base) isVisibleWithin(ctx context.Context, selector string, timeout time.Duration) bool {
	cands := Candidates(selector)
	if len(cands) == 0 {
		return false
	}
	if err := b.drv.WaitFor(ctx, cands[0], StateVisible, timeout); err == nil {
		return true
	}
	for _, c := range cands[1:] {
		if ctx.Err() != nil {
			return false
		}
		if ok, err := b.drv.IsVisible(ctx, c); err == nil && ok {
			b.logger.Debug("selector matched by fallback", "selector", selector, "match", c)
			return true
		}
	}
	return false
}

// Click clicks the first form of selector that accepts the click.
func (b *Base) Click(ctx context.Context, selector string) error {
	return b.first(ctx, "click", selector, Candidates(selector), func(c string) error {
		return b.drv.Click(ctx, c)
	})
}

// Fill types value into the first form of selector that accepts it.
func (b *Base) Fill(ctx context.Context, selector, value string) error {
	return b.first(ctx, "fill", selector, fillCandidates(selector), func(c string) error {
		return b.drv.Fill(ctx, c, value)
	})
}

// Text returns the text of the first matching form of selector.
func (b *Base) Text(ctx context.Context, selector string) (string, error) {
	var text string
	err := b.first(ctx, "read", selector, Candidates(selector), func(c string) error {
		t, err := b.drv.Text(ctx, c)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(t)
		return nil
	})
	return text, err
}

// Count returns the number of elements matching selector, 0 when the driver
// cannot tell.
func (b *Base) Count(ctx context.Context, selector string) int {
	n, err := b.drv.Count(ctx, selector)
	if err != nil {
		b.logger.Debug("count failed", "selector", selector, "error", err)
		return 0
	}
	return n
}

// WaitReady waits for selector to be attached and then visible, trying each
// part of a selector list in turn.
func (b *Base) WaitReady(ctx context.Context, selector string) error {
	return b.first(ctx, "wait for", selector, Candidates(selector), func(c string) error {
		if err := b.drv.WaitFor(ctx, c, StateAttached, b.elemTimeout); err != nil {
			return err
		}
		return b.drv.WaitFor(ctx, c, StateVisible, b.elemTimeout)
	})
}

// first runs fn against each candidate until one succeeds.
func (b *Base) first(ctx context.Context, op, selector string, cands []string, fn func(string) error) error {
	var errs []error
	for _, c := range cands {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(c)
		if err == nil {
			if c != selector {
				b.logger.Debug("selector matched by fallback", "op", op, "selector", selector, "match", c)
			}
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("%s %q: %w", op, selector, errors.Join(append([]error{ErrNotFound}, errs...)...))
}

// ─── Navigation ─────────────────────────────────────────────────────────────

// BaseURL returns the configured portal URL, or derives it from the current
// page when none is configured.
func (b *Base) BaseURL(ctx context.Context) (string, error) {
	if b.baseURL != "" {
		return b.baseURL, nil
	}
	current, err := b.drv.URL(ctx)
	if err != nil {
		return "", fmt.Errorf("reading current url: %w", err)
	}
	return DeriveBaseURL(current), nil
}

// DeriveBaseURL cuts a portal URL at its first section path, or reduces it to
// scheme and host.
func DeriveBaseURL(current string) string {
	for _, p := range sectionPaths {
		if i := strings.Index(current, p); i >= 0 {
			return current[:i]
		}
	}
	u, err := url.Parse(current)
	if err != nil || u.Host == "" {
		return current
	}
	return u.Scheme + "://" + u.Host
}

// Goto navigates to path relative to the base URL. Absolute URLs are used
// as given.
func (b *Base) Goto(ctx context.Context, path string) error {
	target := path
	if !strings.Contains(path, "://") {
		base, err := b.BaseURL(ctx)
		if err != nil {
			return err
		}
		target = base + "/" + strings.TrimLeft(path, "/")
	}

	ctx, cancel := context.WithTimeout(ctx, b.navTimeout)
	defer cancel()
	b.logger.Debug("navigate", "url", target)
	if err := b.drv.Navigate(ctx, target); err != nil {
		return fmt.Errorf("navigating to %s: %w", target, err)
	}
	return nil
}

// CurrentURL returns the page URL, or "" when the driver cannot report it.
func (b *Base) CurrentURL(ctx context.Context) string {
	u, err := b.drv.URL(ctx)
	if err != nil {
		return ""
	}
	return u
}

// URLMatches reports whether the current URL contains fragment.
func (b *Base) URLMatches(ctx context.Context, fragment string) bool {
	return strings.Contains(b.CurrentURL(ctx), fragment)
}

// WaitForURL polls the current URL until it contains fragment. A zero
// timeout uses the navigation timeout.
func (b *Base) WaitForURL(ctx context.Context, fragment string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = b.navTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()
	for {
		if b.URLMatches(ctx, fragment) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %q after %s", ErrURLTimeout, fragment, timeout)
		case <-ticker.C:
		}
	}
}

// ClearSession drops cookies and storage. Failures are logged, not returned.
func (b *Base) ClearSession(ctx context.Context) {
	if err := b.drv.ClearSession(ctx); err != nil {
		b.logger.Debug("clear session failed", "error", err)
	}
}
