package page

import (
	"context"
	"fmt"
	"time"
)

// Login selectors. The portal signs in over two steps: email then Next,
// password then Sign in.
const (
	LoginEmailInput    = `input[id="«r0»"]`
	LoginNextButton    = `button:has-text("Next")`
	LoginPasswordInput = `input[id="«r3»"]`
	LoginSignInButton  = `button:has-text("Sign in")`
	LoginErrorMessage  = `[role="alert"], .error, [class*="error"], [class*="alert"]`
	LoginForm          = `form, [role="form"]`
	LoginRememberMe    = `input[type="checkbox"][name*="remember"], input[type="checkbox"][id*="remember"]`
	LoginForgotLink    = `a:has-text("Forgot"), a:has-text("forgot")`
)

const (
	loginFormTimeout    = 15 * time.Second
	passwordStepTimeout = 5 * time.Second
	errorMessageTimeout = 3 * time.Second
	loginVisibleTimeout = 5 * time.Second
)

// LoginPage is the portal sign-in page.
type LoginPage struct {
	*Base
}

// NewLoginPage returns the sign-in page object.
func NewLoginPage(b *Base) *LoginPage {
	return &LoginPage{Base: b}
}

func (p *LoginPage) Name() string { return "login" }

// Open loads the portal root and waits for the email field.
func (p *LoginPage) Open(ctx context.Context) error {
	if err := p.Goto(ctx, "/"); err != nil {
		return err
	}
	if err := p.drv.WaitFor(ctx, LoginEmailInput, StateVisible, loginFormTimeout); err != nil {
		return fmt.Errorf("login form did not appear: %w", err)
	}
	return nil
}

// IsLoaded reports whether the email field is showing.
func (p *LoginPage) IsLoaded(ctx context.Context) bool {
	return p.isVisibleWithin(ctx, LoginEmailInput, loginVisibleTimeout)
}

// Login submits username, then password when withPassword is set. An
// unknown username never reaches the password step; that is not an error,
// callers check ErrorMessage or the resulting URL.
func (p *LoginPage) Login(ctx context.Context, username, password string, withPassword bool) error {
	if err := p.Fill(ctx, LoginEmailInput, username); err != nil {
		return err
	}
	if err := p.Click(ctx, LoginNextButton); err != nil {
		return err
	}
	if !withPassword {
		return nil
	}

	if err := p.drv.WaitFor(ctx, LoginPasswordInput, StateVisible, passwordStepTimeout); err != nil {
		p.logger.Debug("password step not shown", "username", username, "error", err)
		return nil
	}
	if err := p.Fill(ctx, LoginPasswordInput, password); err != nil {
		return err
	}
	return p.Click(ctx, LoginSignInButton)
}

// ErrorMessage returns the visible alert text, or "".
func (p *LoginPage) ErrorMessage(ctx context.Context) string {
	if !p.isVisibleWithin(ctx, LoginErrorMessage, errorMessageTimeout) {
		return ""
	}
	text, err := p.Text(ctx, LoginErrorMessage)
	if err != nil {
		return ""
	}
	return text
}
