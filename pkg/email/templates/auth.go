package templates

import (
	"time"

	"github.com/a-h/templ"
)

// VerifyEmailData feeds VerifyEmail.
type VerifyEmailData struct {
	ProductName string
	Link        string
}

func VerifyEmail(d VerifyEmailData) templ.Component {
	title := "Confirm your email address"
	return Layout(title, Group(
		Text("Welcome to "+d.ProductName+"!"),
		Text("Please confirm your email address to finish setting up your account."),
		PrimaryButton("Confirm email", d.Link),
		TextSecondary("If the button does not work, copy this link into your browser: "+d.Link),
		TextSecondary("If you did not create an account, you can ignore this email."),
	))
}

// ResetPasswordData feeds ResetPassword.
type ResetPasswordData struct {
	ProductName string
	Link        string
	ExpiresAt   time.Time
}

func ResetPassword(d ResetPasswordData) templ.Component {
	title := "Reset your password"
	parts := []templ.Component{
		Text("We received a request to reset the password for your " + d.ProductName + " account."),
		PrimaryButton("Choose a new password", d.Link),
		TextSecondary("If the button does not work, copy this link into your browser: " + d.Link),
	}
	if !d.ExpiresAt.IsZero() {
		parts = append(parts, TextSecondary("This link expires at "+d.ExpiresAt.UTC().Format("2006-01-02 15:04 UTC")+"."))
	}
	parts = append(parts, TextSecondary("If you did not ask for a reset, no action is needed and your password stays the same."))
	return Layout(title, Group(parts...))
}
