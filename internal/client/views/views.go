// Package views implements the register and login forms of the client.
package views

import (
	"context"

	"github.com/atinyakov/MapKeeper/internal/models"
)

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(msg string)
}

// Form supplies the submitted email and password.
type Form interface {
	Credentials() (email, password string)
}

// Authenticator is the remote side of the forms.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (*models.AuthUser, error)
	SignIn(ctx context.Context, email, password string) (*models.AuthUser, error)
}

// Session receives the user after a successful submit.
type Session interface {
	Login(user *models.AuthUser) error
}

// Views wires the forms to the service and the auth context.
type Views struct {
	remote  Authenticator
	session Session
	form    Form
	alert   Alerter
}

// New returns the register and login views.
func New(remote Authenticator, session Session, form Form, alert Alerter) *Views {
	return &Views{remote: remote, session: session, form: form, alert: alert}
}

// Register submits the sign-up form. A new account is logged in immediately.
// On failure the literal error is alerted and nothing else changes.
func (v *Views) Register(ctx context.Context) bool {
	email, password := v.form.Credentials()
	return v.submit(v.remote.SignUp(ctx, email, password))
}

// Login submits the sign-in form.
func (v *Views) Login(ctx context.Context) bool {
	email, password := v.form.Credentials()
	return v.submit(v.remote.SignIn(ctx, email, password))
}

func (v *Views) submit(user *models.AuthUser, err error) bool {
	if err != nil {
		v.alert.Alert(err.Error())
		return false
	}
	if err := v.session.Login(user); err != nil {
		v.alert.Alert(err.Error())
		return false
	}
	return true
}
