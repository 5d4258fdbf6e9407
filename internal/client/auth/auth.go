// Package auth holds the signed-in user of the client. The user lives in
// local storage under the "user" key, so it survives restarts.
package auth

import (
	"context"

	"github.com/atinyakov/MapKeeper/internal/client/router"
	"github.com/atinyakov/MapKeeper/internal/client/storage"
	"github.com/atinyakov/MapKeeper/internal/models"
	"go.uber.org/zap"
)

// UserKey is the local storage key of the current user.
const UserKey = "user"

// SignOuter revokes the remote session.
type SignOuter interface {
	SignOut(ctx context.Context) error
}

// Navigator moves the client to another route.
type Navigator interface {
	Navigate(path string) (string, error)
}

// Context is the application-level auth state shared by the views.
type Context struct {
	user   *storage.Value[models.AuthUser]
	remote SignOuter
	nav    Navigator
	log    *zap.Logger
}

// New returns a Context reading and writing the user in store.
func New(store *storage.LocalStorage, remote SignOuter, log *zap.Logger) *Context {
	return &Context{
		user:   storage.NewValue[models.AuthUser](store, UserKey),
		remote: remote,
		log:    log,
	}
}

// SetNavigator wires the router. Login and Logout navigate only when one is set.
func (c *Context) SetNavigator(nav Navigator) {
	c.nav = nav
}

// User returns the stored user, or nil when nobody is signed in.
func (c *Context) User() *models.AuthUser {
	u, ok := c.user.Get()
	if !ok {
		return nil
	}
	return &u
}

// Authenticated reports whether a user is stored. Token expiry is not checked.
func (c *Context) Authenticated() bool {
	return c.User() != nil
}

// Token returns the stored access token, or "".
func (c *Context) Token() string {
	if u := c.User(); u != nil {
		return u.AccessToken
	}
	return ""
}

// Login stores user and navigates to the map.
func (c *Context) Login(user *models.AuthUser) error {
	if err := c.user.Set(*user); err != nil {
		return err
	}
	c.navigate(router.Secret)
	return nil
}

// Logout signs out remotely and always clears the local user, then navigates
// to the login page. A remote failure is logged only.
func (c *Context) Logout(ctx context.Context) {
	if c.Authenticated() {
		if err := c.remote.SignOut(ctx); err != nil {
			c.log.Error("remote sign-out failed", zap.Error(err))
		}
	}
	if err := c.user.Clear(); err != nil {
		c.log.Error("failed to clear stored user", zap.Error(err))
	}
	c.navigate(router.Login)
}

func (c *Context) navigate(path string) {
	if c.nav == nil {
		return
	}
	if _, err := c.nav.Navigate(path); err != nil {
		c.log.Error("navigation failed", zap.String("path", path), zap.Error(err))
	}
}
