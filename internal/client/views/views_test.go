package views

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atinyakov/MapKeeper/internal/client/auth"
	"github.com/atinyakov/MapKeeper/internal/client/router"
	"github.com/atinyakov/MapKeeper/internal/client/storage"
	"github.com/atinyakov/MapKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuthenticator struct {
	user *models.AuthUser
	err  error
	got  [2]string
}

func (f *fakeAuthenticator) SignUp(ctx context.Context, email, password string) (*models.AuthUser, error) {
	f.got = [2]string{email, password}
	return f.user, f.err
}

func (f *fakeAuthenticator) SignIn(ctx context.Context, email, password string) (*models.AuthUser, error) {
	f.got = [2]string{email, password}
	return f.user, f.err
}

type fixedForm struct{ email, password string }

func (f fixedForm) Credentials() (string, string) { return f.email, f.password }

type recordingAlerter struct{ msgs []string }

func (r *recordingAlerter) Alert(msg string) { r.msgs = append(r.msgs, msg) }

type noSignOut struct{}

func (noSignOut) SignOut(ctx context.Context) error { return nil }

func setup(t *testing.T, remote *fakeAuthenticator) (*Views, *auth.Context, *router.Router, *recordingAlerter) {
	t.Helper()
	ac := auth.New(storage.New(filepath.Join(t.TempDir(), "s.json")), noSignOut{}, zap.NewNop())
	r := router.New(ac.Authenticated, zap.NewNop())
	ac.SetNavigator(r)
	alerts := &recordingAlerter{}
	return New(remote, ac, fixedForm{"a@b.c", "pw"}, alerts), ac, r, alerts
}

func TestLogin_InvalidPassword(t *testing.T) {
	remote := &fakeAuthenticator{err: errors.New("invalid email or password")}
	v, ac, r, alerts := setup(t, remote)
	_, _ = r.Navigate(router.Login)

	ok := v.Login(context.Background())

	assert.False(t, ok)
	assert.Equal(t, []string{"invalid email or password"}, alerts.msgs)
	assert.Nil(t, ac.User())
	assert.Equal(t, router.Login, r.Current())
}

func TestRegister_LogsIn(t *testing.T) {
	remote := &fakeAuthenticator{user: &models.AuthUser{ID: "u1", AccessToken: "t"}}
	v, ac, r, alerts := setup(t, remote)

	require.True(t, v.Register(context.Background()))
	assert.Empty(t, alerts.msgs)
	assert.Equal(t, [2]string{"a@b.c", "pw"}, remote.got)
	require.NotNil(t, ac.User())
	assert.Equal(t, router.Secret, r.Current())
}

func TestTerminal(t *testing.T) {
	in := bufio.NewScanner(strings.NewReader("  me@x.y \nsecret\n\n"))
	var out bytes.Buffer
	term := NewTerminal(in, &out)

	email, password := term.Credentials()
	assert.Equal(t, "me@x.y", email)
	assert.Equal(t, "secret", password)

	term.Alert("boom")
	assert.Contains(t, out.String(), "!! boom")
	assert.False(t, in.Scan(), "alert consumed the Enter line")
}
