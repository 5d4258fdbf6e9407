// Package remote is the client side of the marker service: auth calls and the
// locations table, plus the legacy static marker file.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/atinyakov/MapKeeper/internal/models"
)

const (
	apiSignUp    = "/api/auth/signup"
	apiSignIn    = "/api/auth/signin"
	apiSignOut   = "/api/auth/signout"
	apiLocations = "/api/locations"
	staticData   = "/data.json"
)

// Error is a non-2xx answer from the service. Its message is the literal
// response body, which is what the views show to the user.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}

// TokenSource returns the bearer token for authenticated calls, or "" when
// nobody is signed in.
type TokenSource func() string

// Client talks to one marker service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	token   TokenSource
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// New returns a client for baseURL sending apiKey on every request.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    http.DefaultClient,
		token:   func() string { return "" },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetTokenSource sets where bearer tokens come from.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.token = ts
}

// SignUp registers an account and returns it signed in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*models.AuthUser, error) {
	var user models.AuthUser
	err := c.do(ctx, http.MethodPost, apiSignUp, models.Credentials{Email: email, Password: password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SignIn exchanges credentials for a signed-in user.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.AuthUser, error) {
	var user models.AuthUser
	err := c.do(ctx, http.MethodPost, apiSignIn, models.Credentials{Email: email, Password: password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut revokes the current token's session.
func (c *Client) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, apiSignOut, nil, nil)
}

// ListLocations returns every row of the caller's locations table.
func (c *Client) ListLocations(ctx context.Context) ([]models.Location, error) {
	var out []models.Location
	if err := c.do(ctx, http.MethodGet, apiLocations, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertLocation inserts loc and returns the stored row with its id.
func (c *Client) InsertLocation(ctx context.Context, loc models.Location) (models.Location, error) {
	loc.ID = 0
	var out models.Location
	if err := c.do(ctx, http.MethodPost, apiLocations, loc, &out); err != nil {
		return models.Location{}, err
	}
	return out, nil
}

// UpdateLocation applies patch to the row with the given id.
func (c *Client) UpdateLocation(ctx context.Context, id int64, patch models.LocationPatch) (models.Location, error) {
	var out models.Location
	if err := c.do(ctx, http.MethodPatch, locationPath(id), patch, &out); err != nil {
		return models.Location{}, err
	}
	return out, nil
}

// DeleteLocation removes the row with the given id.
func (c *Client) DeleteLocation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, locationPath(id), nil, nil)
}

// FetchStaticMarkers downloads /data.json and migrates it to the canonical shape.
func (c *Client) FetchStaticMarkers(ctx context.Context) ([]models.Location, error) {
	var legacy []models.LegacyMarker
	if err := c.do(ctx, http.MethodGet, staticData, nil, &legacy); err != nil {
		return nil, err
	}
	return models.MigrateLegacy(legacy)
}

func locationPath(id int64) string {
	return apiLocations + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body)
		return &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
