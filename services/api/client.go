// Package api wraps the remote REST API with typed request functions
// per resource plus the file-upload workflow. No other component makes
// HTTP calls of its own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tomeducation/admin/core"
	"github.com/tomeducation/admin/core/session"
)

type (
	// TokenSource exposes the session token read-only; the client
	// attaches it, it never mutates it.
	TokenSource interface {
		Token() string
	}

	Client struct {
		http    *http.Client
		baseURL string
		tokens  TokenSource
		log     core.Logger

		// onUnauthorized fires on any 401 response: a stale or revoked
		// token cannot be repaired client-side, so the session store
		// uses this hook to drop it.
		onUnauthorized func()
	}

	// APIError is any non-2xx response, carrying the server-provided
	// message when one was decodable.
	APIError struct {
		StatusCode int
		Message    string
	}
)

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed (%d)", e.StatusCode)
}

func NewClient(baseURL string, tokens TokenSource, log core.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: core.Conf.API.RequestTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		log:     log,
	}
}

// OnUnauthorized registers the implicit-logout hook.
func (c *Client) OnUnauthorized(hook func()) {
	c.onUnauthorized = hook
}

// SetTokenSource attaches the session's read-only token source. The
// client and the session store reference each other (the store logs in
// through the client, the client bears the store's token), so one side
// is wired after construction.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// Login authenticates and returns the bearer token plus the user
// profile. A non-2xx status signals invalid credentials.
func (c *Client) Login(ctx context.Context, name, password string) (string, session.User, error) {
	var out struct {
		Token string       `json:"token"`
		User  session.User `json:"user"`
	}
	in := map[string]string{"name": name, "password": password}
	if err := c.request(ctx, http.MethodPost, "/users/login", nil, in, &out); err != nil {
		return "", session.User{}, err
	}
	if out.Token == "" {
		return "", session.User{}, errors.New("malformed login response: missing token")
	}
	return out.Token, out.User, nil
}

func (c *Client) request(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding response body")
	}
	return nil
}

// do attaches the shared headers and sends the request. Every call
// carries a request id for tracing; authenticated calls carry the
// bearer token.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("X-Request-ID", uuid.New().String())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "sending request")
	}
	return resp, nil
}

// checkStatus converts non-2xx responses into *APIError and fires the
// implicit-logout hook on 401.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if raw, err := io.ReadAll(resp.Body); err == nil {
		if err := json.Unmarshal(raw, &payload); err == nil {
			if payload.Error != "" {
				apiErr.Message = payload.Error
			} else {
				apiErr.Message = payload.Message
			}
		}
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	return apiErr
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
