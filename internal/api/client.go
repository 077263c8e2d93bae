// internal/api/client.go
//
// HTTP client for the remote reservation API.
//
// Context
// -------
// The site never stores accounts itself.  Registration, duplicate-email
// checks, sign-in, and profile lookups are JSON round trips to the
// reservation API configured under `api.base_url`:
//
//	POST /register/check-email  {email}                      → {exists}
//	POST /register              {fname,lname,email,password} → {status,message}
//	POST /login                 {email,password}             → {status,message,accessToken}
//	GET  /profile               Authorization: Bearer <tok>  → {status,message,user}
//
// Failure policy
// --------------
//   - Anything that prevents a decoded body from reaching the caller is a
//     *NetworkError: dial or read failures, context cancellation, bodies that
//     are not the expected JSON, and (for the existence check only) non-2xx
//     status codes.
//   - For the other endpoints the `status` field is authoritative, whatever
//     the HTTP status code; any value other than "ok" is a domain-level
//     rejection the caller surfaces verbatim.
//
// Notes
// -----
//   - No caller-side timeout unless `api.timeout` is set.  The remote
//     server's own limits govern latency.
//   - Concurrent profile lookups for the same token share one request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/sync/singleflight"

	"github.com/baraliresort/reserve/internal/logger"
	"github.com/baraliresort/reserve/internal/metrics"
)

// StatusOK is the only `status` value that signals success.
const StatusOK = "ok"

// StatusForbidden is returned by /profile for missing or expired tokens.
const StatusForbidden = "forbidden"

// Endpoint paths, relative to the base URL.
const (
	PathCheckEmail = "/register/check-email"
	PathRegister   = "/register"
	PathLogin      = "/login"
	PathProfile    = "/profile"
)

const maxBody = 4 << 20 // profile images are inlined as base64

/*──────────────────────────── wire types ───────────────────────────────────*/

// Account is the create-account request body.
type Account struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Credentials is the sign-in request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Result is the common response envelope.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the server accepted the operation.
func (r Result) OK() bool { return r.Status == StatusOK }

// LoginResult is the /login response.
type LoginResult struct {
	Result
	AccessToken string `json:"accessToken,omitempty"`
}

// UserID accepts both JSON numbers and strings.
type UserID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *UserID) UnmarshalJSON(b []byte) error {
	*id = UserID(strings.Trim(string(b), `"`))
	if *id == "null" {
		*id = ""
	}
	return nil
}

// User is the profile returned by /profile.  Image is a base64 JPEG.
type User struct {
	ID        UserID `json:"id"`
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Image     string `json:"image"`
}

// ProfileResult is the /profile response.
type ProfileResult struct {
	Result
	User User `json:"user"`
}

// Forbidden reports whether the server refused the token.
func (p ProfileResult) Forbidden() bool { return p.Status == StatusForbidden }

type checkEmailRequest struct {
	Email string `json:"email"`
}

type checkEmailResponse struct {
	Exists *bool `json:"exists"`
}

/*──────────────────────────── client ───────────────────────────────────────*/

// Client is safe for concurrent use.  Construct with New.
type Client struct {
	base *url.URL
	hc   *http.Client
	sfg  singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default transport (tests, TLS pinning).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout sets a caller-side deadline for every call.  Zero keeps the
// default of no client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

// New validates baseURL and returns a Client backed by a pooled transport.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q: scheme and host required", baseURL)
	}

	c := &Client{base: u, hc: cleanhttp.DefaultPooledClient()}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// EmailExists asks the API whether email is already registered.
func (c *Client) EmailExists(ctx context.Context, email string) (bool, error) {
	var out checkEmailResponse
	if err := c.do(ctx, http.MethodPost, PathCheckEmail, "", checkEmailRequest{Email: email}, &out, true); err != nil {
		return false, err
	}
	if out.Exists == nil {
		return false, &NetworkError{
			Op:  http.MethodPost + " " + PathCheckEmail,
			Err: fmt.Errorf("%w: missing \"exists\"", errMalformed),
		}
	}
	return *out.Exists, nil
}

// Register sends the create-account request.
func (c *Client) Register(ctx context.Context, acct Account) (Result, error) {
	var out Result
	err := c.do(ctx, http.MethodPost, PathRegister, "", acct, &out, false)
	return out, err
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, cred Credentials) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, PathLogin, "", cred, &out, false)
	return out, err
}

// Profile fetches the signed-in user's profile.  Concurrent calls with the
// same token share one round trip; the shared call is detached from any
// single caller's cancellation.
func (c *Client) Profile(ctx context.Context, token string) (ProfileResult, error) {
	v, err, shared := c.sfg.Do("profile:"+token, func() (any, error) {
		var out ProfileResult
		err := c.do(context.WithoutCancel(ctx), http.MethodGet, PathProfile, token, nil, &out, false)
		return out, err
	})
	if shared {
		logger.FromContext(ctx).Debugw("profile lookup coalesced")
	}
	if err != nil {
		return ProfileResult{}, err
	}
	return v.(ProfileResult), nil
}

/*──────────────────────────── transport ────────────────────────────────────*/

// do performs one JSON round trip.  strict rejects non-2xx responses before
// decoding.
func (c *Client) do(ctx context.Context, method, endpoint, token string, in, out any, strict bool) error {
	op := method + " " + endpoint
	start := time.Now()
	result := "ok"
	defer func() {
		metrics.APIRequestDuration.WithLabelValues(endpoint, result).Observe(time.Since(start).Seconds())
	}()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			result = "encode"
			return &NetworkError{Op: op, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(endpoint).String(), body)
	if err != nil {
		result = "encode"
		return &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		result = "transport"
		if errors.Is(err, context.Canceled) {
			result = "canceled"
		}
		return &NetworkError{Op: op, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		_ = resp.Body.Close()
	}()

	if strict && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		result = "status"
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: errStatus}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		result = "malformed"
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%w: %v", errMalformed, err)}
	}

	logger.FromContext(ctx).Debugw("reservation api call",
		"op", op,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)
	return nil
}
