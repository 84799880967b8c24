package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-finance-client/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a per-request id that ties client and backend logs together.
const RequestIDHeader = "X-Request-ID"

// Client sends requests to the backend, attaching the stored bearer token.
// Every call is sent exactly once; retrying is left to the user.
type Client struct {
	baseURL    string
	sessions   sessions.Repo
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client, e.g. to add a timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, sessionRepo sessions.Repo, options ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		sessions:   sessionRepo,
		httpClient: &http.Client{},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// CallOption adjusts a single call.
type CallOption func(*callSettings)

type callSettings struct {
	withoutAuth bool
}

// WithoutAuth sends the request without the stored bearer token, for
// endpoints such as login that take credentials in the body.
func WithoutAuth() CallOption {
	return func(s *callSettings) {
		s.withoutAuth = true
	}
}

// Call sends body (when non-nil) as JSON and returns the raw JSON response.
// Backend and transport failures are returned as *APIError.
func (c *Client) Call(ctx context.Context, method, path string, body any, options ...CallOption) (json.RawMessage, error) {
	var settings callSettings
	for _, opt := range options {
		opt(&settings)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Call] encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Call] build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.New().String()
	req.Header.Set(RequestIDHeader, requestID)
	logger := log.With().Str("request_id", requestID).Str("method", method).Str("path", path).Logger()

	var session sessions.Session
	if !settings.withoutAuth {
		session, err = c.sessions.Read()
		if err != nil {
			// An unreadable store is the same as no session; the backend decides.
			logger.Warn().Err(err).Msg("Failed to read session, sending without credentials")
			session = sessions.Session{}
		}
	}
	withToken := session.Authenticated()
	if withToken {
		(&oauth2.Token{AccessToken: session.Token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Err(err).Msg("Request failed without a response")
		return nil, &APIError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Err(err).Msg("Failed to read response body")
		return nil, &APIError{Kind: KindNetwork, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Kind: KindBackend, Status: resp.StatusCode, Detail: extractDetail(data)}
		if resp.StatusCode == http.StatusUnauthorized && withToken {
			apiErr.Kind = KindSessionExpired
		}
		logger.Warn().Int("status", resp.StatusCode).Str("kind", string(apiErr.Kind)).Str("detail", apiErr.Detail).Msg("Backend returned an error")
		return nil, apiErr
	}

	logger.Debug().Int("status", resp.StatusCode).Msg("Request completed")
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(data), nil
}

// CallJSON is Call followed by decoding the response into out (when non-nil).
func (c *Client) CallJSON(ctx context.Context, method, path string, body, out any, options ...CallOption) error {
	raw, err := c.Call(ctx, method, path, body, options...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Kind: KindBackend, Status: http.StatusOK, Err: errors.Wrap(err, "decode response")}
	}
	return nil
}
