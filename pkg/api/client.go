// Package api is a client for the ICQ Bot API.
//
// Every endpoint is a thin typed wrapper around one HTTP call. Calls take a
// context, drop empty parameters before sending, and decode the JSON reply
// into a typed response. A reply with "ok": false, or a non-2xx status, is
// returned as *APIError.
//
// Example:
//
//	client, err := api.NewClient(token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := client.SendText(ctx, chatID, "Hello!", nil)
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/keepmind9/icqbot/internal/logger"
	"github.com/keepmind9/icqbot/pkg/constants"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Client issues authenticated calls against the Bot API
type Client struct {
	token      string
	baseURL    string
	parseMode  string
	timeout    time.Duration
	httpClient *http.Client
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL (self-hosted installations, tests)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithParseMode sets the default parse mode for outgoing text
func WithParseMode(mode string) Option {
	return func(c *Client) {
		c.parseMode = mode
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every call except GetEvents, whose deadline is derived
// from its poll time. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// NewClient creates a Bot API client for token
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	c := &Client{
		token:      token,
		baseURL:    constants.DefaultAPIURL,
		parseMode:  constants.DefaultParseMode,
		timeout:    constants.DefaultRequestTimeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	logger.WithFields(logrus.Fields{
		"token":    logger.MaskSecret(token),
		"base_url": c.baseURL,
	}).Debug("bot-api-client-created")

	return c, nil
}

// BaseURL returns the API base URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ParseMode returns the default parse mode
func (c *Client) ParseMode() string {
	return c.parseMode
}

// params collects query parameters, skipping empty values
type params url.Values

func newParams() params {
	return params(url.Values{})
}

func (p params) set(key, value string) {
	if value != "" {
		url.Values(p).Set(key, value)
	}
}

func (p params) add(key, value string) {
	if value != "" {
		url.Values(p).Add(key, value)
	}
}

func (p params) setBool(key string, value bool) {
	if value {
		url.Values(p).Set(key, "true")
	}
}

// setExplicitBool always sends the flag, for parameters where false is meaningful
func (p params) setExplicitBool(key string, value bool) {
	url.Values(p).Set(key, strconv.FormatBool(value))
}

func (p params) setInt(key string, value int64) {
	if value != 0 {
		url.Values(p).Set(key, strconv.FormatInt(value, 10))
	}
}

func (p params) setJSON(key string, value interface{}) error {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	switch string(data) {
	case "null", "[]", "{}", `""`:
		return nil
	}
	url.Values(p).Set(key, string(data))
	return nil
}

func (c *Client) endpoint(path string, p params) string {
	q := url.Values(p)
	q.Set(constants.APITokenParam, c.token)
	return c.baseURL + path + "?" + q.Encode()
}

// envelope is the part of every reply that reports success
type envelope struct {
	OK          *bool  `json:"ok"`
	Description string `json:"description"`
}

func (c *Client) get(ctx context.Context, path string, p params, out interface{}) error {
	return c.getWithin(ctx, c.timeout, path, p, out)
}

// getWithin issues a GET whose deadline is at most timeout away
func (c *Client) getWithin(ctx context.Context, timeout time.Duration, path string, p params, out interface{}) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, p), nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, p params, filePath string, out interface{}) error {
	f, err := os.Open(filePath)
	if err != nil {
		return errors.Wrap(err, "open upload")
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return errors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(part, f); err != nil {
		return errors.Wrap(err, "copy upload")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "close multipart")
	}

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, p), &body)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, path, out)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *Client) do(req *http.Request, path string, out interface{}) error {
	requestID := uuid.New().String()
	req.Header.Set(constants.RequestIDHeader, requestID)

	log := logger.WithFields(logrus.Fields{
		"method":     req.Method,
		"path":       path,
		"request_id": requestID,
	})
	log.Debug("bot-api-request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"body_len": len(data),
	}).Debug("bot-api-response")

	var env envelope
	decodeErr := json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Path: path, StatusCode: resp.StatusCode, Description: env.Description}
		if decodeErr != nil || apiErr.Description == "" {
			apiErr.Description = strings.TrimSpace(logger.Truncate(string(data)))
		}
		return apiErr
	}
	if decodeErr != nil {
		return errors.Wrap(decodeErr, "decode response")
	}
	if env.OK != nil && !*env.OK {
		return &APIError{Path: path, StatusCode: resp.StatusCode, Description: env.Description}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
