// Package botclient calls the bot HTTP API.
package botclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/cheese-heuristic-bot/pkg/chessdto"
)

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDialer replaces the network dialer, e.g. with an in-memory listener.
func WithDialer(dial fasthttp.DialFunc) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 30 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 30 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, fasthttp.MethodGet, "/healthz", nil, nil, true)
}

// Move asks for one bot move. Moves are not stored server side.
func (c *Client) Move(ctx context.Context, req chessdto.MoveRequest) (*chessdto.MoveResponse, error) {
	var resp chessdto.MoveResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/v1/move", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) StartGame(ctx context.Context, req chessdto.StartGameRequest) (*chessdto.StartGameResponse, error) {
	var resp chessdto.StartGameResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/v1/games", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Game(ctx context.Context, id string) (*chessdto.GameState, error) {
	var resp chessdto.GameState
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/v1/games/"+url.PathEscape(id), nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Play(ctx context.Context, id, move string) (*chessdto.PlayResponse, error) {
	var resp chessdto.PlayResponse
	path := "/v1/games/" + url.PathEscape(id) + "/play"
	if err := c.doJSON(ctx, fasthttp.MethodPost, path, chessdto.PlayRequest{Move: move}, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RenderFEN fetches a PNG of fen.
func (c *Client) RenderFEN(ctx context.Context, fen string) ([]byte, error) {
	var png []byte
	err := c.do(ctx, fasthttp.MethodGet, "/v1/render?fen="+url.QueryEscape(fen), nil, func(body []byte) error {
		png = append([]byte(nil), body...)
		return nil
	}, true)
	return png, err
}

// APIError is a non-2xx reply carrying the server's DomainError.
type APIError struct {
	Status int
	chessdto.DomainError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bot api error: status=%d code=%s: %s", e.Status, e.Code, e.DomainError.Error())
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, retry bool) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}
	var decode func([]byte) error
	if out != nil {
		decode = func(body []byte) error {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}
	}
	return c.do(ctx, method, path, payload, decode, retry)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, decode func([]byte) error, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if payload != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 0 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err == nil {
			status := resp.StatusCode()
			if status >= 200 && status < 300 {
				if decode != nil {
					return decode(resp.Body())
				}
				return nil
			}
			err = apiError(status, resp.Body())
			if !shouldRetryStatus(status) {
				return err
			}
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			return lastErr
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func apiError(status int, body []byte) error {
	var wrapped chessdto.ErrorResponse
	if err := json.Unmarshal(body, &wrapped); err != nil || wrapped.Error.Code == "" {
		return &APIError{Status: status, DomainError: chessdto.DomainError{Code: chessdto.CodeInternal, Message: truncate(string(body), 512)}}
	}
	return &APIError{Status: status, DomainError: wrapped.Error}
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
