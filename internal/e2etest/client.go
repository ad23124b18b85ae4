package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/gorilla/websocket"
)

// Client talks to the game API as one visitor. It keeps the session cookie between requests so that
// every request plays the same game.
type Client struct {
	client *http.Client
	jar    *unsafeCookieJar
	url    string
}

// NewClient creates a client for the server at url.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client: &http.Client{Jar: jar},
		jar:    jar,
		url:    url,
	}, nil
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetJSON fetches a URL and decodes the JSON response into v. It returns the response status, v is
// decoded for every status with a JSON body.
func (c *Client) GetJSON(ctx context.Context, urlPath string, v any) (int, error) {
	var (
		err error
		req *http.Request
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
		return 0, errors.Wrap(err, "create request with context")
	}
	return c.doJSON(req, v)
}

// PostJSON posts body as JSON and decodes the JSON response into v.
func (c *Client) PostJSON(ctx context.Context, urlPath string, body any, v any) (int, error) {
	var (
		err     error
		req     *http.Request
		payload []byte
	)
	if payload, err = json.Marshal(body); err != nil {
		return 0, errors.Wrap(err, "marshal request body")
	}
	if req, err = c.newRequestWithContext(ctx, http.MethodPost, urlPath, bytes.NewReader(payload)); err != nil {
		return 0, errors.Wrap(err, "create request with context")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, v)
}

func (c *Client) doJSON(req *http.Request, v any) (int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") || v == nil {
		return resp.StatusCode, nil
	}
	if err = json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, errors.Wrap(err, "decode response", slog.Int("status", resp.StatusCode))
	}
	return resp.StatusCode, nil
}

// Stream opens a websocket carrying the session cookie of the client.
func (c *Client) Stream(ctx context.Context, urlPath string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 5 * time.Second, //nolint:mnd // 5 seconds
		Jar:              c.jar,
	}
	wsURL := "ws" + strings.TrimPrefix(c.url, "http") + urlPath
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, errors.Wrap(err, "dial websocket", slog.String("url", wsURL), slog.Int("status", status))
	}
	return conn, nil
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	if req, err = http.NewRequest(method, c.url+urlPath, body); err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return req.WithContext(ctx), nil
}
