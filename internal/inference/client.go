package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client talks to the inference service. Safe for concurrent use; every
// exported call is self-contained and shares only the HTTP connection pools.
type Client struct {
	cfg    Config
	submit *http.Client // short timeout: the handshake is quick
	poll   *http.Client // long timeout: inference is slow
	log    *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		submit: &http.Client{Timeout: cfg.SubmitTimeout},
		poll:   &http.Client{Timeout: cfg.PollTimeout},
		log:    logger,
	}
}

// postJSON sends body to path and returns the raw response bytes.
// Non-2xx responses surface as transport errors carrying status and body;
// retrying is the caller's decision, never done here.
func (c *Client) postJSON(ctx context.Context, path string, body any) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, newError(KindTransport, "encode request body", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, newError(KindTransport, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("inference.http.request",
		"req_id", reqID,
		"method", http.MethodPost,
		"url", url,
		"content_length", len(bs),
	)

	resp, err := c.submit.Do(req)
	if err != nil {
		c.log.Debug("inference.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, newError(KindTransport, "post "+path, err)
	}
	defer c.closeBody(resp.Body, reqID)

	raw, _ := io.ReadAll(resp.Body)

	c.log.Debug("inference.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, errorf(KindTransport, "post %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

// getText fetches path and returns the body as text.
func (c *Client) getText(ctx context.Context, path string) (string, error) {
	reqID := uuid.New().String()
	start := time.Now()

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", newError(KindTransport, "build request", err)
	}

	c.log.Debug("inference.http.request", "req_id", reqID, "method", http.MethodGet, "url", url)

	resp, err := c.poll.Do(req)
	if err != nil {
		c.log.Debug("inference.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", newError(KindTransport, "get "+path, err)
	}
	defer c.closeBody(resp.Body, reqID)

	raw, _ := io.ReadAll(resp.Body)

	c.log.Debug("inference.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return "", errorf(KindTransport, "get %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return string(raw), nil
}

func (c *Client) closeBody(body io.ReadCloser, reqID string) {
	if err := body.Close(); err != nil {
		c.log.Warn("inference.http.response_body_close_error", "req_id", reqID, "error", err)
	}
}
