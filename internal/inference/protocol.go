package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubmissionRequest is one user-initiated analysis submission. Consumed once
// by Analyze; never mutated.
type SubmissionRequest struct {
	Image     []byte
	Filename  string
	Threshold float64 // confidence threshold, 0..1
}

type submitResponse struct {
	EventID string `json:"event_id"`
}

// Analyze runs the full two-phase protocol: submit the image, then poll the
// result channel until a terminal event arrives or the attempt budget runs
// out. The returned error, if any, carries a FailureKind so callers can
// distinguish timeout, explicit upstream failure and malformed payloads.
func (c *Client) Analyze(ctx context.Context, req SubmissionRequest) (*Result, error) {
	sid := uuid.New().String()
	start := time.Now()

	c.log.Info("inference.submit.start",
		"submission_id", sid,
		"filename", req.Filename,
		"image_bytes", len(req.Image),
		"threshold", req.Threshold,
	)

	token, err := c.submitImage(ctx, req)
	if err != nil {
		c.log.Error("inference.submit.failed", "submission_id", sid, "error", err)
		return nil, err
	}
	c.log.Info("inference.submit.ok", "submission_id", sid, "token", token)

	res, err := c.pollResult(ctx, sid, token)
	if err != nil {
		c.log.Error("inference.poll.failed",
			"submission_id", sid,
			"kind", KindOf(err),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	c.log.Info("inference.analyze.ok",
		"submission_id", sid,
		"detections", len(res.TechData.Detections),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// submitImage POSTs the encoded image and extracts the correlation token.
// A response without a token is a hard failure: there is nothing to poll.
func (c *Client) submitImage(ctx context.Context, req SubmissionRequest) (string, error) {
	body := map[string]any{
		"data": []any{imageDataURI(req.Image, req.Filename), req.Threshold},
	}
	raw, err := c.postJSON(ctx, c.cfg.SubmitPath, body)
	if err != nil {
		return "", err
	}

	var sr submitResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return "", newError(KindDecode, "submit response", err)
	}
	if sr.EventID == "" {
		return "", errorf(KindDecode, "submit response carries no event_id: %s", truncate(string(raw), 120))
	}
	return sr.EventID, nil
}

// pollResult GETs the result channel until a terminal event, an explicit
// upstream error, exhaustion of the attempt budget, or ctx cancellation.
// Transport failures on non-final attempts are retried; all other failures
// are terminal.
func (c *Client) pollResult(ctx context.Context, sid, token string) (*Result, error) {
	path := c.cfg.SubmitPath + "/" + token

	for attempt := 1; attempt <= c.cfg.MaxPollAttempts; attempt++ {
		body, err := c.getText(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt == c.cfg.MaxPollAttempts {
				return nil, newError(KindTimeout, "poll budget exhausted after transport failure", err)
			}
			c.log.Warn("inference.poll.transport_error", "submission_id", sid, "attempt", attempt, "error", err)
			if werr := c.waitInterval(ctx); werr != nil {
				return nil, werr
			}
			continue
		}

		terminal := false
		var res *Result
		var perr error
		for _, ev := range parseEventStream(body) {
			switch ev.kind {
			case eventComplete:
				res, perr = c.decodePayload(ev.data)
				terminal = true
			case eventError:
				msg := ev.data
				if msg == "" {
					msg = "upstream reported an error without detail"
				}
				perr = errorf(KindUpstream, "%s", msg)
				terminal = true
			case eventGenerating:
				c.log.Debug("inference.poll.generating", "submission_id", sid, "attempt", attempt)
			}
			if terminal {
				break
			}
		}
		if terminal {
			return res, perr
		}

		if attempt < c.cfg.MaxPollAttempts {
			if werr := c.waitInterval(ctx); werr != nil {
				return nil, werr
			}
		}
	}

	return nil, errorf(KindTimeout, "no terminal event after %d attempts", c.cfg.MaxPollAttempts)
}

// waitInterval sleeps the inter-attempt delay, aborting early when the
// caller cancels.
func (c *Client) waitInterval(ctx context.Context) error {
	t := time.NewTimer(c.cfg.PollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// imageDataURI encodes image bytes as a base64 data URI, guessing the mime
// type from the filename extension.
func imageDataURI(image []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	mt := mime.TypeByExtension(ext)
	if mt == "" {
		switch strings.TrimPrefix(ext, ".") {
		case "jpg", "jpeg":
			mt = "image/jpeg"
		case "png":
			mt = "image/png"
		default:
			mt = "application/octet-stream"
		}
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(image)
}
