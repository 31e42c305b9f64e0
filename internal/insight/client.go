// Package insight produces a human-readable clinical summary for a completed
// analysis via a generative-language API. Plain request/response; failures
// here never affect the analysis itself.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentascan/dentascan/internal/entity"
)

// Summarize asks the model for a short clinical note about the analysis.
func (c *Client) Summarize(ctx context.Context, a *entity.Analysis) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("insight: api key not configured")
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": buildPrompt(a)}}},
		},
	}
	bs, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Info("insight.summarize.start", "req_id", rid, "analysis_id", a.ID, "model", c.cfg.Model)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("insight.summarize.send_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("insight.summarize.response_body_close_error", "req_id", rid, "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("insight status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var gr struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("decode insight response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in insight response")
	}

	text := strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text)
	c.log.Info("insight.summarize.ok", "req_id", rid, "analysis_id", a.ID, "chars", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}
