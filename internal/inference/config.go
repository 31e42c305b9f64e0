package inference

import (
	"os"
	"time"
)

// Config for the inference service client.
type Config struct {
	BaseURL         string        // if empty, falls back to env SCAN_API_BASE_URL
	SubmitPath      string        // default /gradio_api/call/predict
	FilePrefix      string        // default /gradio_api/file=
	SubmitTimeout   time.Duration // short profile: the handshake is fast
	PollTimeout     time.Duration // long profile: a poll response may be held open
	PollInterval    time.Duration // delay between poll attempts
	MaxPollAttempts int
}

const defaultBaseURL = "https://dentascan-caries.hf.space"

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = os.Getenv("SCAN_API_BASE_URL")
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.SubmitPath == "" {
		c.SubmitPath = "/gradio_api/call/predict"
	}
	if c.FilePrefix == "" {
		c.FilePrefix = "/gradio_api/file="
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = 30 * time.Second
	}
	if c.PollTimeout <= 0 {
		// Must cover a poll response the service holds open while inference
		// runs; the attempt budget already bounds total wall-clock time.
		c.PollTimeout = 150 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.MaxPollAttempts <= 0 {
		c.MaxPollAttempts = 60
	}
	return c
}
