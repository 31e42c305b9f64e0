// Package record registers completed analyses with the system of record.
// It only ever sees the reconciled Analysis; nothing here re-runs inference.
package record

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentascan/dentascan/internal/entity"
)

// CommitError means the system of record rejected or failed the
// registration. The caller keeps its Analysis and may retry the commit;
// retrying never re-triggers inference.
type CommitError struct {
	Message string
	Cause   error
}

func (e *CommitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("commit: %s: %v", e.Message, e.Cause)
	}
	return "commit: " + e.Message
}

func (e *CommitError) Unwrap() error {
	return e.Cause
}

// Config for the system-of-record client.
type Config struct {
	BaseURL string        // if empty, falls back to env RECORD_API_BASE_URL
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("RECORD_API_BASE_URL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000/api/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

// registration is the wire shape the system of record expects. Built from
// the reconciled Analysis, never from the raw protocol payload.
type registration struct {
	PatientID           string                `json:"patient_id"`
	ImageFilename       string                `json:"image_filename"`
	ConfidenceThreshold float64               `json:"confidence_threshold"`
	Detections          []registeredDetection `json:"detections"`
	TeethCount          int                   `json:"teeth_count"`
	CariesCount         int                   `json:"caries_count"`
	ConfidenceScore     float64               `json:"confidence_score"`
}

type registeredDetection struct {
	FDINumber  int       `json:"fdi_number"`
	HasCaries  bool      `json:"has_caries"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"`
}

type registrationResponse struct {
	Success    bool   `json:"success"`
	AnalysisID string `json:"analysis_id"`
	Error      string `json:"error,omitempty"`
}

// Register submits the analysis and returns the server-assigned id.
func (c *Client) Register(ctx context.Context, a *entity.Analysis) (string, error) {
	reqID := uuid.New().String()
	start := time.Now()

	payload := registration{
		PatientID:           a.PatientID,
		ImageFilename:       a.ImageFilename,
		ConfidenceThreshold: a.ConfidenceThreshold,
		Detections:          make([]registeredDetection, 0, len(a.Detections)),
		TeethCount:          a.TotalTeethDetected,
		CariesCount:         a.TotalCariesDetected,
		ConfidenceScore:     a.ConfidenceScore,
	}
	for _, d := range a.Detections {
		payload.Detections = append(payload.Detections, registeredDetection{
			FDINumber:  d.FDINumber,
			HasCaries:  d.HasCaries,
			Confidence: d.Confidence,
			BBox:       []float64{d.Box.X, d.Box.Y, d.Box.Width, d.Box.Height},
		})
	}

	bs, err := json.Marshal(payload)
	if err != nil {
		return "", &CommitError{Message: "encode registration", Cause: err}
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/analyses"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return "", &CommitError{Message: "build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Info("record.register.start",
		"req_id", reqID,
		"analysis_id", a.ID,
		"patient_id", a.PatientID,
		"detections", len(payload.Detections),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("record.register.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", &CommitError{Message: "post registration", Cause: err}
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("record.register.response_body_close_error", "req_id", reqID, "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		c.log.Error("record.register.rejected", "req_id", reqID, "status", resp.StatusCode, "elapsed_ms", time.Since(start).Milliseconds())
		return "", &CommitError{Message: fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))}
	}

	var rr registrationResponse
	if err := json.Unmarshal(raw, &rr); err != nil {
		return "", &CommitError{Message: "decode registration response", Cause: err}
	}
	if !rr.Success {
		msg := rr.Error
		if msg == "" {
			msg = "registration not accepted"
		}
		return "", &CommitError{Message: msg}
	}

	c.log.Info("record.register.ok",
		"req_id", reqID,
		"analysis_id", a.ID,
		"remote_id", rr.AnalysisID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rr.AnalysisID, nil
}
