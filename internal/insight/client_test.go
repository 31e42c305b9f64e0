package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dentascan/dentascan/constants"
	"github.com/dentascan/dentascan/internal/entity"
)

func sampleAnalysis() *entity.Analysis {
	return &entity.Analysis{
		ID:                  "an-1",
		TotalTeethDetected:  3,
		TotalCariesDetected: 2,
		ConfidenceScore:     0.7,
		Severity:            constants.SeverityHigh,
		Detections: []entity.ToothDetection{
			{Description: "Upper Right First Molar (16)", HasCaries: true, Confidence: 0.9},
		},
	}
}

func TestSummarize(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":" Two of three teeth show caries. "}]}}]}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gemini-2.0-flash"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	text, err := c.Summarize(context.Background(), sampleAnalysis())
	require.NoError(t, err)
	require.Equal(t, "Two of three teeth show caries.", text)
	require.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)

	contents := gotBody["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	prompt := parts[0].(map[string]any)["text"].(string)
	require.Contains(t, prompt, "Teeth detected: 3")
	require.Contains(t, prompt, "Upper Right First Molar (16): caries")
}

func TestSummarizeNoKey(t *testing.T) {
	c := NewClient(Config{APIKey: "", BaseURL: "http://unused.example"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.cfg.APIKey = "" // defeat any ambient env fallback
	_, err := c.Summarize(context.Background(), sampleAnalysis())
	require.Error(t, err)
}

func TestSummarizeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := c.Summarize(context.Background(), sampleAnalysis())
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestSummarizeNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := c.Summarize(context.Background(), sampleAnalysis())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no candidates")
}
