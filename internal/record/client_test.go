package record

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

	"github.com/dentascan/dentascan/internal/entity"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleAnalysis() *entity.Analysis {
	return &entity.Analysis{
		ID:                  "an-1",
		PatientID:           "pat-1",
		ImageFilename:       "scan.jpg",
		ConfidenceThreshold: 0.25,
		TotalTeethDetected:  2,
		TotalCariesDetected: 1,
		ConfidenceScore:     0.85,
		Detections: []entity.ToothDetection{
			{ID: "an-1-0", FDINumber: 16, HasCaries: true, Confidence: 0.9, Box: entity.BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}},
			{ID: "an-1-1", FDINumber: 26, HasCaries: false, Confidence: 0.8},
		},
	}
}

func TestRegisterSendsReconciledShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/analyses", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"success":true,"analysis_id":"srv-42"}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL}, quietLogger())
	remoteID, err := c.Register(context.Background(), sampleAnalysis())
	require.NoError(t, err)
	require.Equal(t, "srv-42", remoteID)

	require.Equal(t, "pat-1", got["patient_id"])
	require.Equal(t, "scan.jpg", got["image_filename"])
	require.InDelta(t, 0.25, got["confidence_threshold"].(float64), 1e-9)
	dets := got["detections"].([]any)
	require.Len(t, dets, 2)
	first := dets[0].(map[string]any)
	require.Equal(t, float64(16), first["fdi_number"])
	require.Equal(t, true, first["has_caries"])
	require.Equal(t, []any{1.0, 2.0, 3.0, 4.0}, first["bbox"])
}

func TestRegisterRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnprocessableEntity)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL}, quietLogger())
	_, err := c.Register(context.Background(), sampleAnalysis())
	require.Error(t, err)
	var ce *CommitError
	require.ErrorAs(t, err, &ce)
	require.Contains(t, ce.Message, "422")
}

func TestRegisterSuccessFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"error":"duplicate analysis"}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL}, quietLogger())
	_, err := c.Register(context.Background(), sampleAnalysis())
	var ce *CommitError
	require.ErrorAs(t, err, &ce)
	require.Contains(t, ce.Message, "duplicate")
}
