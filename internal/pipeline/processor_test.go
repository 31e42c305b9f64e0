package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dentascan/dentascan/internal/entity"
	"github.com/dentascan/dentascan/internal/inference"
	"github.com/dentascan/dentascan/internal/record"
)

type fakeEngine struct {
	res  *inference.Result
	err  error
	last inference.SubmissionRequest
}

func (f *fakeEngine) Analyze(_ context.Context, req inference.SubmissionRequest) (*inference.Result, error) {
	f.last = req
	return f.res, f.err
}

type fakeRegistrar struct {
	remoteID string
	err      error
	calls    int
	seen     *entity.Analysis
}

func (f *fakeRegistrar) Register(_ context.Context, a *entity.Analysis) (string, error) {
	f.calls++
	f.seen = a
	if f.err != nil {
		return "", f.err
	}
	return f.remoteID, nil
}

func quietProcessor(engine Engine, reg Registrar) *Processor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProcessor(logger, engine, nil, reg, 0.25)
}

func cavityResult() *inference.Result {
	name := "cavity"
	return &inference.Result{
		ImageRef: "https://scan.example/file=a.png",
		TechData: &inference.TechnicalData{Detections: []inference.RawDetection{
			{ClassName: &name, Confidence: 0.9, FDINumber: "16"},
		}},
		Recommendations: []string{"See a dentist"},
	}
}

func TestPreviewBuildsUnsyncedAnalysis(t *testing.T) {
	engine := &fakeEngine{res: cavityResult()}
	reg := &fakeRegistrar{remoteID: "srv-1"}
	p := quietProcessor(engine, reg)

	a, err := p.Preview(context.Background(), "pat-1", []byte("img"), "scan.jpg")
	require.NoError(t, err)
	require.False(t, a.Synced)
	require.Empty(t, a.RemoteID)
	require.Equal(t, "pat-1", a.PatientID)
	require.Equal(t, 1, a.TotalTeethDetected)
	require.Equal(t, 1, a.TotalCariesDetected)
	require.Equal(t, 0, reg.calls, "preview must not contact the system of record")

	require.Equal(t, inference.SubmissionRequest{Image: []byte("img"), Filename: "scan.jpg", Threshold: 0.25}, engine.last)
}

func TestPreviewPropagatesTypedFailures(t *testing.T) {
	engine := &fakeEngine{err: &inference.Error{Kind: inference.KindTimeout, Message: "no terminal event"}}
	p := quietProcessor(engine, &fakeRegistrar{})

	_, err := p.Preview(context.Background(), "pat-1", []byte("img"), "scan.jpg")
	require.Error(t, err)
	require.Equal(t, inference.KindTimeout, inference.KindOf(err))
}

func TestCommitMarksSynced(t *testing.T) {
	engine := &fakeEngine{res: cavityResult()}
	reg := &fakeRegistrar{remoteID: "srv-9"}
	p := quietProcessor(engine, reg)

	a, err := p.Preview(context.Background(), "pat-1", []byte("img"), "scan.jpg")
	require.NoError(t, err)

	require.NoError(t, p.Commit(context.Background(), a))
	require.True(t, a.Synced)
	require.Equal(t, "srv-9", a.RemoteID)
	require.Equal(t, 1, reg.calls)
	require.Same(t, a, reg.seen)
}

func TestCommitFailureLeavesAnalysisIntact(t *testing.T) {
	engine := &fakeEngine{res: cavityResult()}
	reg := &fakeRegistrar{err: &record.CommitError{Message: "registry down"}}
	p := quietProcessor(engine, reg)

	a, err := p.Preview(context.Background(), "pat-1", []byte("img"), "scan.jpg")
	require.NoError(t, err)

	err = p.Commit(context.Background(), a)
	var ce *record.CommitError
	require.ErrorAs(t, err, &ce)
	require.False(t, a.Synced)
	require.Empty(t, a.RemoteID)

	// Retry after the registry recovers; inference is never re-run.
	reg.err = nil
	reg.remoteID = "srv-2"
	require.NoError(t, p.Commit(context.Background(), a))
	require.True(t, a.Synced)
	require.Equal(t, "srv-2", a.RemoteID)
}

func TestCommitIsIdempotentOnceSynced(t *testing.T) {
	engine := &fakeEngine{res: cavityResult()}
	reg := &fakeRegistrar{remoteID: "srv-3"}
	p := quietProcessor(engine, reg)

	a, err := p.Preview(context.Background(), "pat-1", []byte("img"), "scan.jpg")
	require.NoError(t, err)
	require.NoError(t, p.Commit(context.Background(), a))
	require.NoError(t, p.Commit(context.Background(), a))
	require.Equal(t, 1, reg.calls, "a synced analysis is not re-registered")
}

func TestNewProcessorThresholdDefault(t *testing.T) {
	p := NewProcessor(nil, &fakeEngine{}, nil, &fakeRegistrar{}, 0)
	require.InDelta(t, 0.25, p.Threshold, 1e-9)

	p = NewProcessor(nil, &fakeEngine{}, nil, &fakeRegistrar{}, 1.5)
	require.InDelta(t, 0.25, p.Threshold, 1e-9)
}

func TestPreviewErrorIsNotWrappedAway(t *testing.T) {
	base := errors.New("socket closed")
	engine := &fakeEngine{err: &inference.Error{Kind: inference.KindTransport, Message: "post /x", Cause: base}}
	p := quietProcessor(engine, &fakeRegistrar{})

	_, err := p.Preview(context.Background(), "pat-1", []byte("img"), "scan.jpg")
	require.ErrorIs(t, err, base)
}
