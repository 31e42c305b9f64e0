// Package pipeline coordinates the two-phase workflow: preview computes an
// analysis without touching the system of record; commit registers an
// already-computed analysis and never re-runs inference.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dentascan/dentascan/internal/entity"
	"github.com/dentascan/dentascan/internal/inference"
	"github.com/dentascan/dentascan/internal/reconcile"
	"github.com/dentascan/dentascan/internal/record"
)

// Engine is the protocol surface the processor depends on.
type Engine interface {
	Analyze(ctx context.Context, req inference.SubmissionRequest) (*inference.Result, error)
}

// Registrar registers a reconciled analysis with the system of record.
type Registrar interface {
	Register(ctx context.Context, a *entity.Analysis) (string, error)
}

// Processor coordinates submit/poll/decode, reconciliation and commit.
type Processor struct {
	Logger     *slog.Logger
	Engine     Engine
	Reconciler *reconcile.Reconciler
	Records    Registrar
	Threshold  float64 // confidence threshold for submissions, 0..1
}

func NewProcessor(logger *slog.Logger, engine Engine, rec *reconcile.Reconciler, records Registrar, threshold float64) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = reconcile.NewReconciler(logger)
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 0.25
	}
	return &Processor{
		Logger:     logger,
		Engine:     engine,
		Reconciler: rec,
		Records:    records,
		Threshold:  threshold,
	}
}

// Preview runs the full protocol and returns a reconciled Analysis with
// Synced=false. The system of record is never contacted; no shared state is
// touched, so independent previews may run concurrently.
func (p *Processor) Preview(ctx context.Context, patientID string, image []byte, filename string) (*entity.Analysis, error) {
	analysisID := uuid.New().String()

	p.Logger.Info("pipeline.preview.start",
		"analysis_id", analysisID,
		"patient_id", patientID,
		"filename", filename,
		"threshold", p.Threshold,
	)

	res, err := p.Engine.Analyze(ctx, inference.SubmissionRequest{
		Image:     image,
		Filename:  filename,
		Threshold: p.Threshold,
	})
	if err != nil {
		p.Logger.Error("pipeline.preview.failed",
			"analysis_id", analysisID,
			"kind", inference.KindOf(err),
			"error", err,
		)
		return nil, err
	}

	a := p.Reconciler.Build(reconcile.BuildInput{
		AnalysisID:    analysisID,
		PatientID:     patientID,
		ImageFilename: filename,
		Threshold:     p.Threshold,
		Result:        res,
	})

	p.Logger.Info("pipeline.preview.ok",
		"analysis_id", a.ID,
		"teeth", a.TotalTeethDetected,
		"caries", a.TotalCariesDetected,
		"severity", a.Severity,
	)
	return a, nil
}

// Commit registers the analysis with the system of record and, on success,
// flips Synced and stores the server-assigned id. On failure the analysis is
// left untouched so the caller can retry the commit without re-running
// inference.
func (p *Processor) Commit(ctx context.Context, a *entity.Analysis) error {
	if a.Synced {
		p.Logger.Info("pipeline.commit.already_synced", "analysis_id", a.ID, "remote_id", a.RemoteID)
		return nil
	}

	remoteID, err := p.Records.Register(ctx, a)
	if err != nil {
		p.Logger.Error("pipeline.commit.failed", "analysis_id", a.ID, "error", err)
		return err
	}

	a.Synced = true
	a.RemoteID = remoteID
	p.Logger.Info("pipeline.commit.ok", "analysis_id", a.ID, "remote_id", remoteID)
	return nil
}

var (
	_ Engine    = (*inference.Client)(nil)
	_ Registrar = (*record.Client)(nil)
)
