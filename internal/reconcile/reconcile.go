// Package reconcile turns raw upstream detection records into the typed
// Analysis aggregate, resolving the conflicting classification signals the
// inference service is known to emit.
package reconcile

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dentascan/dentascan/constants"
	"github.com/dentascan/dentascan/internal/entity"
	"github.com/dentascan/dentascan/internal/inference"
)

// Class codes as the upstream defines them.
const (
	classCaries  = 0
	classHealthy = 1
)

type Reconciler struct {
	log *slog.Logger
}

func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{log: logger}
}

// BuildInput carries everything the reconciler needs for one analysis.
type BuildInput struct {
	AnalysisID    string
	PatientID     string
	ImageFilename string
	Threshold     float64
	Result        *inference.Result
}

// Build reconciles a decoded inference result into an Analysis.
// Totals come from the upstream summary when present and are recomputed from
// the detection list otherwise; the caries total never exceeds the teeth
// total.
func (r *Reconciler) Build(in BuildInput) *entity.Analysis {
	td := in.Result.TechData

	detections := make([]entity.ToothDetection, 0, len(td.Detections))
	cariesFromList := 0
	confidenceSum := 0.0
	for i, raw := range td.Detections {
		det := reconcileDetection(in.AnalysisID, i, raw)
		if det.HasCaries {
			cariesFromList++
		}
		confidenceSum += det.Confidence
		detections = append(detections, det)
	}

	teeth := len(detections)
	if td.TeethCount != nil {
		teeth = *td.TeethCount
	}
	caries := cariesFromList
	if td.CavityCount != nil {
		caries = *td.CavityCount
	}
	if caries > teeth {
		r.log.Warn("reconcile.summary_inconsistent",
			"analysis_id", in.AnalysisID, "teeth", teeth, "caries", caries)
		caries = teeth
	}

	confidence := 0.0
	if td.AverageConfidence != nil {
		confidence = *td.AverageConfidence
	} else if len(detections) > 0 {
		confidence = confidenceSum / float64(len(detections))
	}
	confidence = clamp01(confidence)

	a := &entity.Analysis{
		ID:                  in.AnalysisID,
		PatientID:           in.PatientID,
		ImageRef:            in.Result.ImageRef,
		ImageFilename:       in.ImageFilename,
		ConfidenceThreshold: in.Threshold,
		CreatedAt:           time.Now().UTC(),
		Status:              constants.StatusCompleted,
		TotalTeethDetected:  teeth,
		TotalCariesDetected: caries,
		ConfidenceScore:     confidence,
		Detections:          detections,
		Recommendations:     in.Result.Recommendations,
		Synced:              false,
	}
	a.Severity = constants.ClassifySeverity(a.CariesPercent())

	r.log.Info("reconcile.ok",
		"analysis_id", a.ID,
		"teeth", a.TotalTeethDetected,
		"caries", a.TotalCariesDetected,
		"confidence", a.ConfidenceScore,
		"severity", a.Severity,
	)
	return a
}

func reconcileDetection(analysisID string, ordinal int, raw inference.RawDetection) entity.ToothDetection {
	fdi := raw.FDINumber.Int()
	box := entity.BoundingBox{}
	if len(raw.BBox) == 4 {
		box = entity.BoundingBox{X: raw.BBox[0], Y: raw.BBox[1], Width: raw.BBox[2], Height: raw.BBox[3]}
	}
	quadrant := constants.QuadrantOf(fdi)
	position := constants.PositionOf(fdi)
	return entity.ToothDetection{
		ID:          fmt.Sprintf("%s-%d", analysisID, ordinal),
		FDINumber:   fdi,
		HasCaries:   arbitrateClass(raw.ClassName, raw.ClassID) == classCaries,
		Confidence:  clamp01(raw.Confidence),
		Box:         box,
		Quadrant:    quadrant,
		Position:    position,
		ToothName:   constants.ToothName(position),
		Description: constants.DescribeTooth(fdi),
	}
}

// arbitrateClass resolves the categorical label against the numeric class
// code. The label wins whenever it is present and unambiguous, because the
// numeric code is known to be wrong at times. This precedence is a pinned
// business rule; do not invert it.
func arbitrateClass(className *string, classID *int) int {
	if className != nil && *className != "null" {
		name := strings.ToLower(*className)
		switch {
		case strings.Contains(name, "normal"), strings.Contains(name, "healthy"):
			return classHealthy
		case strings.Contains(name, "cavity"), strings.Contains(name, "caries"):
			return classCaries
		}
		if classID != nil {
			return *classID
		}
		return classCaries
	}
	if classID != nil {
		return *classID
	}
	// Neither signal present: default to caries, the conservative choice.
	return classCaries
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
