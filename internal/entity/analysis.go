package entity

import (
	"time"

	"github.com/dentascan/dentascan/constants"
)

// Analysis is the aggregate produced by one completed submission.
// Built once by the reconciler; after that only the orchestrator mutates it,
// and only to flip Synced / set RemoteID after a successful commit.
type Analysis struct {
	ID                  string                   `json:"id"`
	PatientID           string                   `json:"patient_id"`
	ImageRef            string                   `json:"image_ref"`
	ImageFilename       string                   `json:"image_filename"`
	ConfidenceThreshold float64                  `json:"confidence_threshold"`
	CreatedAt           time.Time                `json:"created_at"`
	Status              constants.AnalysisStatus `json:"status"`
	TotalTeethDetected  int                      `json:"total_teeth_detected"`
	TotalCariesDetected int                      `json:"total_caries_detected"`
	ConfidenceScore     float64                  `json:"confidence_score"`
	Severity            constants.Severity       `json:"severity"`
	Detections          []ToothDetection         `json:"detections"`
	Recommendations     []string                 `json:"recommendations,omitempty"`
	Notes               string                   `json:"notes,omitempty"`
	Synced              bool                     `json:"synced"`
	RemoteID            string                   `json:"remote_id,omitempty"` // server-assigned id, set on commit
}

// HealthyTeethCount derives the healthy count from the totals.
func (a *Analysis) HealthyTeethCount() int {
	return a.TotalTeethDetected - a.TotalCariesDetected
}

// CariesPercent returns the share of carious teeth in percent,
// 0.0 when no teeth were detected.
func (a *Analysis) CariesPercent() float64 {
	if a.TotalTeethDetected == 0 {
		return 0.0
	}
	return float64(a.TotalCariesDetected) / float64(a.TotalTeethDetected) * 100
}
