package constants

// Severity grades an analysis by the share of carious teeth.
type Severity string

const (
	SeverityNone     Severity = "NONE"
	SeverityLow      Severity = "LOW"
	SeverityModerate Severity = "MODERATE"
	SeverityHigh     Severity = "HIGH"
	SeveritySevere   Severity = "SEVERE"
)

// ClassifySeverity maps a caries percentage (0..100) to a severity grade.
// Thresholds are fixed: 0, <15, <30, <50, >=50.
func ClassifySeverity(cariesPercent float64) Severity {
	switch {
	case cariesPercent <= 0:
		return SeverityNone
	case cariesPercent < 15:
		return SeverityLow
	case cariesPercent < 30:
		return SeverityModerate
	case cariesPercent < 50:
		return SeverityHigh
	default:
		return SeveritySevere
	}
}
