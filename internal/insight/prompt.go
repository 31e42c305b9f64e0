package insight

import (
	"fmt"
	"strings"

	"github.com/dentascan/dentascan/internal/entity"
)

// buildPrompt summarizes the reconciled findings for the model. Counts and
// per-tooth findings only; no patient identifiers beyond what the analysis
// already carries.
func buildPrompt(a *entity.Analysis) string {
	var b strings.Builder
	b.WriteString("You are a dental assistant. Write a short, plain-language summary ")
	b.WriteString("(3-5 sentences) of the following caries screening result for the treating dentist. ")
	b.WriteString("Do not invent findings that are not listed.\n\n")

	fmt.Fprintf(&b, "Teeth detected: %d\n", a.TotalTeethDetected)
	fmt.Fprintf(&b, "Teeth with caries: %d\n", a.TotalCariesDetected)
	fmt.Fprintf(&b, "Healthy teeth: %d\n", a.HealthyTeethCount())
	fmt.Fprintf(&b, "Mean detection confidence: %.2f\n", a.ConfidenceScore)
	fmt.Fprintf(&b, "Severity grade: %s\n", a.Severity)

	if len(a.Detections) > 0 {
		b.WriteString("\nFindings per tooth:\n")
		for _, d := range a.Detections {
			state := "healthy"
			if d.HasCaries {
				state = "caries"
			}
			fmt.Fprintf(&b, "- %s: %s (confidence %.2f)\n", d.Description, state, d.Confidence)
		}
	}
	return b.String()
}
