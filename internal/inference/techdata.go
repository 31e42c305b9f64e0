package inference

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TechnicalData is the structured detection document nested (as a JSON
// string) inside the terminal payload. Summary counters are optional; when
// absent the reconciler recomputes them from the detection list.
type TechnicalData struct {
	Detections        []RawDetection `json:"detections"`
	TeethCount        *int           `json:"teeth_count,omitempty"`
	HealthyCount      *int           `json:"healthy_count,omitempty"`
	CavityCount       *int           `json:"cavity_count,omitempty"`
	AverageConfidence *float64       `json:"average_confidence,omitempty"`
}

// RawDetection is one upstream detection record, before arbitration.
// The numeric class code is known to be unreliable; the class name string
// takes precedence during reconciliation.
type RawDetection struct {
	ObjectID   string     `json:"object_id,omitempty"`
	ClassID    *int       `json:"class_id,omitempty"`
	ClassName  *string    `json:"class_name,omitempty"`
	Confidence float64    `json:"confidence"`
	BBox       []float64  `json:"bbox,omitempty"`
	FDINumber  FlexString `json:"fdi_number,omitempty"`
}

// FlexString accepts a JSON string or number and keeps the textual form.
// The upstream emits fdi_number as either, inconsistently.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Int parses the value as an integer, tolerating a trailing decimal part.
// Returns 0 when the value is empty or not numeric.
func (f FlexString) Int() int {
	s := string(f)
	if s == "" {
		return 0
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v)
	}
	return 0
}
