package inference

import (
	"encoding/json"
	"regexp"
	"strings"
)

// payloadEnvelope is the first decode pass over a complete event's payload.
// Element 1 of Data is itself a JSON document serialized as a string; the
// upstream really does double-encode it, so decoding happens in two explicit
// passes and never as one combined unmarshal.
type payloadEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

// imageRefObject is the object form element 0 occasionally takes.
type imageRefObject struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Result is the decoded terminal payload of one successful submission.
type Result struct {
	ImageRef        string         // processed-image reference, absolute
	TechData        *TechnicalData // never nil on success
	Recommendations []string
}

// decodePayload turns the JSON payload string of a complete event into a
// Result. Shape violations are decode failures carrying element context,
// never silently defaulted: an empty result here would read as an
// all-healthy finding downstream.
func (c *Client) decodePayload(payload string) (*Result, error) {
	var env payloadEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, newError(KindDecode, "payload is not an object with a data array", err)
	}
	if len(env.Data) < 2 {
		return nil, errorf(KindDecode, "payload data array has %d elements, need at least 2", len(env.Data))
	}

	imageRef, err := c.normalizeImageRef(env.Data[0])
	if err != nil {
		return nil, err
	}

	td, err := c.decodeTechnicalData(env.Data[1])
	if err != nil {
		return nil, err
	}

	var report string
	if len(env.Data) > 2 {
		_ = json.Unmarshal(env.Data[2], &report) // optional, best effort
	}
	recs := extractRecommendations(report)
	if len(recs) == 0 {
		recs = defaultRecommendations(td)
	}

	return &Result{ImageRef: imageRef, TechData: td, Recommendations: recs}, nil
}

// normalizeImageRef resolves element 0 to an absolute reference. Absolute
// URLs and data URIs pass through; anything else is a service-relative path
// that needs the file-serving prefix.
func (c *Client) normalizeImageRef(raw json.RawMessage) (string, error) {
	s := strings.TrimSpace(string(raw))
	if s == "null" || s == "" {
		return "", nil
	}

	var ref string
	switch {
	case strings.HasPrefix(s, `"`):
		if err := json.Unmarshal(raw, &ref); err != nil {
			return "", newError(KindDecode, "payload element 0 (image ref)", err)
		}
	case strings.HasPrefix(s, "{"):
		var obj imageRefObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", newError(KindDecode, "payload element 0 (image ref object)", err)
		}
		ref = obj.URL
		if ref == "" {
			ref = obj.Path
		}
	default:
		return "", errorf(KindDecode, "payload element 0 has unexpected type: %s", truncate(s, 80))
	}

	if ref == "" {
		return "", nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "data:") {
		return ref, nil
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + c.cfg.FilePrefix + ref, nil
}

// decodeTechnicalData runs the second pass: element 1 must be a JSON string
// whose content decodes and validates as a TechnicalData document.
func (c *Client) decodeTechnicalData(raw json.RawMessage) (*TechnicalData, error) {
	var nested string
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, newError(KindDecode, "payload element 1 is not a string", err)
	}
	if strings.TrimSpace(nested) == "" {
		return nil, errorf(KindDecode, "payload element 1 (technical data) is empty")
	}

	if err := validateAgainstSchema(buildTechnicalDataSchema(), []byte(nested)); err != nil {
		return nil, newError(KindDecode, "technical data failed schema validation", err)
	}

	var td TechnicalData
	if err := json.Unmarshal([]byte(nested), &td); err != nil {
		return nil, newError(KindDecode, "payload element 1 (technical data)", err)
	}
	return &td, nil
}

var bulletLine = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+\.)\s+(.+?)\s*$`)

// extractRecommendations pulls bullet-style lines out of the optional
// human-readable report fragment.
func extractRecommendations(report string) []string {
	if report == "" {
		return nil
	}
	var recs []string
	for _, m := range bulletLine.FindAllStringSubmatch(report, -1) {
		recs = append(recs, m[1])
	}
	return recs
}

// defaultRecommendations synthesizes guidance when the report carried none.
func defaultRecommendations(td *TechnicalData) []string {
	if cavityCount(td) > 0 {
		return []string{
			"Schedule a dental appointment to treat the detected cavities.",
			"Limit sugary foods and drinks until treated.",
			"Brush twice daily with a fluoride toothpaste.",
		}
	}
	return []string{
		"No cavities detected; keep up your current oral hygiene routine.",
		"Continue regular dental check-ups every six months.",
	}
}

// cavityCount prefers the upstream summary counter and falls back to a label
// scan over the detection list.
func cavityCount(td *TechnicalData) int {
	if td.CavityCount != nil {
		return *td.CavityCount
	}
	n := 0
	for _, d := range td.Detections {
		if d.ClassName == nil {
			continue
		}
		name := strings.ToLower(*d.ClassName)
		if strings.Contains(name, "cavity") || strings.Contains(name, "caries") {
			n++
		}
	}
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
