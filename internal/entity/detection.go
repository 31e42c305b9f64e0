package entity

// BoundingBox locates one detection on the source image, in pixels.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the coordinates of the box center.
func (b BoundingBox) Center() (x, y float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Area returns the box area in square pixels.
func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

// ToothDetection is one reconciled finding. Immutable after reconciliation;
// owned exclusively by its parent Analysis.
type ToothDetection struct {
	ID          string      `json:"id"` // "<analysis_id>-<ordinal>"
	FDINumber   int         `json:"fdi_number"`
	HasCaries   bool        `json:"has_caries"`
	Confidence  float64     `json:"confidence"`
	Box         BoundingBox `json:"bbox"`
	Quadrant    int         `json:"quadrant"`
	Position    int         `json:"position"`
	ToothName   string      `json:"tooth_name"`
	Description string      `json:"description"`
}
