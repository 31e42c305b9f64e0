package constants

import "fmt"

// FDI two-digit notation: first digit is the quadrant (1-4 for permanent
// teeth), second digit is the position within the quadrant (1-8, counted
// from the midline).

// QuadrantOf returns the quadrant digit of an FDI number.
func QuadrantOf(fdi int) int {
	return fdi / 10
}

// PositionOf returns the position-in-quadrant digit of an FDI number.
func PositionOf(fdi int) int {
	return fdi % 10
}

var quadrantNames = map[int]string{
	1: "Upper Right",
	2: "Upper Left",
	3: "Lower Left",
	4: "Lower Right",
}

var positionNames = map[int]string{
	1: "Central Incisor",
	2: "Lateral Incisor",
	3: "Canine",
	4: "First Premolar",
	5: "Second Premolar",
	6: "First Molar",
	7: "Second Molar",
	8: "Third Molar (Wisdom)",
}

// QuadrantName returns the anatomical name of a quadrant digit,
// or "Unknown" for digits outside the permanent dentition.
func QuadrantName(quadrant int) string {
	if name, ok := quadrantNames[quadrant]; ok {
		return name
	}
	return "Unknown"
}

// ToothName returns the anatomical name for a position-in-quadrant digit.
func ToothName(position int) string {
	if name, ok := positionNames[position]; ok {
		return name
	}
	return "Unknown"
}

// DescribeTooth builds the full human-readable description for an FDI
// number, e.g. 16 -> "Upper Right First Molar (16)".
func DescribeTooth(fdi int) string {
	return fmt.Sprintf("%s %s (%d)", QuadrantName(QuadrantOf(fdi)), ToothName(PositionOf(fdi)), fdi)
}
