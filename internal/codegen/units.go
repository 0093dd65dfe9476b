package codegen

import "math"

// DPI is the reference density used for every raster output.
const DPI = 200

// CmToPx converts centimeters to pixels at DPI, never returning less than 1.
func CmToPx(cm float64) int {
	px := int(math.RoundToEven(cm / 2.54 * DPI))
	if px < 1 {
		return 1
	}
	return px
}

// MmToPx converts millimeters to pixels at DPI, never returning less than 1.
func MmToPx(mm float64) int {
	return CmToPx(mm / 10)
}
