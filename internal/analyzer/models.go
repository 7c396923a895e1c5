package analyzer

import "errors"

// ErrImageTooLarge is returned for images whose declared size exceeds InspectOptions.MaxPixels
var ErrImageTooLarge = errors.New("image dimensions exceed the inspection limit")

// Warnings attached to PhotoQuality
const (
	WarningLowResolution = "Photo resolution is low; a larger image gives a more accurate rating"
	WarningTooDark       = "Photo is too dark; try brighter, even lighting"
	WarningOverexposed   = "Photo is overexposed; avoid direct harsh light"
	WarningBlurry        = "Photo looks blurry; hold the camera steady and focus on the face"
)

// stripResult holds one worker's partial luminance sum
type stripResult struct {
	lum        float64
	pixelCount int
}
