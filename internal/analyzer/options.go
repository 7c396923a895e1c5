package analyzer

import "fmt"

// InspectOptions sets the quality thresholds
type InspectOptions struct {
	MinWidth  int
	MinHeight int

	// Luminance is normalized to [0,1]
	DarkThreshold         float64
	OverexposureThreshold float64

	// Images whose Laplacian variance falls below this are reported as blurry
	BlurThreshold float64

	// Larger images are downscaled before measuring
	MaxDimension int

	// Images declaring more pixels than this are not decoded
	MaxPixels int
}

// DefaultOptions returns default inspection options
func DefaultOptions() InspectOptions {
	return InspectOptions{
		MinWidth:              100,
		MinHeight:             100,
		DarkThreshold:         0.2,
		OverexposureThreshold: 0.9,
		BlurThreshold:         50,
		MaxDimension:          1024,
		MaxPixels:             40_000_000,
	}
}

// WithThresholds returns a copy with custom exposure and blur thresholds
func (o InspectOptions) WithThresholds(dark, overexposed, blur float64) InspectOptions {
	o.DarkThreshold = dark
	o.OverexposureThreshold = overexposed
	o.BlurThreshold = blur
	return o
}

// Validate rejects inconsistent thresholds
func (o InspectOptions) Validate() error {
	if o.MinWidth < 0 || o.MinHeight < 0 {
		return fmt.Errorf("minimum dimensions must not be negative")
	}
	if o.DarkThreshold < 0 || o.OverexposureThreshold > 1 || o.DarkThreshold >= o.OverexposureThreshold {
		return fmt.Errorf("luminance thresholds must satisfy 0 <= dark < overexposed <= 1")
	}
	if o.BlurThreshold < 0 {
		return fmt.Errorf("blur threshold must not be negative")
	}
	if o.MaxDimension <= 0 {
		return fmt.Errorf("max dimension must be positive")
	}
	if o.MaxPixels <= 0 {
		return fmt.Errorf("max pixels must be positive")
	}
	return nil
}
