package analyzer

import (
	"image"

	"github.com/anime-shed/ratemylooks/pkg/models"
)

// PhotoInspector reports technical quality problems of a submitted photo
type PhotoInspector interface {
	Inspect(data []byte) (*models.PhotoQuality, error)
}

// MetricsCalculator handles image metrics computation
type MetricsCalculator interface {
	CalculateLuminance(img image.Image) float64
	CalculateLaplacianVariance(gray *image.Gray) float64
}
