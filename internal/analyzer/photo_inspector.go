package analyzer

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/anime-shed/ratemylooks/pkg/models"
)

type photoInspector struct {
	calculator MetricsCalculator
	options    InspectOptions
}

// NewPhotoInspector creates an inspector with the default thresholds
func NewPhotoInspector() PhotoInspector {
	return &photoInspector{calculator: NewMetricsCalculator(), options: DefaultOptions()}
}

// NewPhotoInspectorWithOptions creates an inspector with custom thresholds
func NewPhotoInspectorWithOptions(opts InspectOptions) (PhotoInspector, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid inspect options: %w", err)
	}
	return &photoInspector{calculator: NewMetricsCalculator(), options: opts}, nil
}

// Inspect decodes the photo and measures resolution, exposure and sharpness.
// Dimensions are reported for the original image; the other metrics use a downscaled copy.
func (p *photoInspector) Inspect(data []byte) (*models.PhotoQuality, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(p.options.MaxPixels) {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	quality := &models.PhotoQuality{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Warnings: []string{},
	}

	sample := p.downscale(img)
	gray := image.NewGray(sample.Bounds())
	draw.Draw(gray, gray.Bounds(), sample, sample.Bounds().Min, draw.Src)

	quality.AvgLuminance = p.calculator.CalculateLuminance(sample)
	quality.LaplacianVariance = p.calculator.CalculateLaplacianVariance(gray)

	quality.LowResolution = quality.Width < p.options.MinWidth || quality.Height < p.options.MinHeight
	quality.TooDark = quality.AvgLuminance < p.options.DarkThreshold
	quality.Overexposed = quality.AvgLuminance > p.options.OverexposureThreshold
	quality.Blurry = quality.LaplacianVariance < p.options.BlurThreshold

	if quality.LowResolution {
		quality.Warnings = append(quality.Warnings, WarningLowResolution)
	}
	if quality.TooDark {
		quality.Warnings = append(quality.Warnings, WarningTooDark)
	}
	if quality.Overexposed {
		quality.Warnings = append(quality.Warnings, WarningOverexposed)
	}
	if quality.Blurry {
		quality.Warnings = append(quality.Warnings, WarningBlurry)
	}
	return quality, nil
}

func (p *photoInspector) downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := max(w, h)
	if longest <= p.options.MaxDimension {
		return img
	}

	scale := float64(p.options.MaxDimension) / float64(longest)
	dst := image.NewRGBA(image.Rect(0, 0, max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}
