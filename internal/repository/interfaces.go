package repository

import (
	"context"

	"github.com/anime-shed/ratemylooks/pkg/models"
)

// ImageRepository defines the interface for remote image access
type ImageRepository interface {
	// FetchImage retrieves an image from an http(s) or azblob URL
	FetchImage(ctx context.Context, imageURL string) (*models.UploadedImage, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}
