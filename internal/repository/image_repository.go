package repository

import (
	"context"
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/internal/storage"
	"github.com/anime-shed/ratemylooks/pkg/models"
	"github.com/anime-shed/ratemylooks/pkg/validation"
)

// RemoteImageRepository implements ImageRepository over HTTP and, when configured, Azure Blob Storage
type RemoteImageRepository struct {
	fetcher   storage.ImageFetcher
	blobs     storage.BlobStorage
	validator *validation.URLValidator
}

// NewRemoteImageRepository creates a repository. blobs may be nil, which rejects azblob URLs.
func NewRemoteImageRepository(fetcher storage.ImageFetcher, blobs storage.BlobStorage, opts ...validation.URLValidatorOption) ImageRepository {
	schemes := []string{"http", "https"}
	if blobs != nil {
		schemes = append(schemes, validation.SchemeAzureBlob)
	}
	opts = append([]validation.URLValidatorOption{validation.WithSchemes(schemes...)}, opts...)

	return &RemoteImageRepository{
		fetcher:   fetcher,
		blobs:     blobs,
		validator: validation.NewURLValidator(opts...),
	}
}

// FetchImage validates the URL and reads the image from the matching source
func (r *RemoteImageRepository) FetchImage(ctx context.Context, imageURL string) (*models.UploadedImage, error) {
	imageURL = strings.TrimSpace(imageURL)
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	u, err := url.Parse(imageURL)
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidURL, "Invalid URL format", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return r.fetcher.FetchImage(ctx, imageURL)
	case validation.SchemeAzureBlob:
		if r.blobs == nil {
			return nil, apperrors.NewConfigurationError(apperrors.CodeImageFetchFailed, "Blob storage is not configured", ErrBlobStorageDisabled)
		}
		containerName, blobName, err := storage.ParseBlobURL(imageURL)
		if err != nil {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidURL, "Blob URL must name a blob", err)
		}
		return r.blobs.GetImage(ctx, containerName, blobName)
	default:
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidURL, "URL scheme not allowed", ErrUnsupportedScheme)
	}
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *RemoteImageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(imageURL)
}
