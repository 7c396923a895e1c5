package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/pkg/models"
)

// BlobStorage reads images out of a blob container
type BlobStorage interface {
	GetImage(ctx context.Context, containerName, blobName string) (*models.UploadedImage, error)
}

type azureStorage struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureStorage connects to the account's blob endpoint with a shared key
func NewAzureStorage(accountName, accountKey string, maxBytes int64) (BlobStorage, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &azureStorage{client: client, maxBytes: maxBytes}, nil
}

func (s *azureStorage) GetImage(ctx context.Context, containerName, blobName string) (*models.UploadedImage, error) {
	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError(apperrors.CodeImageFetchFailed, "Blob download failed", err)
	}
	defer resp.Body.Close()

	data, err := readLimited(resp.Body, s.maxBytes)
	if err != nil {
		return nil, err
	}

	var contentType string
	if resp.ContentType != nil {
		contentType = mediaType(*resp.ContentType)
	}

	return &models.UploadedImage{
		Data:        data,
		Filename:    path.Base(blobName),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// ParseBlobURL splits azblob://<container>/<blob path>
func ParseBlobURL(raw string) (containerName, blobName string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}
	containerName = u.Host
	blobName = strings.TrimPrefix(u.Path, "/")
	if containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("blob URL must name a container and a blob")
	}
	return containerName, blobName, nil
}
