package repository

import (
	"context"
	"testing"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/pkg/models"
	"github.com/anime-shed/ratemylooks/pkg/validation"
)

type fakeFetcher struct {
	urls []string
}

func (f *fakeFetcher) FetchImage(ctx context.Context, imageURL string) (*models.UploadedImage, error) {
	f.urls = append(f.urls, imageURL)
	return &models.UploadedImage{Data: []byte{1}, Filename: "http.jpg"}, nil
}

type fakeBlobs struct {
	container, blob string
}

func (f *fakeBlobs) GetImage(ctx context.Context, containerName, blobName string) (*models.UploadedImage, error) {
	f.container, f.blob = containerName, blobName
	return &models.UploadedImage{Data: []byte{2}, Filename: "blob.jpg"}, nil
}

func TestRemoteImageRepository_Dispatch(t *testing.T) {
	fetcher := &fakeFetcher{}
	blobs := &fakeBlobs{}
	repo := NewRemoteImageRepository(fetcher, blobs)

	img, err := repo.FetchImage(context.Background(), " https://cdn.example.com/me.jpg ")
	if err != nil || img.Filename != "http.jpg" {
		t.Fatalf("Expected http fetch, got %v, %v", img, err)
	}
	if len(fetcher.urls) != 1 || fetcher.urls[0] != "https://cdn.example.com/me.jpg" {
		t.Errorf("Unexpected fetched urls %v", fetcher.urls)
	}

	img, err = repo.FetchImage(context.Background(), "azblob://photos/2024/me.jpg")
	if err != nil || img.Filename != "blob.jpg" {
		t.Fatalf("Expected blob fetch, got %v, %v", img, err)
	}
	if blobs.container != "photos" || blobs.blob != "2024/me.jpg" {
		t.Errorf("Unexpected blob address %s/%s", blobs.container, blobs.blob)
	}
}

func TestRemoteImageRepository_Rejections(t *testing.T) {
	tests := []struct {
		name string
		repo ImageRepository
		url  string
	}{
		{"azblob without storage", NewRemoteImageRepository(&fakeFetcher{}, nil), "azblob://photos/me.jpg"},
		{"loopback", NewRemoteImageRepository(&fakeFetcher{}, nil), "http://127.0.0.1/me.jpg"},
		{"ftp", NewRemoteImageRepository(&fakeFetcher{}, &fakeBlobs{}), "ftp://example.com/me.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.repo.FetchImage(context.Background(), tt.url)
			if apperrors.GetCode(err) != apperrors.CodeInvalidURL {
				t.Errorf("Expected INVALID_URL, got %v", err)
			}
		})
	}
}

func TestRemoteImageRepository_PrivateHostsOption(t *testing.T) {
	fetcher := &fakeFetcher{}
	repo := NewRemoteImageRepository(fetcher, nil, validation.WithPrivateHosts())

	if _, err := repo.FetchImage(context.Background(), "http://127.0.0.1:9000/me.jpg"); err != nil {
		t.Errorf("Expected private host to be allowed, got %v", err)
	}
}
