package repository

import "errors"

var (
	// ErrBlobStorageDisabled indicates an azblob URL was given without Azure credentials
	ErrBlobStorageDisabled = errors.New("blob storage is not configured")

	// ErrUnsupportedScheme indicates a URL scheme with no registered source
	ErrUnsupportedScheme = errors.New("unsupported image URL scheme")
)
