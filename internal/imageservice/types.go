// Package imageservice turns inline data-URI images and uploaded files into durable URLs.
package imageservice

import (
	"context"
	"errors"
	"io"
)

const (
	// FolderBlogs holds images uploaded inline while editing a blog.
	FolderBlogs = "blogs"
	// FolderUploads holds images uploaded through the standalone upload endpoint.
	FolderUploads = "blog_uploads"
)

var (
	ErrInvalidDataURI   = errors.New("invalid data URI")
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrImageTooLarge    = errors.New("image dimensions are too large")
)

// Provider stores an image and returns its secure URL.
type Provider interface {
	UploadDataURI(ctx context.Context, dataURI, folder string) (string, error)
	UploadStream(ctx context.Context, r io.Reader, filename, folder string) (string, error)
}
