package imageservice

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// cloudinaryUploader is the part of the Cloudinary upload API the provider needs.
type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

type CloudinaryProvider struct {
	up cloudinaryUploader
}

func NewCloudinaryProvider(cloudName, apiKey, apiSecret string) (*CloudinaryProvider, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("could not create cloudinary client: %w", err)
	}

	return &CloudinaryProvider{up: &cld.Upload}, nil
}

// UploadDataURI sends the data URI as-is; Cloudinary accepts base64 payloads directly.
func (p *CloudinaryProvider) UploadDataURI(ctx context.Context, dataURI, folder string) (string, error) {
	if !IsDataURI(dataURI) {
		return "", ErrInvalidDataURI
	}

	return p.upload(ctx, dataURI, folder)
}

func (p *CloudinaryProvider) UploadStream(ctx context.Context, r io.Reader, filename, folder string) (string, error) {
	return p.upload(ctx, r, folder)
}

func (p *CloudinaryProvider) upload(ctx context.Context, file interface{}, folder string) (string, error) {
	res, err := p.up.Upload(ctx, file, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}

	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}

	if res.SecureURL == "" {
		return "", errors.New("cloudinary upload: no secure url in response")
	}

	return res.SecureURL, nil
}
