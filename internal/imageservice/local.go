package imageservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 85
	// MaxUploadSize bounds both multipart uploads and decoded data URIs.
	MaxUploadSize = 10 << 20
	// maxImagePixels bounds the decoded canvas, which a small compressed file can inflate.
	maxImagePixels = 40_000_000
)

// LocalProvider re-encodes images as JPEG under dir and serves them from baseURL.
type LocalProvider struct {
	dir     string
	baseURL string
}

func NewLocalProvider(dir, baseURL string) *LocalProvider {
	return &LocalProvider{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (p *LocalProvider) UploadDataURI(ctx context.Context, dataURI, folder string) (string, error) {
	_, r, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	return p.UploadStream(ctx, r, "", folder)
}

func (p *LocalProvider) UploadStream(ctx context.Context, r io.Reader, filename, folder string) (string, error) {
	data, err := processImage(io.LimitReader(r, MaxUploadSize))
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(p.dir, filepath.Clean("/"+folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return p.baseURL + path.Join("/", folder, name), nil
}

// processImage decodes any registered format, shrinks it to maxImageWidth and encodes JPEG.
// The header is checked against maxImagePixels before any pixel data is allocated.
func processImage(src io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedImage
		}
		return nil, fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedImage
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}
