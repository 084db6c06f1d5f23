package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
)

const (
	MaxUploadSize     = 10 << 20
	MaxImageDimension = 1024
	// MaxImagePixels bounds the decoded size of an upload; a small file can
	// still declare a huge canvas.
	MaxImagePixels = 40_000_000
	jpegQuality    = 85
)

var (
	ErrNotImage         = &models.ValidationError{Field: "file", Message: "File must be an image"}
	ErrUndecodableImage = &models.ValidationError{Field: "file", Message: "Image could not be read"}
	ErrFileTooLarge     = &models.ValidationError{Field: "file", Message: "File must be at most 10 MB"}
	ErrImageTooLarge    = &models.ValidationError{Field: "file", Message: "Image dimensions are too large"}
)

// Uploader stores a finished JPEG and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
	// BaseURL is the prefix shared by every URL the uploader returns.
	BaseURL() string
}

// MediaService normalises profile photos and hands them to an Uploader.
type MediaService struct {
	uploader Uploader
	now      func() time.Time
}

func NewMediaService(uploader Uploader) *MediaService {
	return &MediaService{uploader: uploader, now: time.Now}
}

// Upload checks that r holds an image, shrinks it to fit 1024x1024, re-encodes
// it as JPEG and stores it. Nothing is stored when any step fails.
func (m *MediaService) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return "", ErrFileTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", ErrNotImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrUndecodableImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return "", ErrImageTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrUndecodableImage
	}
	img = fitImage(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	return m.uploader.Upload(ctx, ObjectName(m.now(), filename), buf.Bytes())
}

// Owns reports whether url points into the configured media store.
func (m *MediaService) Owns(url string) bool {
	base := m.uploader.BaseURL()
	return base != "" && strings.HasPrefix(url, base)
}

func fitImage(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= MaxImageDimension && b.Dy() <= MaxImageDimension {
		return img
	}
	return imaging.Fit(img, MaxImageDimension, MaxImageDimension, imaging.Lanczos)
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	unsafeNameRe = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)
)

// ObjectName builds "<unix-millis>-<name>.jpg" from the client filename.
func ObjectName(now time.Time, filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = whitespaceRe.ReplaceAllString(strings.TrimSpace(base), "-")
	base = unsafeNameRe.ReplaceAllString(base, "")
	base = strings.Trim(base, ".")
	if base == "" {
		base = "photo"
	}
	return fmt.Sprintf("%d-%s.jpg", now.UnixMilli(), base)
}
