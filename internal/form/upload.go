package form

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge = errors.New("form: file too large")
	ErrNotImage     = errors.New("form: file is not an image")
)

// imageTypes are the raster formats a file slot accepts. SVG is excluded
// because it can carry script.
var imageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// IsImageType reports whether contentType is one of the accepted raster formats.
func IsImageType(contentType string) bool {
	return mimetype.EqualsAny(contentType, imageTypes...)
}

// SniffImage detects the format of data from its content and returns its
// media type, or ErrNotImage when it is not an accepted raster image.
// The type the browser sent is never trusted.
func SniffImage(data []byte) (string, error) {
	m := mimetype.Detect(data)
	for _, t := range imageTypes {
		if m.Is(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: detected %s", ErrNotImage, m.String())
}

// ReadUpload reads one posted file of at most limit bytes and checks that it
// is an image.
func ReadUpload(fh *multipart.FileHeader, limit int64) (Upload, error) {
	if fh.Size > limit {
		return Upload{}, fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, fh.Filename, fh.Size)
	}
	f, err := fh.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("form: open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return Upload{}, fmt.Errorf("form: read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return Upload{}, fmt.Errorf("%w: %s", ErrFileTooLarge, fh.Filename)
	}
	ct, err := SniffImage(data)
	if err != nil {
		return Upload{}, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	return Upload{Filename: fh.Filename, ContentType: ct, Data: data}, nil
}
