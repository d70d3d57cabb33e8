package capture

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// ErrCancelled is returned by a Provider when the user backs out of capture.
// Cancellation is a normal outcome, not a failure.
var ErrCancelled = errors.New("capture cancelled")

// Image is one captured frame ready for upload.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Provider abstracts the camera hardware. Both operations respect the caller's
// context, so a stuck acquisition stays cancelable.
type Provider interface {
	RequestPermission(ctx context.Context) (bool, error)
	Capture(ctx context.Context) (*Image, error)
}

// FileProvider is the terminal frontend's camera surrogate: it "captures" by
// reading an image file from disk. An empty path behaves like the user
// dismissing the camera.
type FileProvider struct {
	Path string
}

// RequestPermission always grants; the filesystem needs no runtime prompt.
func (p *FileProvider) RequestPermission(ctx context.Context) (bool, error) {
	return true, ctx.Err()
}

// Capture loads the configured file.
func (p *FileProvider) Capture(ctx context.Context) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}
	if p.Path == "" {
		return nil, ErrCancelled
	}

	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read capture file: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(p.Path))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return &Image{
		Name:     filepath.Base(p.Path),
		MIMEType: mimeType,
		Data:     data,
	}, nil
}
