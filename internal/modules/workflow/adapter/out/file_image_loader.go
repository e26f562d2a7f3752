package out

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"hairly/internal/modules/workflow/domain"
	workflowout "hairly/internal/modules/workflow/port/out"
	apperrors "hairly/internal/platform/errors"
)

// MaxImageBytes matches the service's upload limit.
const MaxImageBytes = 10 << 20

// FileImageLoader reads a local image and builds its data-URL preview. It
// does not judge the MIME type; the service rejects what it cannot analyze.
type FileImageLoader struct{}

func NewFileImageLoader() workflowout.ImageLoader {
	return FileImageLoader{}
}

func (FileImageLoader) Load(ctx context.Context, path string) (domain.CaptureImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.CaptureImage{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.CaptureImage{}, fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return domain.CaptureImage{}, fmt.Errorf("%w: %s is a directory", apperrors.ErrInvalidInput, path)
	}
	if info.Size() == 0 || info.Size() > MaxImageBytes {
		return domain.CaptureImage{}, fmt.Errorf("%w: image must be between 1 byte and %d bytes", apperrors.ErrInvalidInput, MaxImageBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.CaptureImage{}, fmt.Errorf("read image: %w", err)
	}
	mimeType := http.DetectContentType(data)
	return domain.CaptureImage{
		FileName: filepath.Base(path),
		MIMEType: mimeType,
		Data:     data,
		Preview:  "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}
