package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sitephoto/internal/annotation"
)

// SidecarPath returns the annotation file kept next to an image:
// IMG_0001.jpg → IMG_0001.json.
func SidecarPath(image string) string {
	return strings.TrimSuffix(image, filepath.Ext(image)) + ".json"
}

// SidecarAnnotator reads raw model output saved beside each image. Images
// without a sidecar are left out of the batch result; a sidecar that does not
// decode fails the batch.
type SidecarAnnotator struct{}

// Annotate implements Annotator.
func (SidecarAnnotator) Annotate(ctx context.Context, paths []string) ([]annotation.Photo, error) {
	photos := make([]annotation.Photo, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(SidecarPath(path))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read sidecar: %w", err)
		}
		photo, err := annotation.ParseRecord(string(raw))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(SidecarPath(path)), err)
		}
		photo.File = filepath.Base(path)
		photos = append(photos, photo)
	}
	return photos, nil
}
