package annotation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRecord marks annotation data rejected at the import boundary.
var ErrInvalidRecord = errors.New("invalid annotation record")

// Validate rejects records that would break the reasoning passes: missing or
// duplicate filenames and geometry outside the normalized [0,1] range.
func Validate(photos []Photo) error {
	seen := make(map[string]int, len(photos))
	for i, photo := range photos {
		name := strings.TrimSpace(photo.File)
		if name == "" {
			return fmt.Errorf("%w: record %d has no filename", ErrInvalidRecord, i)
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s appears at records %d and %d", ErrInvalidRecord, name, prev, i)
		}
		seen[name] = i
		for j, obj := range photo.Objects {
			if err := validateObject(obj); err != nil {
				return fmt.Errorf("%w: %s object %d: %v", ErrInvalidRecord, name, j, err)
			}
		}
	}
	return nil
}

func validateObject(obj DetectedObject) error {
	if !unit(obj.AreaRatio) {
		return fmt.Errorf("area_ratio %v outside [0,1]", obj.AreaRatio)
	}
	for _, v := range []float64{obj.BBox.X, obj.BBox.Y, obj.BBox.W, obj.BBox.H} {
		if !unit(v) {
			return fmt.Errorf("bbox %+v outside [0,1]", obj.BBox)
		}
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
