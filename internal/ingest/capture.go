package ingest

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"sitephoto/internal/annotation"
)

var filenameTime = regexp.MustCompile(`(\d{8}_\d{6})`)

const filenameLayout = "20060102_150405"

// CaptureTime returns the capture time of the image at path as Unix seconds.
// EXIF DateTimeOriginal wins; otherwise a YYYYMMDD_HHMMSS run in the filename
// is used. Both are read in local time.
func CaptureTime(path string) (int64, bool) {
	if t, err := exifTime(path); err == nil {
		return t.Unix(), true
	}
	return FilenameTime(filepath.Base(path))
}

func exifTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer func() { _ = f.Close() }()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, err
	}
	return x.DateTime()
}

// FilenameTime parses a YYYYMMDD_HHMMSS timestamp embedded in name.
func FilenameTime(name string) (int64, bool) {
	m := filenameTime.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	t, err := time.ParseInLocation(filenameLayout, m[1], time.Local)
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}

// FillCaptureTimes returns a snapshot where photos without a capture time get
// one read from dir/<file>, and the number filled.
func FillCaptureTimes(dir string, photos []annotation.Photo) ([]annotation.Photo, int) {
	out := annotation.Clone(photos)
	filled := 0
	for i := range out {
		if out[i].CapturedAt != nil {
			continue
		}
		if ts, ok := CaptureTime(filepath.Join(dir, out[i].File)); ok {
			out[i].CapturedAt = annotation.At(ts)
			filled++
		}
	}
	return out, filled
}
