package ingest

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"sitephoto/internal/annotation"
)

// DecodeJSONL reads one annotation per line. Blank lines are skipped; a
// malformed line fails with its line number.
func DecodeJSONL(r io.Reader) ([]annotation.Photo, error) {
	var photos []annotation.Photo
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		photo, err := annotation.ParseRecord(text)
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", line, err)
		}
		photos = append(photos, photo)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ingest: scan journal: %w", err)
	}
	return photos, nil
}

// ReadJSONL loads an annotation journal. A missing file yields no photos.
func ReadJSONL(path string) ([]annotation.Photo, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: open journal: %w", err)
	}
	defer func() { _ = f.Close() }()
	photos, err := DecodeJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return photos, nil
}

// AppendJSONL appends photos to the journal, creating it when needed.
func AppendJSONL(path string, photos ...annotation.Photo) error {
	if len(photos) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("ingest: open journal: %w", err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, photo := range photos {
		if err := enc.Encode(photo); err != nil {
			_ = f.Close()
			return fmt.Errorf("ingest: encode %s: %w", photo.File, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("ingest: flush journal: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("ingest: close journal: %w", err)
	}
	return nil
}
