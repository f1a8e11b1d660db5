package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"sitephoto/internal/annotation"
)

// ErrMissingColumn is returned when an activity CSV lacks a required header.
var ErrMissingColumn = errors.New("missing csv column")

var activityColumns = []string{"file", "ts", "board_text", "other_text", "notes"}

// ReadActivityCSV reads activity-mode rows with header
// file,ts,board_text,other_text,notes. Column order is free; file and ts are
// required. ts may be Unix seconds, an RFC 3339 time, or "2006-01-02 15:04:05"
// in local time. Board text lines separated by '|' become board lines.
func ReadActivityCSV(r io.Reader) ([]annotation.Photo, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("ingest: activity csv: %w: file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: activity csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range activityColumns[:2] {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("ingest: activity csv: %w: %s", ErrMissingColumn, required)
		}
	}
	get := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var photos []annotation.Photo
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: activity csv: %w", err)
		}
		file := get(row, "file")
		if file == "" {
			continue
		}
		photo := annotation.Photo{
			File:         file,
			DetectedText: get(row, "board_text"),
			OtherText:    get(row, "other_text"),
			Notes:        get(row, "notes"),
		}
		if raw := get(row, "ts"); raw != "" {
			ts, err := ParseTimestamp(raw)
			if err != nil {
				return nil, fmt.Errorf("ingest: activity csv %s: %w", file, err)
			}
			photo.CapturedAt = annotation.At(ts)
		}
		if strings.Contains(photo.DetectedText, "|") {
			for _, line := range strings.Split(photo.DetectedText, "|") {
				if line = strings.TrimSpace(line); line != "" {
					photo.BoardLines = append(photo.BoardLines, line)
				}
			}
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

// ParseTimestamp accepts Unix seconds, RFC 3339, or "2006-01-02 15:04:05".
func ParseTimestamp(raw string) (int64, error) {
	if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ts, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.ParseInLocation(time.DateTime, raw, time.Local); err == nil {
		return t.Unix(), nil
	}
	return 0, fmt.Errorf("unrecognized timestamp %q", raw)
}
