package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoPayload indicates model output that contains no JSON payload.
var ErrNoPayload = errors.New("no JSON payload in model output")

// ExtractJSONArray returns the outermost [...] span of raw model output.
func ExtractJSONArray(raw string) (string, bool) {
	return extractSpan(raw, '[', ']')
}

// ExtractJSONObject returns the outermost {...} span of raw model output.
func ExtractJSONObject(raw string) (string, bool) {
	return extractSpan(raw, '{', '}')
}

func extractSpan(raw string, opening, closing byte) (string, bool) {
	start := strings.IndexByte(raw, opening)
	end := strings.LastIndexByte(raw, closing)
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// partialPhoto mirrors Photo with every field optional so model output with
// missing keys still decodes.
type partialPhoto struct {
	File         *string           `json:"file"`
	Identity     *string           `json:"identity"`
	MachineID    *string           `json:"machine_id"`
	CapturedAt   *int64            `json:"captured_at"`
	DetectedText *string           `json:"detected_text"`
	BoardText    *string           `json:"board_text"`
	Description  *string           `json:"description"`
	HasBoard     *bool             `json:"has_board"`
	Objects      objectList        `json:"objects"`
	BoardFields  map[string]string `json:"board_fields"`
	BoardLines   []string          `json:"board_lines"`
	OtherText    *string           `json:"other_text"`
	Notes        *string           `json:"notes"`
	Role         *string           `json:"role"`
	MachineType  *string           `json:"machine_type"`
}

// objectList accepts detected objects either as full records or as bare
// label strings.
type objectList []DetectedObject

func (l *objectList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	out := make(objectList, 0, len(raw))
	for _, item := range raw {
		var label string
		if err := json.Unmarshal(item, &label); err == nil {
			out = append(out, DetectedObject{Label: label})
			continue
		}
		var obj DetectedObject
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("object: %w", err)
		}
		out = append(out, obj)
	}
	*l = out
	return nil
}

func (p partialPhoto) photo() Photo {
	identity := deref(p.Identity)
	if identity == "" {
		identity = deref(p.MachineID)
	}
	detected := deref(p.DetectedText)
	if detected == "" {
		detected = deref(p.BoardText)
	}
	return Photo{
		File:         strings.TrimSpace(deref(p.File)),
		Identity:     identity,
		CapturedAt:   p.CapturedAt,
		DetectedText: detected,
		Description:  deref(p.Description),
		HasBoard:     p.HasBoard != nil && *p.HasBoard,
		Objects:      []DetectedObject(p.Objects),
		BoardFields:  p.BoardFields,
		BoardLines:   p.BoardLines,
		OtherText:    deref(p.OtherText),
		Notes:        deref(p.Notes),
		Role:         deref(p.Role),
		MachineType:  deref(p.MachineType),
	}
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// ParseRecord decodes one annotation from raw model output. Missing fields
// default to their zero values; machine_id and board_text are accepted as
// aliases for identity and detected_text.
func ParseRecord(raw string) (Photo, error) {
	payload, ok := ExtractJSONObject(raw)
	if !ok {
		return Photo{}, ErrNoPayload
	}
	var partial partialPhoto
	if err := json.Unmarshal([]byte(payload), &partial); err != nil {
		return Photo{}, fmt.Errorf("decode annotation: %w", err)
	}
	return partial.photo(), nil
}

// ParseBatch decodes a JSON array of annotations from raw model output.
func ParseBatch(raw string) ([]Photo, error) {
	payload, ok := ExtractJSONArray(raw)
	if !ok {
		return nil, ErrNoPayload
	}
	var partials []partialPhoto
	if err := json.Unmarshal([]byte(payload), &partials); err != nil {
		return nil, fmt.Errorf("decode annotation batch: %w", err)
	}
	photos := make([]Photo, 0, len(partials))
	for _, p := range partials {
		photos = append(photos, p.photo())
	}
	return photos, nil
}
