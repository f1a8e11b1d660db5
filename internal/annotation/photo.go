package annotation

import (
	"slices"
	"strings"
)

// BBox is a normalized bounding box; every field lies in [0,1].
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// DetectedObject is one object reported by the vision model.
type DetectedObject struct {
	Label     string  `json:"label"`
	BBox      BBox    `json:"bbox"`
	AreaRatio float64 `json:"area_ratio"`
}

// Photo is the per-image annotation record. Identity and Group are the only
// fields the reasoning passes rewrite.
type Photo struct {
	File         string            `json:"file"`
	Identity     string            `json:"identity"`
	CapturedAt   *int64            `json:"captured_at,omitempty"`
	DetectedText string            `json:"detected_text"`
	Description  string            `json:"description"`
	HasBoard     bool              `json:"has_board"`
	Objects      []DetectedObject  `json:"objects,omitempty"`
	BoardFields  map[string]string `json:"board_fields,omitempty"`
	BoardLines   []string          `json:"board_lines,omitempty"`
	OtherText    string            `json:"other_text,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Role         string            `json:"role,omitempty"`
	MachineType  string            `json:"machine_type,omitempty"`
	Group        int               `json:"group"`
}

// Timestamp returns the capture time and whether it is known.
func (p Photo) Timestamp() (int64, bool) {
	if p.CapturedAt == nil {
		return 0, false
	}
	return *p.CapturedAt, true
}

// At returns a pointer to ts, for building photos with a known capture time.
func At(ts int64) *int64 {
	return &ts
}

// CompareCapture orders photos by capture time ascending with unknown times
// last, then by filename.
func CompareCapture(a, b Photo) int {
	at, aok := a.Timestamp()
	bt, bok := b.Timestamp()
	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case aok && bok && at != bt:
		if at < bt {
			return -1
		}
		return 1
	}
	return strings.Compare(a.File, b.File)
}

// SortByCapture sorts photos in place by (captured_at, file).
func SortByCapture(photos []Photo) {
	slices.SortStableFunc(photos, CompareCapture)
}

// Clone returns a copy of the snapshot. Slices and maps inside each photo are
// shared; passes only rewrite scalar fields.
func Clone(photos []Photo) []Photo {
	if photos == nil {
		return nil
	}
	out := make([]Photo, len(photos))
	copy(out, photos)
	return out
}

// SortByFile returns a copy of photos ordered by filename.
func SortByFile(photos []Photo) []Photo {
	out := Clone(photos)
	slices.SortStableFunc(out, func(a, b Photo) int {
		return strings.Compare(a.File, b.File)
	})
	return out
}

// Gap returns the absolute difference between two capture times in seconds.
// An unknown time on either side yields zero so it never forces a split.
func Gap(prev, curr Photo) int64 {
	pt, pok := prev.Timestamp()
	ct, cok := curr.Timestamp()
	if !pok || !cok {
		return 0
	}
	if ct >= pt {
		return ct - pt
	}
	return pt - ct
}
