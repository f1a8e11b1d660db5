package scene

import "sitephoto/internal/annotation"

// Scene types.
const (
	Overview         = "overview"
	BoardWithMeasure = "board_with_measure"
	MeasureCloseup   = "measure_closeup"
)

// Defaults for Rules.
const (
	DefaultBoardThreshold   = 0.15
	DefaultMeasureThreshold = 0.25
)

// Rules holds classifier thresholds and the normalized measure lexicon.
// Build it with NewRules so both call sites share one normalization.
type Rules struct {
	IncludeElectronicBoard bool
	BoardThreshold         float64
	MeasureThreshold       float64
	lexicon                []string
	measures               termSet
}

// NewRules normalizes lexicon once. A nil lexicon selects the default.
func NewRules(includeElectronic bool, boardThreshold, measureThreshold float64, lexicon []string) Rules {
	if lexicon == nil {
		lexicon = DefaultMeasureLexicon()
	}
	return Rules{
		IncludeElectronicBoard: includeElectronic,
		BoardThreshold:         boardThreshold,
		MeasureThreshold:       measureThreshold,
		lexicon:                NormalizeLexicon(lexicon),
		measures:               newTermSet(lexicon),
	}
}

// DefaultRules returns the default thresholds with electronic boards excluded.
func DefaultRules() Rules {
	return NewRules(false, DefaultBoardThreshold, DefaultMeasureThreshold, nil)
}

// Lexicon returns the normalized measure terms.
func (r Rules) Lexicon() []string {
	return append([]string(nil), r.lexicon...)
}

// Classify picks a scene type from detected object areas.
func Classify(objects []annotation.DetectedObject, includeElectronic bool, boardThreshold, measureThreshold float64, lexicon []string) string {
	return NewRules(includeElectronic, boardThreshold, measureThreshold, lexicon).Classify(objects)
}

// Classify picks a scene type from detected object areas.
func (r Rules) Classify(objects []annotation.DetectedObject) string {
	maxBoard, maxMeasure := r.Areas(objects)
	switch {
	case maxMeasure >= r.MeasureThreshold:
		return MeasureCloseup
	case maxBoard >= r.BoardThreshold, maxBoard > 0 && maxMeasure > 0:
		return BoardWithMeasure
	}
	return Overview
}

// Areas returns the largest board and measure area ratios.
func (r Rules) Areas(objects []annotation.DetectedObject) (maxBoard, maxMeasure float64) {
	for _, obj := range objects {
		if r.isBoard(obj.Label) && obj.AreaRatio > maxBoard {
			maxBoard = obj.AreaRatio
		}
		if r.isMeasure(obj.Label) && obj.AreaRatio > maxMeasure {
			maxMeasure = obj.AreaRatio
		}
	}
	return maxBoard, maxMeasure
}

func (r Rules) isBoard(label string) bool {
	if IsElectronicBoard(label) {
		return r.IncludeElectronicBoard
	}
	return IsPhysicalBoard(label)
}

func (r Rules) isMeasure(label string) bool {
	return r.measures.match(label)
}

// IsPhysicalBoard reports whether label names a board-family object.
func IsPhysicalBoard(label string) bool {
	return physicalBoards.match(label)
}

// IsElectronicBoard reports whether label names an electronic board.
func IsElectronicBoard(label string) bool {
	return electronicBoards.match(label)
}

// ElectronicBoardOnly reports whether every board-family object is an
// electronic board and at least one exists.
func ElectronicBoardOnly(objects []annotation.DetectedObject) bool {
	found := false
	for _, obj := range objects {
		if IsElectronicBoard(obj.Label) {
			found = true
			continue
		}
		if IsPhysicalBoard(obj.Label) {
			return false
		}
	}
	return found
}

// ClassifyPhoto is the record-level classifier. When electronic boards are
// excluded and they are the only boards in the photo, the scene is overview.
func (r Rules) ClassifyPhoto(photo annotation.Photo) string {
	kind, _ := r.Decide(photo)
	return kind
}

// Reasons reported by Decide.
const (
	ReasonElectronicOnly  = "electronic_board_only"
	ReasonMeasureArea     = "measure_area"
	ReasonBoardArea       = "board_area"
	ReasonBoardAndMeasure = "board_and_measure"
	ReasonNoMatch         = "no_match"
)

// Decide classifies photo and names the rule that fired.
func (r Rules) Decide(photo annotation.Photo) (kind, reason string) {
	if !r.IncludeElectronicBoard && ElectronicBoardOnly(photo.Objects) {
		return Overview, ReasonElectronicOnly
	}
	maxBoard, maxMeasure := r.Areas(photo.Objects)
	switch {
	case maxMeasure >= r.MeasureThreshold:
		return MeasureCloseup, ReasonMeasureArea
	case maxBoard >= r.BoardThreshold:
		return BoardWithMeasure, ReasonBoardArea
	case maxBoard > 0 && maxMeasure > 0:
		return BoardWithMeasure, ReasonBoardAndMeasure
	}
	return Overview, ReasonNoMatch
}
