package testsupport

import "sitephoto/internal/annotation"

// PhotoOption customizes a test photo.
type PhotoOption func(*annotation.Photo)

// NewPhoto builds an annotation for file with the given identity.
func NewPhoto(file, identity string, opts ...PhotoOption) annotation.Photo {
	p := annotation.Photo{File: file, Identity: identity}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// At sets the capture time.
func At(ts int64) PhotoOption {
	return func(p *annotation.Photo) { p.CapturedAt = annotation.At(ts) }
}

// Text sets the detected board text.
func Text(text string) PhotoOption {
	return func(p *annotation.Photo) { p.DetectedText = text }
}

// Board marks the photo as showing a board.
func Board() PhotoOption {
	return func(p *annotation.Photo) { p.HasBoard = true }
}

// Description sets the free-form description.
func Description(text string) PhotoOption {
	return func(p *annotation.Photo) { p.Description = text }
}

// Object appends a detected object.
func Object(label string, area float64) PhotoOption {
	return func(p *annotation.Photo) {
		p.Objects = append(p.Objects, annotation.DetectedObject{Label: label, AreaRatio: area})
	}
}
