package identity

import (
	"sitephoto/internal/annotation"
)

// Normalize returns the canonical identity for one photo. It looks only at the
// photo's own fields: when the board or description text mentions the
// attachment road and a station number can be read from that text (or, failing
// that, from the current identity), the identity becomes "<prefix> No.<n>".
// Otherwise the identity is returned unchanged.
func (r Rules) Normalize(photo annotation.Photo) string {
	text := photo.DetectedText + photo.Description
	if !r.Contains(text) {
		return photo.Identity
	}
	station, ok := FirstStation(text, photo.Identity)
	if !ok {
		return photo.Identity
	}
	return r.AttachmentIdentity(station)
}

// AttachmentHint reports whether the photo belongs to the attachment road
// according to its identity or detected text.
func (r Rules) AttachmentHint(photo annotation.Photo) bool {
	return r.Contains(photo.Identity) || r.Contains(photo.DetectedText)
}

// NormalizeAll returns a new snapshot with every identity normalized, and the
// number of identities that changed.
func (r Rules) NormalizeAll(photos []annotation.Photo) ([]annotation.Photo, int) {
	out := annotation.Clone(photos)
	changed := 0
	for i := range out {
		next := r.Normalize(out[i])
		if next != out[i].Identity {
			out[i].Identity = next
			changed++
		}
	}
	return out, changed
}
