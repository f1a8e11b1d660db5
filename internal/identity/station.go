package identity

import (
	"regexp"
	"strings"
)

// stationPattern matches the earliest "No."/"No "/"NO."/"NO " marker and the
// first ASCII digit run after it. Any non-digit characters in between are
// skipped, so a match exists only when some digit follows the first marker.
var stationPattern = regexp.MustCompile(`(?:No\.|No |NO\.|NO )\D*([0-9]+)`)

// ExtractStation returns the normalized "No.<digits>" station marker in text.
func ExtractStation(text string) (string, bool) {
	m := stationPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return "No." + m[1], true
}

// FirstStation tries each text in order and returns the first station found.
func FirstStation(texts ...string) (string, bool) {
	for _, text := range texts {
		if text == "" {
			continue
		}
		if station, ok := ExtractStation(text); ok {
			return station, true
		}
	}
	return "", false
}

// Rules holds the attachment-road keyword and the identity prefix written for
// attachment-road photos.
type Rules struct {
	Keyword string
	Prefix  string
}

// DefaultRules returns the built-in attachment-road vocabulary.
func DefaultRules() Rules {
	return Rules{Keyword: DefaultKeyword, Prefix: DefaultKeyword}
}

// DefaultKeyword is the attachment-road term written on boards.
const DefaultKeyword = "取付道路"

func (r Rules) prefix() string {
	if r.Prefix != "" {
		return r.Prefix
	}
	return r.Keyword
}

// Contains reports whether text mentions the attachment-road keyword.
func (r Rules) Contains(text string) bool {
	return r.Keyword != "" && strings.Contains(text, r.Keyword)
}

// AttachmentIdentity formats the canonical identity for an attachment-road station.
func (r Rules) AttachmentIdentity(station string) string {
	return r.prefix() + " " + station
}
