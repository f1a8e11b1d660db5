package activity

import (
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"sitephoto/internal/annotation"
	"sitephoto/internal/logging"
)

// Defaults for the activity profile.
const (
	DefaultGapMinutes = 10
	DefaultTopK       = 2
	DefaultFallback   = "unclassified"
)

// Rule names which naming rule produced a result.
type Rule string

const (
	RuleFields   Rule = "fields"
	RuleKeywords Rule = "keywords"
	RuleCarry    Rule = "carry"
	RuleFallback Rule = "fallback"
)

// Frame is the previous photo's resolved activity during a temporal scan.
type Frame struct {
	Activity string
	TS       int64
}

// Input is the per-photo text the namer reads.
type Input struct {
	File       string
	TS         *int64
	Fields     map[string]string
	BoardLines []string
	BoardText  string
	OtherText  string
	Notes      string
}

// InputFromPhoto maps an annotation record onto namer input. Notes fall back to
// the free-form description.
func InputFromPhoto(p annotation.Photo) Input {
	notes := p.Notes
	if strings.TrimSpace(notes) == "" {
		notes = p.Description
	}
	return Input{
		File:       p.File,
		TS:         p.CapturedAt,
		Fields:     p.BoardFields,
		BoardLines: p.BoardLines,
		BoardText:  p.DetectedText,
		OtherText:  p.OtherText,
		Notes:      notes,
	}
}

// Text returns the best available free text: board lines, else board and
// other text, else notes.
func (in Input) Text() string {
	if len(in.BoardLines) > 0 {
		return strings.Join(in.BoardLines, "\n")
	}
	combined := strings.TrimSpace(in.BoardText + " " + in.OtherText)
	if combined != "" {
		return combined
	}
	return in.Notes
}

// Options configures a Namer.
type Options struct {
	GapMinutes int
	TopK       int
	Fallback   string
	Dictionary Dictionary
}

// DefaultOptions returns the activity profile defaults.
func DefaultOptions() Options {
	return Options{
		GapMinutes: DefaultGapMinutes,
		TopK:       DefaultTopK,
		Fallback:   DefaultFallback,
		Dictionary: DefaultDictionary(),
	}
}

// Namer turns per-photo text into activity folder names.
type Namer struct {
	opts     Options
	index    keywordIndex
	metadata map[string]struct{}
	suffixes []string
	logger   *slog.Logger
}

// NewNamer prepares a namer. A nil logger disables logging.
func NewNamer(opts Options, logger *slog.Logger) *Namer {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.GapMinutes < 0 {
		opts.GapMinutes = 0
	}
	if strings.TrimSpace(opts.Fallback) == "" {
		opts.Fallback = DefaultFallback
	}
	dict := opts.Dictionary.Normalized()
	n := &Namer{
		opts:     opts,
		index:    newKeywordIndex(dict),
		metadata: make(map[string]struct{}, len(dict.MetadataKeys)),
		suffixes: dict.RoleSuffixes,
		logger:   logging.NewComponentLogger(logger, "activity"),
	}
	for _, key := range dict.MetadataKeys {
		n.metadata[key] = struct{}{}
	}
	return n
}

// FromFields names an activity from structured board fields. It reports false
// when no usable field remains after filtering.
func (n *Namer) FromFields(fields map[string]string) (string, bool) {
	if len(fields) == 0 {
		return "", false
	}
	// Raw keys that fold to the same key resolve to the first usable one in
	// sorted order.
	rawKeys := make([]string, 0, len(fields))
	for rawKey := range fields {
		rawKeys = append(rawKeys, rawKey)
	}
	slices.Sort(rawKeys)

	keys := make([]string, 0, len(fields))
	values := make(map[string]string, len(fields))
	for _, rawKey := range rawKeys {
		key := fold(rawKey)
		if _, seen := values[key]; seen {
			continue
		}
		value := fold(fields[rawKey])
		if key == "" || n.isMetadata(key) || hasDigit(value) {
			continue
		}
		keys = append(keys, key)
		values[key] = value
	}
	slices.Sort(keys)

	switch {
	case len(keys) >= 2:
		return keys[0] + "_" + keys[1], true
	case len(keys) == 1 && values[keys[0]] != "":
		return keys[0] + "_" + values[keys[0]], true
	case len(keys) == 1:
		return keys[0], true
	}
	return "", false
}

func (n *Namer) isMetadata(key string) bool {
	if _, ok := n.metadata[key]; ok {
		return true
	}
	for _, suffix := range n.suffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}

// Keywords returns the top allowlist terms in text.
func (n *Namer) Keywords(text string) []string {
	return n.index.Top(text, n.opts.TopK)
}

// Name resolves one photo. prev is the previous photo's frame, or nil at the
// start of a scan.
func (n *Namer) Name(in Input, prev *Frame) (string, Rule) {
	if name, ok := n.FromFields(in.Fields); ok {
		return name, RuleFields
	}
	if terms := n.Keywords(in.Text()); len(terms) > 0 {
		return strings.Join(terms, "_"), RuleKeywords
	}
	if prev != nil && in.TS != nil && *in.TS-prev.TS < int64(n.opts.GapMinutes)*60 {
		return prev.Activity, RuleCarry
	}
	return n.opts.Fallback, RuleFallback
}

// Result is one named photo.
type Result struct {
	File     string `json:"file"`
	Activity string `json:"activity"`
	Rule     Rule   `json:"rule"`
}

// NameAll scans inputs in capture order (unknown times last, then filename),
// carrying the previous frame forward. Results follow the scan order.
func (n *Namer) NameAll(inputs []Input) []Result {
	ordered := slices.Clone(inputs)
	slices.SortStableFunc(ordered, compareInput)

	results := make([]Result, 0, len(ordered))
	var prev *Frame
	counts := make(map[Rule]int)
	for _, in := range ordered {
		name, rule := n.Name(in, prev)
		results = append(results, Result{File: in.File, Activity: name, Rule: rule})
		counts[rule]++
		n.logger.Debug("activity decision", logging.DecisionAttrs("activity", name, string(rule),
			logging.String(logging.FieldFile, in.File),
		)...)
		if in.TS != nil {
			prev = &Frame{Activity: name, TS: *in.TS}
		} else {
			prev = nil
		}
	}
	n.logger.Info("activity naming complete",
		logging.Int("photos", len(results)),
		logging.Int("by_fields", counts[RuleFields]),
		logging.Int("by_keywords", counts[RuleKeywords]),
		logging.Int("carried", counts[RuleCarry]),
		logging.Int("fallback", counts[RuleFallback]),
	)
	return results
}

func compareInput(a, b Input) int {
	return annotation.CompareCapture(
		annotation.Photo{File: a.File, CapturedAt: a.TS},
		annotation.Photo{File: b.File, CapturedAt: b.TS},
	)
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
