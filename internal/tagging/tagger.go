package tagging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"sitephoto/internal/activity"
	"sitephoto/internal/annotation"
	"sitephoto/internal/logging"
	"sitephoto/internal/scene"
	"sitephoto/internal/textutil"
)

// Evidence weights per source.
const (
	weightBoard   = 3
	weightKeyword = 2
	weightText    = 1
)

// ErrNoCategories is returned when a folder has no category subdirectories.
var ErrNoCategories = errors.New("no category folders")

// Discover lists the subdirectories of root usable as categories, in name
// order. Hidden directories, names in skip, and names that would change when
// sanitized are left out.
func Discover(root string, skip ...string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("tagging: read %s: %w", root, err)
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") || slices.Contains(skip, name) {
			continue
		}
		if textutil.SanitizeFolderName(name, "") != name {
			continue
		}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w in %s; create one subdirectory per category first", ErrNoCategories, root)
	}
	return out, nil
}

type category struct {
	name  string
	whole string
	parts []string
}

// newCategory splits multi-word names such as "舗装_完了" so each part can
// earn partial credit.
func newCategory(name string) category {
	c := category{name: name, whole: scene.NormalizeLabel(name)}
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '・' || unicode.IsSpace(r)
	})
	if len(words) < 2 {
		return c
	}
	for _, w := range words {
		if part := scene.NormalizeLabel(w); utf8.RuneCountInString(part) >= 2 {
			c.parts = append(c.parts, part)
		}
	}
	return c
}

func (c category) score(text string, weight int) int {
	if text == "" || c.whole == "" {
		return 0
	}
	if strings.Contains(text, c.whole) {
		return 2 * weight
	}
	score := 0
	for _, part := range c.parts {
		if strings.Contains(text, part) {
			score += weight
		}
	}
	return score
}

func (c category) keywordScore(keyword string) int {
	if keyword == "" || c.whole == "" {
		return 0
	}
	if strings.Contains(c.whole, keyword) || strings.Contains(keyword, c.whole) {
		return weightKeyword
	}
	return 0
}

// Options configures a Tagger.
type Options struct {
	Dictionary activity.Dictionary
	TopK       int
}

// Result is one tagged photo. Tag is empty when nothing matched.
type Result struct {
	File       string  `json:"file"`
	Tag        string  `json:"tag,omitempty"`
	Score      int     `json:"score"`
	Confidence float64 `json:"confidence"`
}

// Tagger scores photos against a fixed category list.
type Tagger struct {
	categories []category
	keywords   *activity.Namer
	logger     *slog.Logger
}

// New prepares a tagger for categories. A nil logger disables logging.
func New(categories []string, opts Options, logger *slog.Logger) *Tagger {
	t := &Tagger{
		keywords: activity.NewNamer(activity.Options{TopK: opts.TopK, Dictionary: opts.Dictionary}, nil),
		logger:   logging.NewComponentLogger(logger, "tagging"),
	}
	for _, name := range categories {
		t.categories = append(t.categories, newCategory(name))
	}
	return t
}

// Tag picks the best category for photo. Ties go to the category that sorts
// first.
func (t *Tagger) Tag(photo annotation.Photo) Result {
	board := normalizeAll(boardTexts(photo)...)
	other := normalizeAll(photo.OtherText, photo.Notes, photo.Description)
	labels := make([]string, 0, len(photo.Objects))
	for _, obj := range photo.Objects {
		labels = append(labels, obj.Label)
	}
	objects := normalizeAll(labels...)
	keywords := t.keywords.Keywords(activity.InputFromPhoto(photo).Text())

	res := Result{File: photo.File}
	total, best := 0, -1
	for i, c := range t.categories {
		score := c.score(board, weightBoard) + c.score(other, weightText) + c.score(objects, weightText)
		for _, kw := range keywords {
			score += c.keywordScore(scene.NormalizeLabel(kw))
		}
		total += score
		if score > 0 && (best < 0 || score > res.Score) {
			best = i
			res.Score = score
		}
	}
	if best >= 0 {
		res.Tag = t.categories[best].name
		res.Confidence = float64(res.Score) / float64(total)
	}
	return res
}

// TagAll tags photos in filename order.
func (t *Tagger) TagAll(photos []annotation.Photo) []Result {
	results := make([]Result, 0, len(photos))
	untagged := 0
	for _, photo := range annotation.SortByFile(photos) {
		res := t.Tag(photo)
		results = append(results, res)
		reason := "category_match"
		if res.Tag == "" {
			reason = "no_match"
			untagged++
		}
		t.logger.Debug("tag decision", logging.DecisionAttrs("tag", res.Tag, reason,
			logging.String(logging.FieldFile, res.File),
			logging.Int("score", res.Score),
			logging.Float64("confidence", res.Confidence),
		)...)
	}
	t.logger.Info("tagging complete",
		logging.Int("photos", len(results)),
		logging.Int("categories", len(t.categories)),
		logging.Int("untagged", untagged),
	)
	return results
}

// Counts tallies results per tag.
func Counts(results []Result) map[string]int {
	counts := make(map[string]int)
	for _, res := range results {
		if res.Tag != "" {
			counts[res.Tag]++
		}
	}
	return counts
}

func boardTexts(photo annotation.Photo) []string {
	keys := make([]string, 0, len(photo.BoardFields))
	for key := range photo.BoardFields {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	out := make([]string, 0, 2*len(keys)+len(photo.BoardLines)+1)
	for _, key := range keys {
		out = append(out, key, photo.BoardFields[key])
	}
	out = append(out, photo.BoardLines...)
	return append(out, photo.DetectedText)
}

// normalizeAll joins normalized texts with newlines, which normalization
// never produces, so a category cannot match across two sources.
func normalizeAll(texts ...string) string {
	parts := make([]string, 0, len(texts))
	for _, text := range texts {
		if n := scene.NormalizeLabel(text); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "\n")
}
