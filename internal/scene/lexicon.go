package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Board-family label terms. ASCII terms match whole words of the label so
// "keyboard" is not a board; other terms match the normalized label as a
// substring.
var (
	boardTerms = []string{
		"board", "blackboard", "whiteboard", "signboard", "chalkboard",
		"黒板", "ホワイトボード", "看板", "表示板",
	}
	electronicBoardTerms = []string{
		"electronic board", "electronic blackboard", "digital board",
		"digital blackboard", "e-board",
		"電子黒板", "電子小黒板", "デジタル黒板", "デジタル小黒板", "電子ボード",
	}

	physicalBoards   = newTermSet(boardTerms)
	electronicBoards = newTermSet(electronicBoardTerms)
)

// DefaultMeasureLexicon lists labels that identify measuring tools.
func DefaultMeasureLexicon() []string {
	return []string{
		"tape measure", "measuring tape", "measure", "ruler",
		"level staff", "leveling staff", "levelling staff", "survey staff",
		"scale", "caliper", "calipers", "gauge",
		"メジャー", "巻尺", "スケール", "コンベックス", "箱尺", "標尺",
		"ノギス", "ゲージ", "検測", "定規", "リボンロッド",
	}
}

// foldLabel width-folds, composes, and case-folds s.
func foldLabel(s string) string {
	s = width.Fold.String(s)
	s = norm.NFC.String(s)
	return cases.Fold().String(s)
}

// NormalizeLabel folds s and strips whitespace, punctuation, and dash
// variants so "Tape-Measure" and "ｔａｐｅ ｍｅａｓｕｒｅ" compare equal. The
// katakana prolonged sound mark is kept.
func NormalizeLabel(s string) string {
	s = foldLabel(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || isDash(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDash(r rune) bool {
	switch r {
	case '-', '−', '‐', '‑', '–', '—', '―', '～', '~', '〜':
		return true
	}
	return unicode.Is(unicode.Pd, r)
}

func labelWords(folded string) []string {
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// termSet matches labels against a list of terms.
type termSet struct {
	phrases [][]string
	joined  map[string]struct{}
	compact []string
}

func newTermSet(terms []string) termSet {
	set := termSet{joined: make(map[string]struct{})}
	for _, term := range terms {
		folded := foldLabel(term)
		if isASCII(folded) {
			words := labelWords(folded)
			if len(words) == 0 {
				continue
			}
			set.phrases = append(set.phrases, words)
			set.joined[strings.Join(words, "")] = struct{}{}
			continue
		}
		if c := NormalizeLabel(term); c != "" {
			set.compact = append(set.compact, c)
		}
	}
	return set
}

// match reports whether any ASCII term appears as a run of whole words in
// label, or as a single word spelled without separators, or whether any
// other term is a substring of the normalized label.
func (s termSet) match(label string) bool {
	words := labelWords(foldLabel(label))
	for _, w := range words {
		if _, ok := s.joined[w]; ok {
			return true
		}
	}
	for _, phrase := range s.phrases {
		if containsRun(words, phrase) {
			return true
		}
	}
	if len(s.compact) == 0 {
		return false
	}
	compact := NormalizeLabel(label)
	for _, term := range s.compact {
		if strings.Contains(compact, term) {
			return true
		}
	}
	return false
}

func containsRun(words, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(words); i++ {
		ok := true
		for j, p := range phrase {
			if words[i+j] != p {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// NormalizeLexicon normalizes every term and drops blanks and duplicates.
func NormalizeLexicon(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		norm := NormalizeLabel(term)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

// ReadLexicon reads one term per line, skipping blank lines and lines
// starting with '#'.
func ReadLexicon(r io.Reader) ([]string, error) {
	var terms []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scene: read lexicon: %w", err)
	}
	return terms, nil
}

// LoadLexicon reads a lexicon file. An empty path returns the default lexicon.
// A file with no terms is an error so a typo never silently disables
// measure detection.
func LoadLexicon(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultMeasureLexicon(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: open lexicon %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	terms, err := ReadLexicon(f)
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", path, err)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("scene: lexicon %s has no terms", path)
	}
	return terms, nil
}
