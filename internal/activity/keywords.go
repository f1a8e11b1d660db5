package activity

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize splits text on whitespace, commas, and Japanese punctuation after
// width folding.
func Tokenize(text string) []string {
	return strings.FieldsFunc(fold(text), isSeparator)
}

func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case ',', '、', '。', '，', '．', '・', '：', '；', '「', '」', '『', '』',
		'（', '）', '【', '】', '〔', '〕', '〈', '〉', '《', '》':
		return true
	}
	return false
}

// rejected reports tokens that can never name an activity: anything carrying a
// digit or ASCII punctuation.
func rejected(token string) bool {
	for _, r := range token {
		if unicode.IsDigit(r) {
			return true
		}
		if r < utf8.RuneSelf && (unicode.IsPunct(r) || unicode.IsSymbol(r)) {
			return true
		}
	}
	return false
}

type keywordHit struct {
	term  string
	count int
	order int
	bonus int
}

// keywordIndex is the allowlist prepared for matching.
type keywordIndex struct {
	dict      Dictionary
	stop      map[string]struct{}
	allow     map[string]struct{}
	byLength  []string
	runeCount map[string]int
}

func newKeywordIndex(dict Dictionary) keywordIndex {
	idx := keywordIndex{
		dict:      dict,
		stop:      make(map[string]struct{}, len(dict.Stopwords)),
		allow:     make(map[string]struct{}, len(dict.Allowlist)),
		runeCount: make(map[string]int, len(dict.Allowlist)),
	}
	for _, w := range dict.Stopwords {
		idx.stop[w] = struct{}{}
	}
	for _, w := range dict.Allowlist {
		idx.allow[w] = struct{}{}
		idx.runeCount[w] = utf8.RuneCountInString(w)
		idx.byLength = append(idx.byLength, w)
	}
	slices.SortFunc(idx.byLength, func(a, b string) int {
		if c := cmp.Compare(idx.runeCount[b], idx.runeCount[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return idx
}

// Top returns up to k allowlist terms found in text, ranked by
// (bonus, count, first occurrence).
func (idx keywordIndex) Top(text string, k int) []string {
	if k <= 0 {
		return nil
	}
	hits := make(map[string]*keywordHit)
	order := 0
	credit := func(term string) {
		hit, ok := hits[term]
		if !ok {
			hit = &keywordHit{term: term, order: order, bonus: idx.dict.bonus(term)}
			hits[term] = hit
			order++
		}
		hit.count++
	}

	for _, token := range Tokenize(text) {
		if _, stop := idx.stop[token]; stop || rejected(token) {
			continue
		}
		if _, ok := idx.allow[token]; ok {
			credit(token)
			continue
		}
		for _, term := range idx.compoundTerms(token) {
			credit(term)
		}
	}

	ranked := make([]*keywordHit, 0, len(hits))
	for _, hit := range hits {
		ranked = append(ranked, hit)
	}
	slices.SortFunc(ranked, func(a, b *keywordHit) int {
		if c := cmp.Compare(b.bonus, a.bonus); c != 0 {
			return c
		}
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]string, len(ranked))
	for i, hit := range ranked {
		out[i] = hit.term
	}
	return out
}

type span struct {
	start int
	runes int
	term  string
}

// compoundTerms returns every allowlist term contained in token, each once,
// ordered by first position and then longest first.
func (idx keywordIndex) compoundTerms(token string) []string {
	var found []span
	for _, term := range idx.byLength {
		at := strings.Index(token, term)
		if at < 0 {
			continue
		}
		found = append(found, span{start: at, runes: idx.runeCount[term], term: term})
	}
	slices.SortFunc(found, func(a, b span) int {
		if c := cmp.Compare(a.start, b.start); c != 0 {
			return c
		}
		return cmp.Compare(b.runes, a.runes)
	})
	out := make([]string, len(found))
	for i, s := range found {
		out[i] = s.term
	}
	return out
}

// ExtractTopKeywords ranks allowlist terms in text using dict.
func ExtractTopKeywords(text string, k int, dict Dictionary) []string {
	return newKeywordIndex(dict.Normalized()).Top(text, k)
}
