package activity

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/width"
	"gopkg.in/yaml.v3"
)

// BonusTier raises the rank of allowlist terms containing any marker.
type BonusTier struct {
	Weight  int      `yaml:"weight"`
	Markers []string `yaml:"markers"`
}

// Dictionary is the vocabulary the namer works from.
type Dictionary struct {
	MetadataKeys []string    `yaml:"metadata_keys"`
	RoleSuffixes []string    `yaml:"role_suffixes"`
	Stopwords    []string    `yaml:"stopwords"`
	Allowlist    []string    `yaml:"allowlist"`
	Bonus        []BonusTier `yaml:"bonus"`
}

// DefaultDictionary returns the built-in construction-site vocabulary.
func DefaultDictionary() Dictionary {
	return Dictionary{
		MetadataKeys: []string{
			"工事名", "工種", "種別", "細別", "測点", "日付", "撮影日", "撮影者",
			"撮影日時", "場所", "路線名", "施工者", "受注者", "発注者",
		},
		RoleSuffixes: []string{"者", "員", "担当", "責任者", "監督"},
		Stopwords: []string{
			"工事名", "工事", "工種", "種別", "細別", "測点", "日付", "撮影日",
			"撮影者", "施工者", "受注者", "発注者", "場所", "路線名", "備考",
			"写真", "黒板", "状況", "株式会社", "令和", "平成",
		},
		Allowlist: []string{
			"設置状況", "施工状況", "完了状況", "作業状況", "使用状況", "保管状況",
			"搬入状況", "撤去状況", "養生状況", "清掃状況", "出来形状況", "舗装状態",
			"材料検査", "立会検査", "段階検査", "品質検査", "指示事項", "安全点検",
			"始業前点検", "段階確認", "立会確認", "埋設物確認", "出来形確認",
			"交通保安施設", "交通誘導", "安全管理", "品質管理", "出来形", "着手前",
			"完成", "朝礼", "安全訓練", "危険予知", "打合せ", "測量", "丁張",
			"掘削", "床掘", "埋戻し", "盛土", "切土", "敷均し", "締固め", "転圧",
			"路盤工", "舗装", "型枠", "鉄筋", "配筋", "コンクリート打設", "養生",
			"清掃", "撤去", "設置", "仮設", "排水", "側溝", "区画線", "防護柵",
			"ガードレール", "伐採", "除草", "法面", "擁壁", "基礎", "試掘", "搬入",
			"片付け",
		},
		Bonus: []BonusTier{
			{Weight: 3, Markers: []string{"状況", "状態"}},
			{Weight: 2, Markers: []string{"検査", "指示", "点検"}},
			{Weight: 1, Markers: []string{"確認"}},
		},
	}
}

// dictionaryFile is the on-disk override. Lists extend the defaults unless
// replace is set, in which case any non-empty list replaces its default.
type dictionaryFile struct {
	Replace    bool `yaml:"replace"`
	Dictionary `yaml:",inline"`
}

// ParseDictionaryYAML decodes an override and applies it over the defaults.
func ParseDictionaryYAML(data []byte) (Dictionary, error) {
	base := DefaultDictionary()
	if len(bytes.TrimSpace(data)) == 0 {
		return base, nil
	}
	var file dictionaryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Dictionary{}, fmt.Errorf("activity: decode dictionary: %w", err)
	}
	merge := func(def, override []string) []string {
		if len(override) == 0 {
			return def
		}
		if file.Replace {
			return override
		}
		return append(def, override...)
	}
	base.MetadataKeys = merge(base.MetadataKeys, file.MetadataKeys)
	base.RoleSuffixes = merge(base.RoleSuffixes, file.RoleSuffixes)
	base.Stopwords = merge(base.Stopwords, file.Stopwords)
	base.Allowlist = merge(base.Allowlist, file.Allowlist)
	if len(file.Bonus) > 0 {
		base.Bonus = file.Bonus
	}
	return base.Normalized(), nil
}

// LoadDictionary reads a YAML override file. An empty path yields the defaults.
func LoadDictionary(path string) (Dictionary, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultDictionary().Normalized(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionary{}, fmt.Errorf("activity: read dictionary %s: %w", path, err)
	}
	dict, err := ParseDictionaryYAML(data)
	if err != nil {
		return Dictionary{}, fmt.Errorf("activity: %s: %w", path, err)
	}
	return dict, nil
}

// Normalized width-folds every term, drops blanks and duplicates, and orders
// bonus tiers by descending weight.
func (d Dictionary) Normalized() Dictionary {
	out := Dictionary{
		MetadataKeys: foldTerms(d.MetadataKeys),
		RoleSuffixes: foldTerms(d.RoleSuffixes),
		Stopwords:    foldTerms(d.Stopwords),
		Allowlist:    foldTerms(d.Allowlist),
	}
	for _, tier := range d.Bonus {
		markers := foldTerms(tier.Markers)
		if tier.Weight <= 0 || len(markers) == 0 {
			continue
		}
		out.Bonus = append(out.Bonus, BonusTier{Weight: tier.Weight, Markers: markers})
	}
	slices.SortStableFunc(out.Bonus, func(a, b BonusTier) int { return b.Weight - a.Weight })
	return out
}

// bonus returns the weight of the highest tier whose marker term contains.
func (d Dictionary) bonus(term string) int {
	for _, tier := range d.Bonus {
		for _, marker := range tier.Markers {
			if strings.Contains(term, marker) {
				return tier.Weight
			}
		}
	}
	return 0
}

func foldTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = fold(term)
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}

// fold maps full-width ASCII and ideographic spaces to their narrow forms and
// half-width katakana to full width.
func fold(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}
