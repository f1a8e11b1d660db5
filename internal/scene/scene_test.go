package scene_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sitephoto/internal/annotation"
	"sitephoto/internal/scene"
)

type obj = annotation.DetectedObject

func TestClassifyDefaults(t *testing.T) {
	rules := scene.DefaultRules()
	tests := []struct {
		name    string
		objects []obj
		want    string
	}{
		{
			name:    "board and small tape",
			objects: []obj{{Label: "board", AreaRatio: 0.18}, {Label: "tape-measure", AreaRatio: 0.05}},
			want:    scene.BoardWithMeasure,
		},
		{
			name:    "large tape",
			objects: []obj{{Label: "tape-measure", AreaRatio: 0.32}},
			want:    scene.MeasureCloseup,
		},
		{name: "empty", objects: nil, want: scene.Overview},
		{
			name:    "small board with small measure",
			objects: []obj{{Label: "黒板", AreaRatio: 0.05}, {Label: "メジャー", AreaRatio: 0.02}},
			want:    scene.BoardWithMeasure,
		},
		{
			name:    "small board alone",
			objects: []obj{{Label: "Board", AreaRatio: 0.05}},
			want:    scene.Overview,
		},
		{
			name:    "full width measure label",
			objects: []obj{{Label: "ＴＡＰＥ　ＭＥＡＳＵＲＥ", AreaRatio: 0.40}},
			want:    scene.MeasureCloseup,
		},
		{
			name:    "electronic board excluded",
			objects: []obj{{Label: "電子黒板", AreaRatio: 0.5}},
			want:    scene.Overview,
		},
		{
			name:    "unrelated objects",
			objects: []obj{{Label: "excavator", AreaRatio: 0.7}, {Label: "person", AreaRatio: 0.2}},
			want:    scene.Overview,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rules.Classify(tt.objects); got != tt.want {
				t.Fatalf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyFunctionMatchesRules(t *testing.T) {
	objects := []obj{{Label: "board", AreaRatio: 0.18}, {Label: "tape-measure", AreaRatio: 0.05}}
	got := scene.Classify(objects, false, 0.15, 0.25, nil)
	if got != scene.BoardWithMeasure {
		t.Fatalf("Classify = %q", got)
	}
}

func TestElectronicBoardIncluded(t *testing.T) {
	rules := scene.NewRules(true, 0.15, 0.25, nil)
	photo := annotation.Photo{Objects: []obj{{Label: "電子黒板", AreaRatio: 0.3}}}
	if got := rules.ClassifyPhoto(photo); got != scene.BoardWithMeasure {
		t.Fatalf("ClassifyPhoto = %q", got)
	}
}

func TestClassifyPhotoForcesOverviewForElectronicOnly(t *testing.T) {
	rules := scene.DefaultRules()
	photo := annotation.Photo{Objects: []obj{
		{Label: "electronic board", AreaRatio: 0.4},
		{Label: "tape measure", AreaRatio: 0.3},
	}}
	if got := rules.ClassifyPhoto(photo); got != scene.Overview {
		t.Fatalf("ClassifyPhoto = %q, want overview", got)
	}
	if got := rules.Classify(photo.Objects); got != scene.MeasureCloseup {
		t.Fatalf("Classify = %q, want measure_closeup", got)
	}
}

func TestElectronicBoardOnly(t *testing.T) {
	if !scene.ElectronicBoardOnly([]obj{{Label: "デジタル黒板"}, {Label: "person"}}) {
		t.Fatal("expected electronic-only")
	}
	if scene.ElectronicBoardOnly([]obj{{Label: "電子黒板"}, {Label: "黒板"}}) {
		t.Fatal("physical board present")
	}
	if scene.ElectronicBoardOnly(nil) {
		t.Fatal("no boards at all")
	}
}

func TestElectronicBoardVariants(t *testing.T) {
	rules := scene.DefaultRules()
	for _, label := range []string{
		"電子小黒板", "electronic blackboard", "Digital Blackboard", "E-Board",
		"eboard", "ｅ－ｂｏａｒｄ", "デジタル小黒板",
	} {
		t.Run(label, func(t *testing.T) {
			objects := []obj{{Label: label, AreaRatio: 0.4}}
			if !scene.ElectronicBoardOnly(objects) {
				t.Fatalf("%q not recognized as electronic board", label)
			}
			photo := annotation.Photo{Objects: objects}
			if got := rules.ClassifyPhoto(photo); got != scene.Overview {
				t.Fatalf("ClassifyPhoto = %q, want overview", got)
			}
		})
	}
	if scene.IsElectronicBoard("whiteboard") {
		t.Fatal("whiteboard is a physical board")
	}
}

func TestLabelsThatOnlyContainTerms(t *testing.T) {
	rules := scene.DefaultRules()
	tests := []struct {
		label string
		want  string
	}{
		{label: "keyboard", want: scene.Overview},
		{label: "cardboard box", want: scene.Overview},
		{label: "clipboard", want: scene.Overview},
		{label: "staff", want: scene.Overview},
		{label: "スタッフ", want: scene.Overview},
		{label: "キーボード", want: scene.Overview},
		{label: "black board", want: scene.BoardWithMeasure},
		{label: "level staff", want: scene.MeasureCloseup},
		{label: "メジャー", want: scene.MeasureCloseup},
		{label: "ﾒｼﾞｬｰ", want: scene.MeasureCloseup},
		{label: "tapemeasure", want: scene.MeasureCloseup},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := rules.Classify([]obj{{Label: tt.label, AreaRatio: 0.4}})
			if got != tt.want {
				t.Fatalf("Classify(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestDecideReportsRule(t *testing.T) {
	rules := scene.DefaultRules()
	tests := []struct {
		objects    []obj
		kind, rule string
	}{
		{[]obj{{Label: "電子黒板", AreaRatio: 0.5}}, scene.Overview, scene.ReasonElectronicOnly},
		{[]obj{{Label: "巻尺", AreaRatio: 0.3}}, scene.MeasureCloseup, scene.ReasonMeasureArea},
		{[]obj{{Label: "黒板", AreaRatio: 0.2}}, scene.BoardWithMeasure, scene.ReasonBoardArea},
		{[]obj{{Label: "黒板", AreaRatio: 0.05}, {Label: "ruler", AreaRatio: 0.02}}, scene.BoardWithMeasure, scene.ReasonBoardAndMeasure},
		{nil, scene.Overview, scene.ReasonNoMatch},
	}
	for _, tt := range tests {
		kind, rule := rules.Decide(annotation.Photo{Objects: tt.objects})
		if kind != tt.kind || rule != tt.rule {
			t.Errorf("Decide(%+v) = %q, %q; want %q, %q", tt.objects, kind, rule, tt.kind, tt.rule)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := map[string]string{
		"Tape-Measure":   "tapemeasure",
		"ｔａｐｅ ｍｅａｓｕｒｅ": "tapemeasure",
		"メジャー":           "メジャー",
		"ﾒｼﾞｬｰ":          "メジャー",
		"巻尺（1m）":         "巻尺1m",
		"  ":             "",
	}
	for in, want := range tests {
		if got := scene.NormalizeLabel(in); got != want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadLexicon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.txt")
	content := "# custom terms\n\nレベル棒\n  pole  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	terms, err := scene.LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon: %v", err)
	}
	if strings.Join(terms, ",") != "レベル棒,pole" {
		t.Fatalf("terms = %v", terms)
	}

	rules := scene.NewRules(false, 0.15, 0.25, terms)
	if got := rules.Classify([]obj{{Label: "Survey Pole", AreaRatio: 0.3}}); got != scene.MeasureCloseup {
		t.Fatalf("custom lexicon not applied: %q", got)
	}
	if got := rules.Classify([]obj{{Label: "tape measure", AreaRatio: 0.3}}); got != scene.Overview {
		t.Fatalf("default lexicon leaked: %q", got)
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("# nothing\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := scene.LoadLexicon(empty); err == nil {
		t.Fatal("expected error for empty lexicon")
	}
	if terms, err := scene.LoadLexicon(""); err != nil || len(terms) == 0 {
		t.Fatalf("default lexicon: %v %v", terms, err)
	}
}
