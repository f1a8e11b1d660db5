package tagging_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"sitephoto/internal/activity"
	"sitephoto/internal/annotation"
	"sitephoto/internal/tagging"
	"sitephoto/internal/testsupport"
)

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"掘削", "舗装_完了", ".hidden", ".sitephoto", "state", "a:b"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	testsupport.WriteImages(t, root, "p1.jpg")

	got, err := tagging.Discover(root, "state")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if want := []string{"掘削", "舗装_完了"}; !slices.Equal(got, want) {
		t.Fatalf("Discover = %v, want %v", got, want)
	}

	if _, err := tagging.Discover(t.TempDir()); !errors.Is(err, tagging.ErrNoCategories) {
		t.Fatalf("empty folder err = %v", err)
	}
}

func TestTagPicksBestCategory(t *testing.T) {
	opts := tagging.Options{Dictionary: activity.DefaultDictionary()}
	tests := []struct {
		name       string
		categories []string
		photo      annotation.Photo
		want       string
	}{
		{
			name:       "board text names the category",
			categories: []string{"掘削", "舗装_完了", "安全管理"},
			photo:      testsupport.NewPhoto("a.jpg", "", testsupport.Text("床掘 掘削 状況")),
			want:       "掘削",
		},
		{
			name:       "description matches a multi-word category",
			categories: []string{"掘削", "舗装_完了", "安全管理"},
			photo:      testsupport.NewPhoto("a.jpg", "", testsupport.Description("舗装 完了 後")),
			want:       "舗装_完了",
		},
		{
			name:       "keyword inside a longer category name",
			categories: []string{"掘削工", "舗装工"},
			photo:      testsupport.NewPhoto("a.jpg", "", testsupport.Text("掘削")),
			want:       "掘削工",
		},
		{
			name:       "detected object label",
			categories: []string{"excavator", "roller"},
			photo:      testsupport.NewPhoto("a.jpg", "", testsupport.Object("Road Roller", 0.4)),
			want:       "roller",
		},
		{
			name:       "no evidence",
			categories: []string{"掘削", "舗装"},
			photo:      testsupport.NewPhoto("a.jpg", "", testsupport.Object("person", 0.2)),
			want:       "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tagging.New(tt.categories, opts, nil).Tag(tt.photo)
			if got.Tag != tt.want {
				t.Fatalf("Tag = %+v, want %q", got, tt.want)
			}
			if tt.want == "" && (got.Score != 0 || got.Confidence != 0) {
				t.Fatalf("untagged result carries a score: %+v", got)
			}
			if tt.want != "" && (got.Confidence <= 0 || got.Confidence > 1) {
				t.Fatalf("confidence out of range: %+v", got)
			}
		})
	}
}

func TestTagWholeNameOutranksPart(t *testing.T) {
	photo := testsupport.NewPhoto("a.jpg", "")
	photo.BoardFields = map[string]string{"工種": "舗装"}
	got := tagging.New([]string{"舗装_完了", "舗装"}, tagging.Options{}, nil).Tag(photo)
	if got.Tag != "舗装" || got.Score != 6 {
		t.Fatalf("Tag = %+v", got)
	}
	if got.Confidence != 6.0/9.0 {
		t.Fatalf("confidence = %v", got.Confidence)
	}
}

func TestTagAllOrderAndCounts(t *testing.T) {
	tagger := tagging.New([]string{"側溝", "舗装"}, tagging.Options{}, nil)
	results := tagger.TagAll([]annotation.Photo{
		testsupport.NewPhoto("c.jpg", "", testsupport.Text("舗装")),
		testsupport.NewPhoto("a.jpg", "", testsupport.Text("側溝 清掃")),
		testsupport.NewPhoto("b.jpg", ""),
	})
	var files, tags []string
	for _, r := range results {
		files = append(files, r.File)
		tags = append(tags, r.Tag)
	}
	if !slices.Equal(files, []string{"a.jpg", "b.jpg", "c.jpg"}) || !slices.Equal(tags, []string{"側溝", "", "舗装"}) {
		t.Fatalf("results = %+v", results)
	}
	counts := tagging.Counts(results)
	if len(counts) != 2 || counts["側溝"] != 1 || counts["舗装"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}
