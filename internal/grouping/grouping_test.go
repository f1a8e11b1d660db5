package grouping_test

import (
	"maps"
	"slices"
	"testing"

	"sitephoto/internal/annotation"
	"sitephoto/internal/grouping"
	"sitephoto/internal/identity"
)

func photo(file, id string, ts *int64, text string) annotation.Photo {
	return annotation.Photo{File: file, Identity: id, CapturedAt: ts, DetectedText: text}
}

func groupsByFile(photos []annotation.Photo) map[string]int {
	out := make(map[string]int, len(photos))
	for _, p := range photos {
		out[p.File] = p.Group
	}
	return out
}

func sampleSet() []annotation.Photo {
	at := annotation.At
	return []annotation.Photo{
		photo("a1.jpg", "BH-120", at(1000), ""),
		photo("a2.jpg", "BH-120", at(1100), ""),
		photo("a3.jpg", "BH-120", at(1200), ""),
		photo("a4.jpg", "BH-120", at(5000), ""),
		photo("b1.jpg", "PC-200", at(1050), ""),
		photo("b2.jpg", "PC-200", at(1150), ""),
		photo("c1.jpg", "roller", nil, ""),
		photo("c2.jpg", "roller", nil, ""),
	}
}

func TestAssignGroupsDenseNumbering(t *testing.T) {
	got, segments := grouping.AssignGroups(sampleSet(), grouping.DefaultOptions())

	want := map[string]int{
		"a1.jpg": 1, "a2.jpg": 1, "a3.jpg": 1,
		"b1.jpg": 2, "b2.jpg": 2,
		"a4.jpg": 3,
		"c1.jpg": 4, "c2.jpg": 4,
	}
	if g := groupsByFile(got); !maps.Equal(g, want) {
		t.Fatalf("groups = %v, want %v", g, want)
	}
	if len(segments) != 4 {
		t.Fatalf("segments = %d, want 4", len(segments))
	}
	for i, seg := range segments {
		if seg.Group != i+1 {
			t.Fatalf("segment %d numbered %d", i, seg.Group)
		}
	}
	if segments[3].FirstAt != nil {
		t.Fatalf("unknown-time segment should sort last, got %+v", segments[3])
	}
}

func TestAssignGroupsDoesNotMutateInput(t *testing.T) {
	input := sampleSet()
	grouping.AssignGroups(input, grouping.DefaultOptions())
	for _, p := range input {
		if p.Group != 0 {
			t.Fatalf("input mutated: %+v", p)
		}
	}
}

func TestAssignGroupsPermutationInvariant(t *testing.T) {
	base, _ := grouping.AssignGroups(sampleSet(), grouping.DefaultOptions())
	want := groupsByFile(base)

	reversed := sampleSet()
	slices.Reverse(reversed)
	rotated := sampleSet()
	rotated = slices.Concat(rotated[3:], rotated[:3])

	for name, input := range map[string][]annotation.Photo{"reversed": reversed, "rotated": rotated} {
		t.Run(name, func(t *testing.T) {
			got, _ := grouping.AssignGroups(input, grouping.DefaultOptions())
			if g := groupsByFile(got); !maps.Equal(g, want) {
				t.Fatalf("groups = %v, want %v", g, want)
			}
		})
	}
}

func TestAssignGroupsSplitsOnGap(t *testing.T) {
	at := annotation.At
	tests := []struct {
		name   string
		second int64
		groups int
	}{
		{"exactly at threshold", 1300, 1},
		{"one second over", 1301, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := []annotation.Photo{
				photo("1.jpg", "X", at(1000), ""),
				photo("2.jpg", "X", at(tt.second), ""),
			}
			_, segments := grouping.AssignGroups(input, grouping.DefaultOptions())
			if len(segments) != tt.groups {
				t.Fatalf("segments = %d, want %d", len(segments), tt.groups)
			}
		})
	}
}

func TestAssignGroupsSplitsOnAttachmentHint(t *testing.T) {
	at := annotation.At
	input := []annotation.Photo{
		photo("1.jpg", "X", at(1000), "本線"),
		photo("2.jpg", "X", at(1010), "取付道路"),
		photo("3.jpg", "X", at(1020), "取付道路"),
		photo("4.jpg", "X", at(1030), "本線"),
	}
	got, segments := grouping.AssignGroups(input, grouping.DefaultOptions())
	want := map[string]int{"1.jpg": 1, "2.jpg": 2, "3.jpg": 2, "4.jpg": 3}
	if g := groupsByFile(got); !maps.Equal(g, want) {
		t.Fatalf("groups = %v, want %v", g, want)
	}
	if !segments[1].Attachment || segments[0].Attachment {
		t.Fatalf("attachment flags wrong: %+v", segments)
	}
}

func TestAssignGroupsUnknownTimeJoinsSegment(t *testing.T) {
	at := annotation.At
	input := []annotation.Photo{
		photo("1.jpg", "X", at(1000), ""),
		photo("2.jpg", "X", nil, ""),
	}
	got, segments := grouping.AssignGroups(input, grouping.DefaultOptions())
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(segments))
	}
	for _, p := range got {
		if p.Group != 1 {
			t.Fatalf("%s group = %d", p.File, p.Group)
		}
	}
}

func TestAssignGroupsEmpty(t *testing.T) {
	got, segments := grouping.AssignGroups(nil, grouping.DefaultOptions())
	if got != nil || len(segments) != 0 {
		t.Fatalf("got %v %v", got, segments)
	}
}

func propagationSet() []annotation.Photo {
	at := annotation.At
	return []annotation.Photo{
		photo("p1.jpg", "Station No.3", at(1000), "取付道路 側溝"),
		photo("p2.jpg", "No.3", at(1060), ""),
		{File: "p3.jpg", Identity: "pile", CapturedAt: at(1120), Description: "No 3 付近"},
		photo("p4.jpg", "No.3", at(5000), ""),
		photo("p5.jpg", "BH-1", at(1000), ""),
	}
}

func TestPropagateAttachmentRewritesChunk(t *testing.T) {
	opts := grouping.DefaultOptions()
	got, changes := grouping.PropagateAttachment(propagationSet(), opts)

	want := map[string]string{
		"p1.jpg": "取付道路 No.3",
		"p2.jpg": "取付道路 No.3",
		"p3.jpg": "取付道路 No.3",
		"p4.jpg": "No.3",
		"p5.jpg": "BH-1",
	}
	for _, p := range got {
		if p.Identity != want[p.File] {
			t.Errorf("%s identity = %q, want %q", p.File, p.Identity, want[p.File])
		}
	}
	if len(changes) != 3 {
		t.Fatalf("changes = %d, want 3", len(changes))
	}
	for _, c := range changes {
		if c.Pass != grouping.PassPropagate {
			t.Fatalf("unexpected pass %q", c.Pass)
		}
	}
}

func TestPropagateAttachmentNoHintLeavesChunk(t *testing.T) {
	at := annotation.At
	input := []annotation.Photo{
		photo("1.jpg", "No.8", at(1000), ""),
		photo("2.jpg", "No 8", at(1010), ""),
	}
	got, changes := grouping.PropagateAttachment(input, grouping.DefaultOptions())
	if len(changes) != 0 {
		t.Fatalf("changes = %v", changes)
	}
	if got[1].Identity != "No 8" {
		t.Fatalf("identity rewritten: %q", got[1].Identity)
	}
}

func TestPipelineRegroupsAfterPropagation(t *testing.T) {
	p := grouping.NewPipeline(grouping.DefaultOptions(), nil)
	result := p.Run(propagationSet())

	if !result.Regrouped {
		t.Fatal("expected regroup after propagation")
	}
	g := groupsByFile(result.Photos)
	if g["p1.jpg"] != g["p2.jpg"] || g["p2.jpg"] != g["p3.jpg"] {
		t.Fatalf("attachment chunk split across groups: %v", g)
	}
	if g["p4.jpg"] == g["p1.jpg"] {
		t.Fatalf("distant photo merged: %v", g)
	}
	seen := make(map[int]bool)
	for _, n := range g {
		seen[n] = true
	}
	for n := 1; n <= len(result.Segments); n++ {
		if !seen[n] {
			t.Fatalf("group %d unused, groups %v", n, g)
		}
	}
	if len(seen) != len(result.Segments) {
		t.Fatalf("groups %v do not match %d segments", g, len(result.Segments))
	}

	var normalized bool
	for _, c := range result.Changes {
		if c.File == "p1.jpg" && c.Pass == grouping.PassNormalize {
			normalized = true
		}
	}
	if !normalized {
		t.Fatalf("expected normalize change for p1, got %+v", result.Changes)
	}
}

func TestPipelineWithoutPropagationSkipsRegroup(t *testing.T) {
	p := grouping.NewPipeline(grouping.DefaultOptions(), nil)
	result := p.Run(sampleSet())
	if result.Regrouped {
		t.Fatal("unexpected regroup")
	}
	if len(result.Changes) != 0 {
		t.Fatalf("changes = %v", result.Changes)
	}
}

func TestPipelineCustomPrefix(t *testing.T) {
	opts := grouping.Options{
		Rules:      identity.Rules{Keyword: "取付道路", Prefix: "ATT"},
		GapSeconds: grouping.DefaultGapSeconds,
	}
	result := grouping.NewPipeline(opts, nil).Run(propagationSet())
	for _, ph := range result.Photos {
		if ph.File == "p2.jpg" && ph.Identity != "ATT No.3" {
			t.Fatalf("p2 identity = %q", ph.Identity)
		}
	}
}

func TestSummarize(t *testing.T) {
	photos, _ := grouping.AssignGroups(sampleSet(), grouping.DefaultOptions())
	photos[0].Role = "overview"
	summary := grouping.Summarize(photos)
	if len(summary) != 4 {
		t.Fatalf("summary groups = %d", len(summary))
	}
	first := summary[0]
	if first.Group != 1 || first.Identity != "BH-120" || len(first.Members) != 3 {
		t.Fatalf("first group = %+v", first)
	}
	if first.Members[0].File != "a1.jpg" || first.Members[0].Role != "overview" {
		t.Fatalf("members = %+v", first.Members)
	}
}
