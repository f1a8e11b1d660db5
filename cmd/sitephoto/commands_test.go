package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sitephoto/internal/activity"
	"sitephoto/internal/fileutil"
	"sitephoto/internal/grouping"
	"sitephoto/internal/photostore"
	"sitephoto/internal/scene"
	"sitephoto/internal/tagging"
	"sitephoto/internal/testsupport"
)

func importSample(t *testing.T, env *cliTestEnv) {
	t.Helper()
	journal := env.writeJournal(t,
		testsupport.NewPhoto("p1.jpg", "Station No.3", testsupport.At(1000), testsupport.Text("取付道路 側溝"),
			testsupport.Object("巻尺", 0.4)),
		testsupport.NewPhoto("p2.jpg", "No.3", testsupport.At(1060)),
		testsupport.NewPhoto("p3.jpg", "BH-1", testsupport.At(5000),
			testsupport.Object("黒板", 0.3), testsupport.Object("tape measure", 0.05)),
	)
	out, _, err := runCLI(t, []string{"import", env.folder, "--from", journal}, env.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Imported 3 photos")
}

func TestPassesBeforeImportFail(t *testing.T) {
	env := setupCLITestEnv(t)
	for _, args := range [][]string{
		{"group", env.folder},
		{"scene", env.folder},
		{"activity", env.folder},
	} {
		if _, _, err := runCLI(t, args, env.configPath); !errors.Is(err, errNoAnnotations) {
			t.Fatalf("%v: err = %v, want errNoAnnotations", args, err)
		}
	}
	if _, _, err := runCLI(t, []string{"export", env.folder}, env.configPath); err == nil {
		t.Fatal("export before group should fail")
	}
}

func TestGroupCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	importSample(t, env)

	out, _, err := runCLI(t, []string{"group", env.folder, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	var got struct {
		RunID   string                    `json:"run_id"`
		Profile string                    `json:"profile"`
		Groups  []grouping.GroupSummary   `json:"groups"`
		Changes []grouping.IdentityChange `json:"identity_changes"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if got.RunID == "" || got.Profile != "machine" {
		t.Fatalf("run = %q profile = %q", got.RunID, got.Profile)
	}
	if len(got.Groups) != 2 {
		t.Fatalf("groups = %+v", got.Groups)
	}
	if got.Groups[0].Identity != "取付道路 No.3" || len(got.Groups[0].Members) != 2 {
		t.Fatalf("group 1 = %+v", got.Groups[0])
	}
	if got.Groups[1].Identity != "BH-1" || got.Groups[1].Group != 2 {
		t.Fatalf("group 2 = %+v", got.Groups[1])
	}
	if len(got.Changes) == 0 {
		t.Fatal("expected identity rewrites")
	}

	if _, _, err := runCLI(t, []string{"group", env.folder, "--profile", "weekly"}, env.configPath); err == nil {
		t.Fatal("expected unknown profile error")
	}

	out, _, err = runCLI(t, []string{"export", env.folder}, env.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Wrote 3 photos in 2 groups")
	records, err := photostore.LoadGroups(filepath.Join(env.folder, photostore.GroupsFileName))
	if err != nil {
		t.Fatalf("LoadGroups: %v", err)
	}
	if records["p2.jpg"].Identity != "取付道路 No.3" || records["p3.jpg"].Group != 2 {
		t.Fatalf("exported = %+v", records)
	}
}

func TestGroupDryRunSavesNothing(t *testing.T) {
	env := setupCLITestEnv(t)
	importSample(t, env)

	out, _, err := runCLI(t, []string{"group", env.folder, "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("group --dry-run: %v", err)
	}
	requireContains(t, out, "Dry run: assignments not saved")

	out, _, err = runCLI(t, []string{"summary", env.folder, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	var summary summaryOutput
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.LastRuns[photostore.RunGroup] != nil {
		t.Fatalf("group run recorded: %+v", summary.LastRuns[photostore.RunGroup])
	}
	if _, _, err := runCLI(t, []string{"export", env.folder}, env.configPath); err == nil {
		t.Fatal("export after dry run should fail")
	}
	if _, _, err := runCLI(t, []string{"group", env.folder, "--organize", "--apply", "--dry-run"}, env.configPath); err == nil {
		t.Fatal("--apply with --dry-run should fail")
	}
}

func TestGroupOrganize(t *testing.T) {
	env := setupCLITestEnv(t)
	importSample(t, env)

	out, _, err := runCLI(t, []string{"group", env.folder, "--organize"}, env.configPath)
	if err != nil {
		t.Fatalf("group --organize: %v", err)
	}
	requireContains(t, out, "Dry run: 3 moves into 2 folders")
	if !fileutil.Exists(filepath.Join(env.folder, "p1.jpg")) {
		t.Fatal("dry run moved files")
	}

	if _, _, err := runCLI(t, []string{"group", env.folder, "--apply"}, env.configPath); err == nil {
		t.Fatal("--apply without --organize should fail")
	}

	if _, _, err := runCLI(t, []string{"group", env.folder, "--organize", "--apply"}, env.configPath); err != nil {
		t.Fatalf("group --organize --apply: %v", err)
	}
	for _, path := range []string{
		filepath.Join(env.folder, "001_取付道路_No.3", "p1.jpg"),
		filepath.Join(env.folder, "001_取付道路_No.3", "p2.jpg"),
		filepath.Join(env.folder, "002_BH-1", "p3.jpg"),
	} {
		if !fileutil.Exists(path) {
			t.Errorf("missing %s", path)
		}
	}
}

func TestSceneCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	importSample(t, env)

	out, _, err := runCLI(t, []string{"scene", env.folder, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("scene: %v", err)
	}
	var got sceneOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{
		"p1.jpg": scene.MeasureCloseup,
		"p2.jpg": scene.Overview,
		"p3.jpg": scene.BoardWithMeasure,
	}
	if len(got.Photos) != len(want) {
		t.Fatalf("photos = %+v", got.Photos)
	}
	for _, row := range got.Photos {
		if row.Scene != want[row.File] {
			t.Errorf("%s = %s, want %s", row.File, row.Scene, want[row.File])
		}
	}

	lexicon := filepath.Join(t.TempDir(), "measure.txt")
	if err := os.WriteFile(lexicon, []byte("# only rulers\nruler\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err = runCLI(t, []string{"scene", env.folder, "--json", "--lexicon", lexicon}, env.configPath)
	if err != nil {
		t.Fatalf("scene --lexicon: %v", err)
	}
	got = sceneOutput{}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Counts[scene.MeasureCloseup] != 0 || got.Counts[scene.BoardWithMeasure] != 1 {
		t.Fatalf("counts with custom lexicon = %v", got.Counts)
	}
}

func TestActivityCommandDryRunAndApply(t *testing.T) {
	env := setupCLITestEnv(t)
	importSample(t, env)

	out, _, err := runCLI(t, []string{"activity", env.folder, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	var got activityOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Results) != 3 || got.Organize.Applied {
		t.Fatalf("output = %+v", got)
	}
	byFile := make(map[string]activity.Result)
	for _, r := range got.Results {
		byFile[r.File] = r
	}
	if r := byFile["p3.jpg"]; r.Activity != "unclassified" || r.Rule != activity.RuleFallback {
		t.Fatalf("p3 = %+v", r)
	}
	if !fileutil.Exists(filepath.Join(env.folder, "p3.jpg")) {
		t.Fatal("dry run moved files")
	}

	out, _, err = runCLI(t, []string{"activity", env.folder, "--apply"}, env.configPath)
	if err != nil {
		t.Fatalf("activity --apply: %v", err)
	}
	requireContains(t, out, "Moved 3 photos")
	if !fileutil.Exists(filepath.Join(env.folder, "unclassified", "p3.jpg")) {
		t.Fatal("p3.jpg not moved into unclassified/")
	}
	for _, name := range []string{"p1.jpg", "p2.jpg", "p3.jpg"} {
		if fileutil.Exists(filepath.Join(env.folder, name)) {
			t.Errorf("%s still in folder root", name)
		}
	}

	out, _, err = runCLI(t, []string{"summary", env.folder, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	var summary summaryOutput
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Photos != 3 || summary.Activities["unclassified"] < 1 || summary.LastRuns[photostore.RunActivity] == nil {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestTagCommandDryRunAndApply(t *testing.T) {
	env := setupCLITestEnv(t)
	importSample(t, env)

	if _, _, err := runCLI(t, []string{"tag", env.folder}, env.configPath); !errors.Is(err, tagging.ErrNoCategories) {
		t.Fatalf("tag without categories: err = %v", err)
	}
	for _, dir := range []string{"側溝", "舗装"} {
		if err := os.MkdirAll(filepath.Join(env.folder, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	out, _, err := runCLI(t, []string{"tag", env.folder}, env.configPath)
	if err != nil {
		t.Fatalf("tag: %v", err)
	}
	requireContains(t, out, "Categories: 側溝, 舗装")
	requireContains(t, out, "2 photos matched no category and stay in place")
	requireContains(t, out, "Dry run: 1 moves into 1 folders")
	if !fileutil.Exists(filepath.Join(env.folder, "p1.jpg")) {
		t.Fatal("dry run moved files")
	}

	out, _, err = runCLI(t, []string{"summary", env.folder, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	var summary summaryOutput
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(summary.Tags) != 0 || summary.LastRuns[photostore.RunTag] != nil {
		t.Fatalf("dry run saved tags: %+v", summary)
	}

	out, _, err = runCLI(t, []string{"tag", env.folder, "--apply", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("tag --apply: %v", err)
	}
	var got tagOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if got.RunID == "" || got.Counts["側溝"] != 1 || len(got.Untagged) != 2 || got.Organize.Moved != 1 {
		t.Fatalf("output = %+v", got)
	}
	if !fileutil.Exists(filepath.Join(env.folder, "側溝", "p1.jpg")) {
		t.Fatal("p1.jpg not moved into 側溝/")
	}

	out, _, err = runCLI(t, []string{"tag", env.folder}, env.configPath)
	if err != nil {
		t.Fatalf("second tag: %v", err)
	}
	requireContains(t, out, "Skipping 1 already tagged photos")
}

func TestImportSidecars(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteImages(t, env.folder, "IMG_0001.jpg", "IMG_0002.jpg")
	sidecar := []byte("```json\n{\"identity\": \"BH-1\", \"captured_at\": 100}\n```\n")
	if err := os.WriteFile(filepath.Join(env.folder, "IMG_0001.json"), sidecar, 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"import", env.folder}, env.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Imported 1 photos from sidecars")
	if !fileutil.Exists(filepath.Join(env.folder, ".sitephoto", JournalName)) {
		t.Fatal("journal not written")
	}

	out, _, err = runCLI(t, []string{"import", env.folder}, env.configPath)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	requireContains(t, out, "Skipped 1 already-imported images")
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check", env.folder}, env.configPath)
	if err == nil {
		t.Fatal("expected failure for folder without images")
	}
	requireContains(t, out, "FAIL")

	testsupport.WriteImages(t, env.folder, "a.jpg")
	out, _, err = runCLI(t, []string{"check", env.folder}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "1 files")
}

func TestProfileTimings(t *testing.T) {
	env := setupCLITestEnv(t)
	importSample(t, env)

	_, stderr, err := runCLI(t, []string{"--profile-timings", "summary", env.folder}, env.configPath)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	requireContains(t, stderr, "total")
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	logPath := filepath.Join(env.baseDir, "logs", "sitephoto.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "INFO group complete run_id=r1\nWARN move failed run_id=r2\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"logs", "--run", "r2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "WARN move failed run_id=r2\n" {
		t.Fatalf("out = %q", out)
	}
}
