package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sitephoto/internal/activity"
	"sitephoto/internal/annotation"
	"sitephoto/internal/organizer"
	"sitephoto/internal/photostore"
	"sitephoto/internal/tagging"
)

type tagOutput struct {
	RunID      string           `json:"run_id,omitempty"`
	Categories []string         `json:"categories"`
	Skipped    int              `json:"skipped"`
	Results    []tagging.Result `json:"results"`
	Counts     map[string]int   `json:"counts"`
	Untagged   []string         `json:"untagged,omitempty"`
	Organize   organizeOutput   `json:"organize"`
}

func newTagCommand(ctx *commandContext) *cobra.Command {
	var apply bool
	var all bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "tag <folder>",
		Short: "Sort photos into the folder's existing category subdirectories",
		Long: "Match each photo's board text, detected objects, description, and activity\n" +
			"keywords against the names of the folder's subdirectories, then plan moving\n" +
			"it into the best match. Photos tagged by an earlier --apply run are skipped\n" +
			"unless --all is set. Nothing is saved or moved without --apply.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.openFolder(cmd, args[0], true)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close(cmd) }()

			cfg := session.cfg
			categories, err := tagging.Discover(session.folder, cfg.Paths.StateDirName)
			if err != nil {
				return err
			}
			dict, err := activity.LoadDictionary(cfg.Activity.DictionaryPath)
			if err != nil {
				return err
			}
			records, err := session.store.ListRecords(session.ctx)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return errNoAnnotations
			}
			out := tagOutput{Categories: categories}
			var pending []annotation.Photo
			for _, rec := range records {
				if rec.Tag != "" && !all {
					out.Skipped++
					continue
				}
				pending = append(pending, rec.Photo)
			}
			session.timer.mark("load")

			var run photostore.Run
			if apply {
				run = photostore.NewRun(photostore.RunTag, "")
				out.RunID = run.ID
				session.withRun(run.ID)
			}
			tagger := tagging.New(categories, tagging.Options{Dictionary: dict, TopK: cfg.Activity.TopK}, session.logger)
			out.Results = tagger.TagAll(pending)
			out.Counts = tagging.Counts(out.Results)
			session.timer.mark("tag")

			tags := make(map[string]string, len(out.Results))
			for _, res := range out.Results {
				if res.Tag == "" {
					out.Untagged = append(out.Untagged, res.File)
					continue
				}
				tags[res.File] = res.Tag
			}
			var tagged []annotation.Photo
			for _, photo := range pending {
				if tags[photo.File] != "" {
					tagged = append(tagged, photo)
				}
			}

			if apply {
				if err := session.store.SaveTags(session.ctx, run, out.Results); err != nil {
					return err
				}
				session.timer.mark("store")
			}
			plan := organizer.NewPlan(session.folder, tagged, organizer.Labels(tags), "")
			organized, err := runOrganize(session, plan, apply)
			if err != nil {
				return err
			}
			out.Organize = *organized

			if jsonOut {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Categories: %s\n", strings.Join(categories, ", "))
			if out.Skipped > 0 {
				fmt.Fprintf(w, "Skipping %d already tagged photos\n", out.Skipped)
			}
			rows := make([][]string, 0, len(out.Results))
			for _, res := range out.Results {
				rows = append(rows, []string{res.File, displayOr(res.Tag, "-"), confidenceText(res)})
			}
			fmt.Fprintln(w, renderTable(w, []string{"File", "Tag", "Confidence"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight}))
			fmt.Fprintln(w, renderTable(w, []string{"Category", "Photos"}, categoryRows(categories, out.Counts),
				[]columnAlignment{alignLeft, alignRight}))
			if len(out.Untagged) > 0 {
				fmt.Fprintf(w, "%d photos matched no category and stay in place\n", len(out.Untagged))
			}
			printOrganize(w, out.Organize)
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Save tags and move photos into category folders")
	cmd.Flags().BoolVar(&all, "all", false, "Re-tag photos tagged by an earlier run")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// categoryRows lists every category in name order, including empty ones.
func categoryRows(categories []string, counts map[string]int) [][]string {
	rows := make([][]string, 0, len(categories))
	for _, name := range slices.Sorted(slices.Values(categories)) {
		rows = append(rows, []string{name, strconv.Itoa(counts[name])})
	}
	return rows
}

func confidenceText(res tagging.Result) string {
	if res.Tag == "" {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", res.Confidence*100)
}
