package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sitephoto/internal/activity"
	"sitephoto/internal/annotation"
	"sitephoto/internal/organizer"
	"sitephoto/internal/photostore"
)

type activityOutput struct {
	RunID    string            `json:"run_id"`
	Results  []activity.Result `json:"results"`
	Counts   map[string]int    `json:"counts"`
	Organize organizeOutput    `json:"organize"`
}

func newActivityCommand(ctx *commandContext) *cobra.Command {
	var csvPath string
	var gapMinutes int
	var topK int
	var apply bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "activity <folder>",
		Short: "Name each photo's work activity and plan activity folders",
		Long: "Name each photo's activity from board fields, ranked keywords, or the\n" +
			"previous photo, then plan moving photos into <folder>/<activity>/.\n" +
			"Nothing moves without --apply.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.openFolder(cmd, args[0], true)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close(cmd) }()

			cfg := session.cfg
			if !cmd.Flags().Changed("gap-minutes") {
				gapMinutes = cfg.Activity.GapMinutes
			}
			if !cmd.Flags().Changed("top-k") {
				topK = cfg.Activity.TopK
			}
			if gapMinutes < 0 || topK < 1 {
				return errors.New("--gap-minutes must be >= 0 and --top-k >= 1")
			}
			dict, err := activity.LoadDictionary(cfg.Activity.DictionaryPath)
			if err != nil {
				return err
			}

			if csvPath != "" {
				rows, err := readCSVFile(csvPath)
				if err != nil {
					return err
				}
				if err := annotation.Validate(rows); err != nil {
					return err
				}
				if _, err := session.store.UpsertPhotos(session.ctx, rows); err != nil {
					return err
				}
			}
			photos, err := session.store.Current(session.ctx)
			if err != nil {
				return err
			}
			if len(photos) == 0 {
				return errNoAnnotations
			}
			session.timer.mark("load")

			run := photostore.NewRun(photostore.RunActivity, "")
			session.withRun(run.ID)
			namer := activity.NewNamer(activity.Options{
				GapMinutes: gapMinutes,
				TopK:       topK,
				Fallback:   cfg.Activity.FallbackLabel,
				Dictionary: dict,
			}, session.logger)
			inputs := make([]activity.Input, 0, len(photos))
			for _, photo := range photos {
				inputs = append(inputs, activity.InputFromPhoto(photo))
			}
			results := namer.NameAll(inputs)
			session.timer.mark("name")

			if err := session.store.SaveActivities(session.ctx, run, results); err != nil {
				return err
			}
			session.timer.mark("store")

			names := make(map[string]string, len(results))
			out := activityOutput{RunID: run.ID, Results: results, Counts: make(map[string]int)}
			for _, r := range results {
				names[r.File] = r.Activity
				out.Counts[r.Activity]++
			}
			plan := organizer.NewPlan(session.folder, photos, organizer.Labels(names), cfg.Activity.FallbackLabel)
			organized, err := runOrganize(session, plan, apply)
			if err != nil {
				return err
			}
			out.Organize = *organized

			if jsonOut {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.File, r.Activity, string(r.Rule)})
			}
			fmt.Fprintln(w, renderTable(w, []string{"File", "Activity", "Rule"}, rows, nil))
			fmt.Fprintln(w, renderTable(w, []string{"Activity", "Photos"}, countRows(out.Counts), []columnAlignment{alignLeft, alignRight}))
			printOrganize(w, out.Organize)
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Import activity rows (file,ts,board_text,other_text,notes) before naming")
	cmd.Flags().IntVar(&gapMinutes, "gap-minutes", activity.DefaultGapMinutes, "Carry the previous activity across gaps shorter than this")
	cmd.Flags().IntVar(&topK, "top-k", activity.DefaultTopK, "Keywords joined into a name")
	cmd.Flags().BoolVar(&apply, "apply", false, "Move photos into activity folders")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
