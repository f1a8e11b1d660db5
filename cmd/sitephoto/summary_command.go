package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"sitephoto/internal/photostore"
)

type summaryOutput struct {
	Photos     int                        `json:"photos"`
	Groups     map[string]int             `json:"groups"`
	Scenes     map[string]int             `json:"scenes"`
	Activities map[string]int             `json:"activities"`
	Tags       map[string]int             `json:"tags"`
	LastRuns   map[string]*photostore.Run `json:"last_runs"`
}

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "summary <folder>",
		Short: "Show per-group, per-scene, per-activity, and per-tag counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.openFolder(cmd, args[0], false)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close(cmd) }()

			records, err := session.store.ListRecords(session.ctx)
			if err != nil {
				return err
			}
			out := summaryOutput{
				Photos:     len(records),
				Groups:     make(map[string]int),
				Scenes:     make(map[string]int),
				Activities: make(map[string]int),
				Tags:       make(map[string]int),
				LastRuns:   make(map[string]*photostore.Run),
			}
			for _, r := range records {
				if r.Group > 0 {
					out.Groups[fmt.Sprintf("%03d %s", r.Group, r.Identity)]++
				}
				if r.Scene != "" {
					out.Scenes[r.Scene]++
				}
				if r.Activity != "" {
					out.Activities[r.Activity]++
				}
				if r.Tag != "" {
					out.Tags[r.Tag]++
				}
			}
			for _, kind := range []string{photostore.RunGroup, photostore.RunScene, photostore.RunActivity, photostore.RunTag} {
				run, err := session.store.LastRun(session.ctx, kind)
				if err != nil {
					return err
				}
				if run != nil {
					out.LastRuns[kind] = run
				}
			}

			if jsonOut {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Folder: %s\nPhotos: %d\n", session.folder, out.Photos)
			counts := []columnAlignment{alignLeft, alignRight}
			if len(out.Groups) > 0 {
				fmt.Fprintln(w, renderTable(w, []string{"Group", "Photos"}, countRows(out.Groups), counts))
			}
			if len(out.Scenes) > 0 {
				fmt.Fprintln(w, renderTable(w, []string{"Scene", "Photos"}, countRows(out.Scenes), counts))
			}
			if len(out.Activities) > 0 {
				fmt.Fprintln(w, renderTable(w, []string{"Activity", "Photos"}, countRows(out.Activities), counts))
			}
			if len(out.Tags) > 0 {
				fmt.Fprintln(w, renderTable(w, []string{"Tag", "Photos"}, countRows(out.Tags), counts))
			}
			if len(out.LastRuns) > 0 {
				fmt.Fprintln(w, renderTable(w, []string{"Pass", "Run", "Profile", "Photos", "Finished"}, runRows(out.LastRuns), nil))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func runRows(runs map[string]*photostore.Run) [][]string {
	var rows [][]string
	for _, kind := range []string{photostore.RunGroup, photostore.RunScene, photostore.RunActivity, photostore.RunTag} {
		run, ok := runs[kind]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			kind,
			run.ID,
			displayOr(run.Profile, "-"),
			strconv.Itoa(run.Photos),
			run.FinishedAt.Local().Format(time.DateTime),
		})
	}
	return rows
}
