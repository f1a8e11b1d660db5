package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"sitephoto/internal/logging"
	"sitephoto/internal/photostore"
	"sitephoto/internal/scene"
)

type sceneRow struct {
	File       string  `json:"file"`
	Scene      string  `json:"scene"`
	MaxBoard   float64 `json:"max_board_area"`
	MaxMeasure float64 `json:"max_measure_area"`
}

type sceneOutput struct {
	RunID  string         `json:"run_id"`
	Photos []sceneRow     `json:"photos"`
	Counts map[string]int `json:"counts"`
}

func newSceneCommand(ctx *commandContext) *cobra.Command {
	var includeElectronic bool
	var lexiconPath string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "scene <folder>",
		Short: "Classify each photo as overview, board_with_measure, or measure_closeup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.openFolder(cmd, args[0], true)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close(cmd) }()

			cfg := session.cfg
			if !cmd.Flags().Changed("include-electronic-board") {
				includeElectronic = cfg.Scene.IncludeElectronicBoard
			}
			if lexiconPath == "" {
				lexiconPath = cfg.Scene.MeasureLexiconPath
			}
			lexicon, err := scene.LoadLexicon(lexiconPath)
			if err != nil {
				return err
			}
			rules := scene.NewRules(includeElectronic, cfg.Scene.BoardThreshold, cfg.Scene.MeasureThreshold, lexicon)

			photos, err := session.store.Current(session.ctx)
			if err != nil {
				return err
			}
			if len(photos) == 0 {
				return errNoAnnotations
			}
			session.timer.mark("load")

			run := photostore.NewRun(photostore.RunScene, "")
			session.withRun(run.ID)
			out := sceneOutput{RunID: run.ID, Counts: make(map[string]int)}
			scenes := make(map[string]string, len(photos))
			for _, photo := range photos {
				kind, reason := rules.Decide(photo)
				board, measure := rules.Areas(photo.Objects)
				scenes[photo.File] = kind
				out.Counts[kind]++
				out.Photos = append(out.Photos, sceneRow{File: photo.File, Scene: kind, MaxBoard: board, MaxMeasure: measure})
				session.logger.Debug("scene decision", logging.DecisionAttrs("scene", kind, reason,
					logging.String(logging.FieldFile, photo.File),
					logging.Float64("max_board_area", board),
					logging.Float64("max_measure_area", measure),
				)...)
			}
			session.timer.mark("classify")

			if err := session.store.SaveScenes(session.ctx, run, scenes); err != nil {
				return err
			}
			session.timer.mark("store")
			session.logger.Info("scene classification complete",
				logging.Int("photos", len(photos)),
				logging.Int(scene.Overview, out.Counts[scene.Overview]),
				logging.Int(scene.BoardWithMeasure, out.Counts[scene.BoardWithMeasure]),
				logging.Int(scene.MeasureCloseup, out.Counts[scene.MeasureCloseup]),
			)

			if jsonOut {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			rows := make([][]string, 0, len(out.Photos))
			for _, r := range out.Photos {
				rows = append(rows, []string{r.File, r.Scene, formatRatio(r.MaxBoard), formatRatio(r.MaxMeasure)})
			}
			fmt.Fprintln(w, renderTable(w, []string{"File", "Scene", "Board", "Measure"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
			fmt.Fprintln(w, renderTable(w, []string{"Scene", "Photos"}, countRows(out.Counts), []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeElectronic, "include-electronic-board", false, "Count electronic boards as boards")
	cmd.Flags().StringVar(&lexiconPath, "lexicon", "", "Measure lexicon file, one term per line (default from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// countRows renders a label → count map sorted by label.
func countRows(counts map[string]int) [][]string {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	rows := make([][]string, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, []string{displayOr(label, "-"), strconv.Itoa(counts[label])})
	}
	return rows
}
