package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sitephoto/internal/annotation"
	"sitephoto/internal/ingest"
	"sitephoto/internal/logging"
)

// JournalName is the annotation journal appended to when importing sidecars.
const JournalName = "annotations.jsonl"

type importResult struct {
	Imported     int      `json:"imported"`
	Source       string   `json:"source"`
	TimesFilled  int      `json:"capture_times_filled"`
	Skipped      int      `json:"skipped,omitempty"`
	FailedFiles  []string `json:"failed_files,omitempty"`
	MissingTimes int      `json:"missing_capture_times"`
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var fromPath string
	var csvPath string
	var noEXIF bool
	var force bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "import <folder>",
		Short: "Load photo annotations into the folder database",
		Long: "Load annotations from a JSONL journal (--from), an activity CSV (--csv),\n" +
			"or, by default, from <image>.json sidecars next to each image.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromPath != "" && csvPath != "" {
				return errors.New("--from and --csv are mutually exclusive")
			}
			session, err := ctx.openFolder(cmd, args[0], true)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close(cmd) }()

			var (
				photos []annotation.Photo
				result importResult
			)
			switch {
			case fromPath != "":
				result.Source = fromPath
				photos, err = ingest.ReadJSONL(fromPath)
			case csvPath != "":
				result.Source = csvPath
				photos, err = readCSVFile(csvPath)
			default:
				result.Source = "sidecars"
				photos, err = importSidecars(session, force, &result)
			}
			if err != nil {
				return err
			}
			session.timer.mark("load")

			if session.cfg.Ingest.ReadEXIF && !noEXIF {
				photos, result.TimesFilled = ingest.FillCaptureTimes(session.folder, photos)
				session.timer.mark("capture times")
			}
			if err := annotation.Validate(photos); err != nil {
				return err
			}
			for _, p := range photos {
				if p.CapturedAt == nil {
					result.MissingTimes++
				}
			}

			result.Imported, err = session.store.UpsertPhotos(session.ctx, photos)
			if err != nil {
				return err
			}
			session.timer.mark("store")
			session.logger.Info("import complete",
				logging.String("source", result.Source),
				logging.Int("imported", result.Imported),
				logging.Int("capture_times_filled", result.TimesFilled),
				logging.Int("missing_capture_times", result.MissingTimes),
			)

			if jsonOut {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d photos from %s\n", result.Imported, result.Source)
			if result.TimesFilled > 0 {
				fmt.Fprintf(out, "Filled %d capture times from EXIF or filenames\n", result.TimesFilled)
			}
			if result.MissingTimes > 0 {
				fmt.Fprintf(out, "%d photos have no capture time\n", result.MissingTimes)
			}
			if result.Skipped > 0 {
				fmt.Fprintf(out, "Skipped %d already-imported images (use --force to reload)\n", result.Skipped)
			}
			if len(result.FailedFiles) > 0 {
				fmt.Fprintf(out, "Failed to annotate %d images: %s\n", len(result.FailedFiles), strings.Join(result.FailedFiles, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromPath, "from", "", "Annotation journal (JSON lines) to import")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Activity CSV (file,ts,board_text,other_text,notes) to import")
	cmd.Flags().BoolVar(&noEXIF, "no-exif", false, "Do not fill missing capture times from EXIF or filenames")
	cmd.Flags().BoolVar(&force, "force", false, "Reload sidecars for images already in the database")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func readCSVFile(path string) ([]annotation.Photo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	photos, err := ingest.ReadActivityCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return photos, nil
}

// importSidecars dispatches sidecar reads over the folder's images and
// appends what was read to the state-dir journal.
func importSidecars(session *folderSession, force bool, result *importResult) ([]annotation.Photo, error) {
	paths, err := ingest.CollectImages(session.folder)
	if err != nil {
		return nil, err
	}
	var done map[string]bool
	if !force {
		done, err = session.store.AnnotatedFiles(session.ctx)
		if err != nil {
			return nil, err
		}
	}
	dispatcher := &ingest.Dispatcher{
		Annotator:   ingest.SidecarAnnotator{},
		BatchSize:   session.cfg.Ingest.BatchSize,
		Concurrency: session.cfg.Ingest.Concurrency,
		Logger:      session.logger,
	}
	report, err := dispatcher.Run(session.ctx, paths, done)
	if err != nil {
		return nil, err
	}
	result.Skipped = report.Skipped
	for _, failed := range report.Failed {
		result.FailedFiles = append(result.FailedFiles, failed.Files...)
	}
	if len(report.Photos) > 0 {
		journal := filepath.Join(session.cfg.StateDir(session.folder), JournalName)
		if err := ingest.AppendJSONL(journal, report.Photos...); err != nil {
			return nil, err
		}
	}
	return report.Photos, nil
}
