package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"sitephoto/internal/annotation"
	"sitephoto/internal/fileutil"
	"sitephoto/internal/logging"
	"sitephoto/internal/textutil"
)

// NameFunc picks the destination folder label for a photo.
type NameFunc func(annotation.Photo) string

// Move is one planned relocation.
type Move struct {
	File   string `json:"file"`
	Folder string `json:"folder"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Plan is the full set of moves for a folder.
type Plan struct {
	Root    string   `json:"root"`
	Moves   []Move   `json:"moves"`
	Missing []string `json:"missing,omitempty"`
}

// Folders returns the distinct destination folders in sorted order.
func (p Plan) Folders() []string {
	var out []string
	for _, m := range p.Moves {
		out = append(out, m.Folder)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// NewPlan maps photos to <root>/<folder>/<file>. Photos whose source file is
// absent are listed in Missing. Labels are sanitized; an empty label uses
// fallback.
func NewPlan(root string, photos []annotation.Photo, name NameFunc, fallback string) Plan {
	plan := Plan{Root: root}
	claimed := make(map[string]bool)
	taken := func(path string) bool { return claimed[path] || fileutil.Exists(path) }

	for _, photo := range annotation.SortByFile(photos) {
		source := filepath.Join(root, photo.File)
		if !fileutil.Exists(source) {
			plan.Missing = append(plan.Missing, photo.File)
			continue
		}
		folder := textutil.SanitizeFolderName(name(photo), fallback)
		target := fileutil.UniquePath(filepath.Join(root, folder, filepath.Base(photo.File)), taken)
		claimed[target] = true
		plan.Moves = append(plan.Moves, Move{
			File:   photo.File,
			Folder: folder,
			Source: source,
			Target: target,
		})
	}
	return plan
}

// Labels returns a NameFunc reading from a filename → label map. Activity
// names and category tags both plan through it.
func Labels(names map[string]string) NameFunc {
	return func(p annotation.Photo) string { return names[p.File] }
}

// GroupNames labels folders "<group>_<identity>" with the group zero-padded to
// width digits.
func GroupNames(width int) NameFunc {
	return func(p annotation.Photo) string {
		group := strconv.Itoa(p.Group)
		for len(group) < width {
			group = "0" + group
		}
		if p.Identity == "" {
			return group
		}
		return group + "_" + p.Identity
	}
}

// MoveError records a move that failed.
type MoveError struct {
	Move Move
	Err  error
}

func (e MoveError) Error() string {
	return fmt.Sprintf("move %s: %v", e.Move.File, e.Err)
}

func (e MoveError) Unwrap() error { return e.Err }

// Result summarizes Apply.
type Result struct {
	Moved  int
	Failed []MoveError
}

// Organizer applies plans.
type Organizer struct {
	logger *slog.Logger
}

// New returns an organizer logging under the "organizer" component.
func New(logger *slog.Logger) *Organizer {
	return &Organizer{logger: logging.NewComponentLogger(logger, "organizer")}
}

// Apply performs the moves in plan. Individual failures are collected; a
// cancelled context stops the run and is returned.
func (o *Organizer) Apply(ctx context.Context, plan Plan) (Result, error) {
	logger := logging.WithContext(ctx, o.logger)
	var res Result
	for _, move := range plan.Moves {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := apply(move); err != nil {
			res.Failed = append(res.Failed, MoveError{Move: move, Err: err})
			logging.WarnWithContext(logger, "photo move failed", "organize_move_failed",
				logging.String(logging.FieldFile, move.File),
				logging.String("target", move.Target),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check folder permissions and free space"),
				logging.String(logging.FieldImpact, "photo left in place"),
			)
			continue
		}
		res.Moved++
		logger.Debug("photo moved", logging.String(logging.FieldFile, move.File), logging.String("folder", move.Folder))
	}
	logger.Info("organize complete",
		logging.Int("moved", res.Moved),
		logging.Int("failed", len(res.Failed)),
		logging.Int("folders", len(plan.Folders())),
	)
	return res, nil
}

func apply(move Move) error {
	if err := os.MkdirAll(filepath.Dir(move.Target), 0o755); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	if err := fileutil.MoveFile(move.Source, move.Target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("target appeared after planning: %w", err)
		}
		return err
	}
	return nil
}
