package photostore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sitephoto/internal/annotation"
	"sitephoto/internal/grouping"
)

// Run kinds.
const (
	RunGroup    = "group"
	RunScene    = "scene"
	RunActivity = "activity"
	RunTag      = "tag"
)

// Run is one persisted reasoning pass over a folder.
type Run struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Profile    string    `json:"profile,omitempty"`
	Photos     int       `json:"photos"`
	Groups     int       `json:"groups,omitempty"`
	Changes    int       `json:"identity_changes,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewRun starts a run with a fresh ID.
func NewRun(kind, profile string) Run {
	return Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		Profile:   profile,
		StartedAt: time.Now().UTC(),
	}
}

// finished fills the ID and timestamps a caller left empty.
func (r Run) finished() Run {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now().UTC()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = r.FinishedAt
	}
	return r
}

func insertRun(ctx context.Context, tx *sql.Tx, run Run) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, profile, photo_count, group_count, change_count, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Kind,
		run.Profile,
		run.Photos,
		run.Groups,
		run.Changes,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// SaveAssignments stores the identities and groups from a grouping run along
// with its identity rewrites.
func (s *Store) SaveAssignments(ctx context.Context, run Run, photos []annotation.Photo, segments int, changes []grouping.IdentityChange) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		run = run.finished()
		run.Kind = RunGroup
		run.Photos = len(photos)
		run.Groups = segments
		run.Changes = len(changes)
		if err := insertRun(ctx, tx, run); err != nil {
			return err
		}
		timestamp := run.FinishedAt.UTC().Format(timeLayout)
		for _, photo := range photos {
			if _, err := tx.ExecContext(ctx,
				"UPDATE photos SET identity = ?, group_no = ?, updated_at = ? WHERE file = ?",
				photo.Identity, photo.Group, timestamp, photo.File,
			); err != nil {
				return fmt.Errorf("update assignment %s: %w", photo.File, err)
			}
		}
		for _, change := range changes {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO identity_changes (run_id, file, from_identity, to_identity, pass) VALUES (?, ?, ?, ?, ?)",
				run.ID, change.File, change.From, change.To, change.Pass,
			); err != nil {
				return fmt.Errorf("record identity change %s: %w", change.File, err)
			}
		}
		return nil
	})
}

// LastRun returns the most recent run of kind, or nil when none exists.
func (s *Store) LastRun(ctx context.Context, kind string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, profile, photo_count, group_count, change_count, started_at, finished_at
        FROM runs WHERE kind = ? ORDER BY finished_at DESC LIMIT 1`, kind)
	var (
		run         Run
		startedRaw  string
		finishedRaw string
	)
	err := row.Scan(&run.ID, &run.Kind, &run.Profile, &run.Photos, &run.Groups, &run.Changes, &startedRaw, &finishedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedRaw)
	run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedRaw)
	return &run, nil
}

// IdentityChanges returns the rewrites recorded for a run in insertion order.
func (s *Store) IdentityChanges(ctx context.Context, runID string) ([]grouping.IdentityChange, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT file, from_identity, to_identity, pass FROM identity_changes WHERE run_id = ? ORDER BY rowid", runID)
	if err != nil {
		return nil, fmt.Errorf("query identity changes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []grouping.IdentityChange
	for rows.Next() {
		var c grouping.IdentityChange
		if err := rows.Scan(&c.File, &c.From, &c.To, &c.Pass); err != nil {
			return nil, fmt.Errorf("scan identity change: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
