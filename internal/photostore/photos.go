package photostore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"sitephoto/internal/activity"
	"sitephoto/internal/annotation"
	"sitephoto/internal/tagging"
)

// Record is a stored photo: the imported annotation plus the latest
// reasoning results.
type Record struct {
	annotation.Photo
	OriginalIdentity string    `json:"original_identity"`
	Scene            string    `json:"scene_type,omitempty"`
	Activity         string    `json:"activity,omitempty"`
	ActivityRule     string    `json:"activity_rule,omitempty"`
	Tag              string    `json:"tag,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

const photoColumns = "file, original_identity, identity, captured_at, group_no, scene_type, activity, activity_rule, tag, annotation_json, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		rec        Record
		file       string
		original   string
		identity   string
		capturedAt sql.NullInt64
		group      int
		payload    string
		updatedRaw string
	)
	if err := scanner.Scan(
		&file,
		&original,
		&identity,
		&capturedAt,
		&group,
		&rec.Scene,
		&rec.Activity,
		&rec.ActivityRule,
		&rec.Tag,
		&payload,
		&updatedRaw,
	); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(payload), &rec.Photo); err != nil {
		return Record{}, fmt.Errorf("decode annotation for %s: %w", file, err)
	}
	rec.File = file
	rec.OriginalIdentity = original
	rec.Identity = identity
	rec.Group = group
	rec.CapturedAt = nil
	if capturedAt.Valid {
		rec.CapturedAt = annotation.At(capturedAt.Int64)
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		rec.UpdatedAt = t
	}
	return rec, nil
}

func nullableTime(ts *int64) any {
	if ts == nil {
		return nil
	}
	return *ts
}

// UpsertPhotos stores imported annotations. Re-importing a file replaces its
// annotation and clears results derived from the old one.
func (s *Store) UpsertPhotos(ctx context.Context, photos []annotation.Photo) (int, error) {
	if len(photos) == 0 {
		return 0, nil
	}
	timestamp := time.Now().UTC().Format(timeLayout)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO photos (
            file, original_identity, identity, captured_at, group_no,
            scene_type, activity, activity_rule, tag, annotation_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, 0, '', '', '', '', ?, ?, ?)
        ON CONFLICT(file) DO UPDATE SET
            original_identity = excluded.original_identity,
            identity = excluded.identity,
            captured_at = excluded.captured_at,
            group_no = 0,
            scene_type = '',
            activity = '',
            activity_rule = '',
            tag = '',
            annotation_json = excluded.annotation_json,
            updated_at = excluded.updated_at`)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, photo := range photos {
			photo.Group = 0
			payload, err := json.Marshal(photo)
			if err != nil {
				return fmt.Errorf("encode %s: %w", photo.File, err)
			}
			if _, err := stmt.ExecContext(ctx,
				photo.File,
				photo.Identity,
				photo.Identity,
				nullableTime(photo.CapturedAt),
				string(payload),
				timestamp,
				timestamp,
			); err != nil {
				return fmt.Errorf("upsert %s: %w", photo.File, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(photos), nil
}

// ListRecords returns every stored photo ordered by filename.
func (s *Store) ListRecords(ctx context.Context) ([]Record, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT "+photoColumns+" FROM photos ORDER BY file")
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return out, nil
}

// Annotations returns the imported annotations with their original
// identities and no group, ready for a fresh grouping run.
func (s *Store) Annotations(ctx context.Context) ([]annotation.Photo, error) {
	records, err := s.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]annotation.Photo, len(records))
	for i, rec := range records {
		photo := rec.Photo
		photo.Identity = rec.OriginalIdentity
		photo.Group = 0
		out[i] = photo
	}
	return out, nil
}

// Current returns photos with their latest identity and group.
func (s *Store) Current(ctx context.Context) ([]annotation.Photo, error) {
	records, err := s.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]annotation.Photo, len(records))
	for i, rec := range records {
		out[i] = rec.Photo
	}
	return out, nil
}

// AnnotatedFiles returns the set of filenames already stored.
func (s *Store) AnnotatedFiles(ctx context.Context) (map[string]bool, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT file FROM photos")
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]bool)
	for rows.Next() {
		var file string
		if err := rows.Scan(&file); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out[file] = true
	}
	return out, rows.Err()
}

// SaveScenes stores scene types keyed by filename and records the run.
func (s *Store) SaveScenes(ctx context.Context, run Run, scenes map[string]string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		run = run.finished()
		run.Photos = len(scenes)
		if err := insertRun(ctx, tx, run); err != nil {
			return err
		}
		timestamp := run.FinishedAt.UTC().Format(timeLayout)
		for file, scene := range scenes {
			if _, err := tx.ExecContext(ctx,
				"UPDATE photos SET scene_type = ?, updated_at = ? WHERE file = ?",
				scene, timestamp, file,
			); err != nil {
				return fmt.Errorf("update scene %s: %w", file, err)
			}
		}
		return nil
	})
}

// SaveActivities stores activity names and records the run.
func (s *Store) SaveActivities(ctx context.Context, run Run, results []activity.Result) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		run = run.finished()
		run.Photos = len(results)
		if err := insertRun(ctx, tx, run); err != nil {
			return err
		}
		timestamp := run.FinishedAt.UTC().Format(timeLayout)
		for _, res := range results {
			if _, err := tx.ExecContext(ctx,
				"UPDATE photos SET activity = ?, activity_rule = ?, updated_at = ? WHERE file = ?",
				res.Activity, string(res.Rule), timestamp, res.File,
			); err != nil {
				return fmt.Errorf("update activity %s: %w", res.File, err)
			}
		}
		return nil
	})
}

// SaveTags stores category tags and records the run. Untagged results clear
// any earlier tag.
func (s *Store) SaveTags(ctx context.Context, run Run, results []tagging.Result) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		run = run.finished()
		run.Photos = len(results)
		if err := insertRun(ctx, tx, run); err != nil {
			return err
		}
		timestamp := run.FinishedAt.UTC().Format(timeLayout)
		for _, res := range results {
			if _, err := tx.ExecContext(ctx,
				"UPDATE photos SET tag = ?, updated_at = ? WHERE file = ?",
				res.Tag, timestamp, res.File,
			); err != nil {
				return fmt.Errorf("update tag %s: %w", res.File, err)
			}
		}
		return nil
	})
}
