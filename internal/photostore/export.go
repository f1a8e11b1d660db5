package photostore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sitephoto/internal/annotation"
)

// GroupsFileName is the default export written into the photo folder.
const GroupsFileName = "photo-groups.json"

// GroupRecord is one entry of the exported groups file.
type GroupRecord struct {
	Identity    string `json:"identity"`
	Group       int    `json:"group"`
	CapturedAt  *int64 `json:"captured_at,omitempty"`
	Role        string `json:"role,omitempty"`
	MachineType string `json:"machine_type,omitempty"`
	HasBoard    bool   `json:"has_board"`
}

// ExportGroups writes group records keyed by filename. The file is replaced
// atomically.
func ExportGroups(path string, photos []annotation.Photo) error {
	records := make(map[string]GroupRecord, len(photos))
	for _, p := range photos {
		records[p.File] = GroupRecord{
			Identity:    p.Identity,
			Group:       p.Group,
			CapturedAt:  p.CapturedAt,
			Role:        p.Role,
			MachineType: p.MachineType,
			HasBoard:    p.HasBoard,
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode groups: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".photo-groups-*.json")
	if err != nil {
		return fmt.Errorf("create temp export: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// LoadGroups reads an exported groups file. A missing file yields an empty map.
func LoadGroups(path string) (map[string]GroupRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]GroupRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	records := make(map[string]GroupRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}
