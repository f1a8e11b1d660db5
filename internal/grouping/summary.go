package grouping

import (
	"slices"

	"sitephoto/internal/annotation"
)

// Member is one photo inside a group summary.
type Member struct {
	File string `json:"file"`
	Role string `json:"role,omitempty"`
}

// GroupSummary describes one group for display.
type GroupSummary struct {
	Group       int      `json:"group"`
	Identity    string   `json:"identity"`
	MachineType string   `json:"machine_type,omitempty"`
	Members     []Member `json:"members"`
}

// Summarize collects photos by group number in ascending order. Members are
// listed by capture order; the identity and machine type come from the
// earliest member.
func Summarize(photos []annotation.Photo) []GroupSummary {
	ordered := annotation.Clone(photos)
	annotation.SortByCapture(ordered)

	byGroup := make(map[int]*GroupSummary)
	for _, photo := range ordered {
		summary, ok := byGroup[photo.Group]
		if !ok {
			summary = &GroupSummary{
				Group:       photo.Group,
				Identity:    photo.Identity,
				MachineType: photo.MachineType,
			}
			byGroup[photo.Group] = summary
		}
		if summary.MachineType == "" {
			summary.MachineType = photo.MachineType
		}
		summary.Members = append(summary.Members, Member{File: photo.File, Role: photo.Role})
	}

	groups := make([]int, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	slices.Sort(groups)

	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, *byGroup[g])
	}
	return out
}
