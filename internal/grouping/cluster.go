package grouping

import (
	"cmp"
	"slices"

	"sitephoto/internal/annotation"
	"sitephoto/internal/identity"
)

// DefaultGapSeconds is the largest capture-time gap allowed inside one segment.
const DefaultGapSeconds = 300

// Options controls segment splitting.
type Options struct {
	Rules      identity.Rules
	GapSeconds int64
}

// DefaultOptions returns the machine-profile defaults.
func DefaultOptions() Options {
	return Options{Rules: identity.DefaultRules(), GapSeconds: DefaultGapSeconds}
}

// Segment is a maximal time-contiguous run of photos sharing one identity and
// one attachment-hint value, after compaction.
type Segment struct {
	Group      int      `json:"group"`
	Identity   string   `json:"identity"`
	FirstAt    *int64   `json:"first_captured_at,omitempty"`
	Attachment bool     `json:"attachment"`
	Files      []string `json:"files"`
}

type tempSegment struct {
	id         int
	identity   string
	first      *int64
	attachment bool
	members    []int
}

// AssignGroups partitions photos by identity, splits each partition into
// segments on capture gaps and attachment-hint changes, then numbers every
// segment 1..N by (first capture time, identity, allocation order). The input
// is not modified; the returned snapshot carries the new group numbers.
func AssignGroups(photos []annotation.Photo, opts Options) ([]annotation.Photo, []Segment) {
	out := annotation.Clone(photos)
	for i := range out {
		out[i].Group = 0
	}

	partitions := make(map[string][]int)
	for i, photo := range out {
		partitions[photo.Identity] = append(partitions[photo.Identity], i)
	}
	identities := make([]string, 0, len(partitions))
	for id := range partitions {
		identities = append(identities, id)
	}
	// Walking identities in sorted order keeps temp ids independent of map order.
	slices.Sort(identities)

	var temps []*tempSegment
	for _, id := range identities {
		members := partitions[id]
		slices.SortStableFunc(members, func(a, b int) int {
			return annotation.CompareCapture(out[a], out[b])
		})

		var current *tempSegment
		prevHint := false
		for k, idx := range members {
			hint := opts.Rules.AttachmentHint(out[idx])
			if k == 0 || opts.splits(out[members[k-1]], out[idx], prevHint, hint) {
				current = &tempSegment{
					id:         len(temps),
					identity:   id,
					first:      out[idx].CapturedAt,
					attachment: hint,
				}
				temps = append(temps, current)
			}
			current.members = append(current.members, idx)
			prevHint = hint
		}
	}

	slices.SortFunc(temps, compareTemp)

	segments := make([]Segment, 0, len(temps))
	for n, temp := range temps {
		group := n + 1
		seg := Segment{
			Group:      group,
			Identity:   temp.identity,
			FirstAt:    temp.first,
			Attachment: temp.attachment,
			Files:      make([]string, 0, len(temp.members)),
		}
		for _, idx := range temp.members {
			out[idx].Group = group
			seg.Files = append(seg.Files, out[idx].File)
		}
		segments = append(segments, seg)
	}
	return out, segments
}

func (o Options) splits(prev, curr annotation.Photo, prevHint, currHint bool) bool {
	if prevHint != currHint {
		return true
	}
	return annotation.Gap(prev, curr) > o.GapSeconds
}

// compareTemp orders segments by first timestamp (unknown last), identity,
// then temp id.
func compareTemp(a, b *tempSegment) int {
	switch {
	case a.first != nil && b.first == nil:
		return -1
	case a.first == nil && b.first != nil:
		return 1
	case a.first != nil && b.first != nil && *a.first != *b.first:
		return cmp.Compare(*a.first, *b.first)
	}
	if c := cmp.Compare(a.identity, b.identity); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}
