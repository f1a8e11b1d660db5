package grouping

import (
	"slices"

	"sitephoto/internal/annotation"
	"sitephoto/internal/identity"
)

// IdentityChange records one identity rewrite made by a pipeline pass.
type IdentityChange struct {
	File string `json:"file"`
	From string `json:"from"`
	To   string `json:"to"`
	Pass string `json:"pass"`
}

// Pass names used in IdentityChange.
const (
	PassNormalize = "normalize"
	PassPropagate = "propagate"
)

// PropagateAttachment joins photos on their station number regardless of
// identity. Within each station, photos are split into time-contiguous chunks
// on the segment gap; when any chunk member carries the attachment hint, every
// member's identity becomes "<prefix> <station>". Photos without a readable
// station are left alone.
func PropagateAttachment(photos []annotation.Photo, opts Options) ([]annotation.Photo, []IdentityChange) {
	out := annotation.Clone(photos)

	byStation := make(map[string][]int)
	for i, photo := range out {
		station, ok := identity.FirstStation(photo.Identity, photo.DetectedText, photo.Description)
		if !ok {
			continue
		}
		byStation[station] = append(byStation[station], i)
	}
	stations := make([]string, 0, len(byStation))
	for station := range byStation {
		stations = append(stations, station)
	}
	slices.Sort(stations)

	var changes []IdentityChange
	for _, station := range stations {
		members := byStation[station]
		slices.SortStableFunc(members, func(a, b int) int {
			return annotation.CompareCapture(out[a], out[b])
		})
		for _, chunk := range chunkByGap(out, members, opts.GapSeconds) {
			if !anyHint(out, chunk, opts.Rules) {
				continue
			}
			target := opts.Rules.AttachmentIdentity(station)
			for _, idx := range chunk {
				if out[idx].Identity == target {
					continue
				}
				changes = append(changes, IdentityChange{
					File: out[idx].File,
					From: out[idx].Identity,
					To:   target,
					Pass: PassPropagate,
				})
				out[idx].Identity = target
			}
		}
	}
	return out, changes
}

func chunkByGap(photos []annotation.Photo, sorted []int, gap int64) [][]int {
	if len(sorted) == 0 {
		return nil
	}
	var chunks [][]int
	start := 0
	for k := 1; k < len(sorted); k++ {
		if annotation.Gap(photos[sorted[k-1]], photos[sorted[k]]) > gap {
			chunks = append(chunks, sorted[start:k])
			start = k
		}
	}
	return append(chunks, sorted[start:])
}

func anyHint(photos []annotation.Photo, chunk []int, rules identity.Rules) bool {
	for _, idx := range chunk {
		if rules.AttachmentHint(photos[idx]) {
			return true
		}
	}
	return false
}
