// Package grouping assigns dense, deterministic group numbers to annotated
// photos.
//
// Photos are partitioned by identity, sorted by capture time (unknown last,
// then filename), and split into segments whenever the gap between neighbours
// exceeds the configured window or the attachment-road hint flips. Segments
// are then renumbered 1..N by (first capture time, identity, allocation
// order), so the numbering never depends on input order or map iteration.
//
// PropagateAttachment corrects identities the per-photo normalizer missed by
// joining photos on shared station numbers. Pipeline chains the passes and
// re-clusters when propagation rewrote anything.
package grouping
