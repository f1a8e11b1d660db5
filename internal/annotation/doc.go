// Package annotation defines the per-photo record produced by the external
// vision model and the boundary checks applied before records reach the
// reasoning passes.
//
// Photo ordering helpers live here so every pass sorts by the same key:
// capture time ascending with unknown times last, then filename.
package annotation
