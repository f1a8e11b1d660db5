// Package identity canonicalizes the per-photo identity string.
//
// Photos of attachment-road work often carry a machine or location identity
// that the vision model read inconsistently. When a photo's own text names the
// attachment road, its identity is rewritten to "<prefix> No.<n>" using the
// station marker found in that text. Normalization is idempotent and never
// consults other photos; cross-photo correction lives in package grouping.
package identity
