// Package organizer files photos into per-activity or per-group folders.
//
// Plan is pure: it maps every photo to <root>/<sanitized folder>/<file>,
// suffixing targets that would collide with existing files or with each
// other. Apply performs the moves, falling back to a verified copy when a
// rename crosses devices, and reports per-file failures without stopping.
package organizer
