// Package activity names work activities from board text so photos can be
// filed into activity folders.
//
// Naming tries structured board fields first, then ranked allowlist keywords
// from the best available text, then carries the previous photo's activity
// forward when it was taken within the gap window. Everything else becomes
// the fallback label.
package activity
