// Package photostore persists imported annotations and reasoning results in a
// per-folder SQLite database.
//
// The database lives at <folder>/.sitephoto/photos.db and runs in WAL mode
// with busy-retry around writes. Every grouping, scene, and activity pass is
// recorded as a run with a UUID; grouping runs also keep the identity rewrites
// they made. Mutating commands hold a FolderLock for their duration.
//
// Schema changes bump schemaVersion; an older database fails to open with
// ErrSchemaMismatch and must be deleted and re-imported.
package photostore
