// Package ingest gets annotations into the system: it lists images in a
// folder, reads capture times, loads annotation journals and activity CSVs,
// and dispatches batches to an Annotator.
package ingest
