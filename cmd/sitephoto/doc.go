// Package main hosts the sitephoto CLI entrypoint and command graph.
//
// Each command works on one photo folder: import loads annotations into the
// folder database, group/scene/activity run the reasoning passes and persist
// their results, export writes photo-groups.json, and summary prints counts.
// Mutating commands hold the folder lock for their duration.
package main
