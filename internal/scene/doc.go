// Package scene infers whether a photo is an overview, a board shot with a
// measuring tool, or a measuring-tool closeup from detected object areas.
package scene
