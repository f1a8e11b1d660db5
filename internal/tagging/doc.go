// Package tagging files photos into category folders that already exist
// under the photo folder.
//
// Categories are the folder's visible subdirectories. Each photo is scored
// against every category name using its board fields and text, detected
// objects, description, and the activity keywords ranked from its text. The
// highest score wins; photos with no evidence stay untagged.
package tagging
