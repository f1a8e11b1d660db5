// Package textutil turns free-text labels into safe file and folder names.
package textutil
