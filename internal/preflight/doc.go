// Package preflight checks that a photo folder and its configured overrides
// are usable before a command touches them.
//
// The CLI "sitephoto check" command prints every result; mutating commands
// call RunAll and stop on the first failure.
package preflight
