// Package logs reads back the sitephoto log file for the CLI "logs" command.
//
// Recent keeps only the last N matching lines in a ring buffer, so memory stays
// bounded for long-lived log files.
package logs
