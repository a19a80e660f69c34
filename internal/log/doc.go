// Package log is the console's leveled logger.
//
// All log output goes to stderr so the JSON results commands print on stdout
// stay machine-readable. Debug lines are only emitted after SetVerbose(true).
package log
