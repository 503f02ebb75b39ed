// Package constants centralizes configuration defaults shared across the CLI.
//
// Probe timeouts, redirect limits, the probe User-Agent and file permissions live
// here so that cmd/, internal/checker and internal/api agree on the same values
// without importing each other.
package constants
