// Package filesystem provides filesystem implementations for skhdctl.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and an afero-backed one used
// by tests for in-memory and failure-injecting filesystems.
package filesystem
