// Package types defines the core types shared across skhdctl.
// This includes the ConfigFile aggregate and its Shortcut entries,
// parse errors, backups, daemon status, and the FS interface the
// persistence layer operates through.
package types
