// Package constant defines immutable application-level identifiers.
package constant

const (
	// Reel is the canonical application identifier used for filesystem paths, env prefixes and CLI branding.
	Reel = "reel"

	// Version is the current application semantic version string.
	Version = "0.3.0"
)

// Build metadata, set with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
