// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Playback Session - these keys seed the defaults applied to every new session.
const (
	PlayerStartWhenPrepared = "player.start_when_prepared"
	PlayerLooping           = "player.looping"
	PlayerVolume            = "player.volume"
	PlayerSpeed             = "player.speed"
	PlayerEngine            = "player.engine"
)

// Engine - these keys configure the mpv backend.
const (
	MpvPath       = "mpv.path"
	MpvExtraFlags = "mpv.extra_flags"
)

// Track Selection - these keys define the quality caps applied by the default selector.
const (
	SelectorMaxQuality        = "selector.max_quality"
	SelectorPreloadMaxQuality = "selector.preload_max_quality"
	SelectorPreferred         = "selector.preferred"
)

// Position Persistence - these keys govern resume-point checkpoints.
const (
	ProgressEnabled     = "progress.enabled"
	ProgressMinPosition = "progress.min_position"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored = "cli.colored"
)
