// Package where resolves the filesystem locations reel reads from and writes to.
package where

import (
	"os"
	"path/filepath"

	"github.com/reelkit/reel/constant"
	"github.com/reelkit/reel/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "REEL_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the configuration directory, honoring REEL_CONFIG_PATH.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Reel))
}

// State resolves the directory holding persisted playback state.
func State() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Reel))
}

// Logs resolves the directory used for diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Progress resolves the resume-point persistence file.
func Progress() string {
	return filepath.Join(State(), "progress.json")
}

// Sockets resolves the directory where engine IPC sockets are created.
func Sockets() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Reel))
}
