// Package config wires reel's settings into viper: registered defaults, REEL_* environment
// bindings and an optional reel.toml in where.Config().
package config

import (
	"errors"
	"strings"

	"github.com/reelkit/reel/constant"
	"github.com/reelkit/reel/filesystem"
	"github.com/reelkit/reel/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps configuration keys onto environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup loads defaults, binds environment variables and reads the config file if present.
func Setup() error {
	viper.SetConfigName(constant.Reel)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Reel)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}
