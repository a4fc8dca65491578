package session

import (
	"github.com/reelkit/reel/key"
	"github.com/reelkit/reel/progress"
	"github.com/reelkit/reel/selector"
	"github.com/spf13/viper"
)

// Options configures a session.
type Options struct {
	// Progress receives resume points. Default: no persistence.
	Progress progress.Store

	// Selector picks a variant per track type at prepare time.
	// Default: an uncapped selector.Policy.
	Selector selector.Selector

	// StartWhenPrepared starts playback as soon as the engine reports prepared.
	StartWhenPrepared bool

	// Looping restarts playback on completion.
	Looping bool

	// Volume in [0, 1]. Default: 1.
	Volume float64

	// Speed multiplier. Default: 1.
	Speed float64
}

func (o *Options) setDefaults() {
	if o.Progress == nil {
		o.Progress = progress.Nop{}
	}
	if o.Selector == nil {
		o.Selector = selector.Policy{}
	}
	if o.Volume == 0 {
		o.Volume = 1
	}
	if o.Speed == 0 {
		o.Speed = 1
	}
}

// OptionsFromConfig reads the player.* keys. Progress and Selector are left for the caller.
func OptionsFromConfig() Options {
	return Options{
		StartWhenPrepared: viper.GetBool(key.PlayerStartWhenPrepared),
		Looping:           viper.GetBool(key.PlayerLooping),
		Volume:            viper.GetFloat64(key.PlayerVolume),
		Speed:             viper.GetFloat64(key.PlayerSpeed),
	}
}
