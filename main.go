// Package main is the entry point for reel.
package main

import (
	"github.com/reelkit/reel/cmd"
	"github.com/reelkit/reel/config"
	"github.com/reelkit/reel/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
