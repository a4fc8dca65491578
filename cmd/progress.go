package cmd

import (
	"os"
	"time"

	"github.com/reelkit/reel/color"
	"github.com/reelkit/reel/key"
	"github.com/reelkit/reel/progress"
	"github.com/reelkit/reel/style"
	"github.com/reelkit/reel/util"
	"github.com/reelkit/reel/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func progressStore() *progress.CacheStore {
	minPosition := time.Duration(viper.GetInt(key.ProgressMinPosition)) * time.Second
	return progress.NewCacheStore(where.Progress(), minPosition)
}

func init() {
	rootCmd.AddCommand(progressCmd)
}

var progressCmd = &cobra.Command{
	Use:     "progress",
	Short:   "Manage remembered playback positions",
	Aliases: []string{"resume"},
}

func init() {
	progressCmd.AddCommand(progressListCmd)
	progressListCmd.Flags().BoolP("raw", "r", false, "Only ids, one per line")
	progressListCmd.SetOut(os.Stdout)
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remembered positions, most recent first",
	Run: func(cmd *cobra.Command, args []string) {
		store := progressStore()
		all, err := store.All()
		handleErr(err)
		ids, err := store.IDs()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("raw")) {
			for _, id := range ids {
				cmd.Println(id)
			}
			return
		}

		if len(ids) == 0 {
			cmd.Println(style.Faint("nothing remembered yet"))
			return
		}

		cmd.Println(style.Title(util.Quantify(len(ids), "position", "positions")))
		for _, id := range ids {
			entry := all[id]
			cmd.Printf(
				"%s %s %s\n",
				style.Fg(color.Purple)(id),
				style.Fg(color.Yellow)(util.Timestamp(entry.Position)),
				style.Faint(entry.UpdatedAt.Format(time.DateTime)),
			)
		}
	},
}

func init() {
	progressCmd.AddCommand(progressForgetCmd)
}

var progressForgetCmd = &cobra.Command{
	Use:     "forget id...",
	Short:   "Forget the positions of the given ids",
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(1),
	ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		ids, _ := progressStore().IDs()
		return ids, cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		store := progressStore()
		for _, id := range args {
			handleErr(store.Remove(id))
		}
		success("forgot %s", util.Quantify(len(args), "position", "positions"))
	},
}

func init() {
	progressCmd.AddCommand(progressClearCmd)
}

var progressClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every position",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(progressStore().Clear())
		success("progress cleared")
	},
}
