// Package cmd implements reel's command-line interface.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/reelkit/reel/color"
	"github.com/reelkit/reel/constant"
	"github.com/reelkit/reel/key"
	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().String("mpv", "", "Path or name of the mpv executable")
	lo.Must0(viper.BindPFlag(key.MpvPath, rootCmd.PersistentFlags().Lookup("mpv")))

	rootCmd.PersistentFlags().BoolP("no-progress", "P", false, "Do not read or write resume positions")
}

// rootCmd is the entry point.
var rootCmd = &cobra.Command{
	Use:   constant.Reel,
	Short: "Pooled playback sessions over mpv",
	Long: style.New().Bold(true).Foreground(color.HiPurple).Render(constant.Reel) + "\n" +
		style.New().Italic(true).Foreground(color.HiCyan).Render("    - pooled, resumable playback sessions over mpv"),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("no-progress")) {
			viper.Set(key.ProgressEnabled, false)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}
		handleErr(cmd.Help())
	},
}

// Execute runs the command tree.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(color.Red)("✖"), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}

func success(format string, args ...any) {
	fmt.Printf("%s %s\n", style.Fg(color.Green)("✔"), fmt.Sprintf(format, args...))
}
