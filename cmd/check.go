package cmd

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/reelkit/reel/color"
	"github.com/reelkit/reel/constant"
	"github.com/reelkit/reel/mpv"
	"github.com/reelkit/reel/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that a usable mpv is installed",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := mpv.Check()
		if err != nil {
			printMissingDependency(err)
			handleErr(err)
		}
		success("mpv found at %s", style.Fg(color.Yellow)(path))
	},
}

func installHint() string {
	switch runtime.GOOS {
	case constant.Darwin:
		return "brew install mpv"
	case constant.Linux:
		return "sudo apt install mpv"
	case constant.Windows:
		return "scoop install mpv"
	default:
		return ""
	}
}

func printMissingDependency(err error) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render("mpv unavailable")
	body := style.Faint(err.Error())

	suggestion := ""
	if hint := installHint(); hint != "" {
		suggestion = fmt.Sprintf("\nTo install it, try running:\n  %s", style.New().Foreground(color.Cyan).Bold(true).Render(hint))
	}

	fmt.Println(box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, suggestion)))
}
