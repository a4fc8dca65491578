package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/color"
	"github.com/reelkit/reel/controller"
	"github.com/reelkit/reel/event"
	"github.com/reelkit/reel/key"
	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/media"
	"github.com/reelkit/reel/mpv"
	"github.com/reelkit/reel/pool"
	"github.com/reelkit/reel/progress"
	"github.com/reelkit/reel/selector"
	"github.com/reelkit/reel/session"
	"github.com/reelkit/reel/style"
	"github.com/reelkit/reel/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var engines = map[string]adapter.Factory{
	"mpv": mpv.New,
}

func engineFactory() (adapter.Factory, error) {
	name := viper.GetString(key.PlayerEngine)
	if factory, ok := engines[name]; ok {
		return factory, nil
	}

	closest := lo.MinBy(lo.Keys(engines), func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})
	return nil, fmt.Errorf("unknown engine %s, did you mean %s?", style.Fg(color.Red)(name), style.Fg(color.Yellow)(closest))
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("source", "s", "", "Play a JSON source description instead of a URL")
	playCmd.Flags().StringP("quality", "q", "", "Highest quality to select, e.g. 720p")
	lo.Must0(viper.BindPFlag(key.SelectorMaxQuality, playCmd.Flags().Lookup("quality")))
	playCmd.Flags().String("prefer", "", "Preferred quality label")
	lo.Must0(viper.BindPFlag(key.SelectorPreferred, playCmd.Flags().Lookup("prefer")))
	playCmd.Flags().BoolP("loop", "l", false, "Restart when playback completes")
	lo.Must0(viper.BindPFlag(key.PlayerLooping, playCmd.Flags().Lookup("loop")))
	playCmd.Flags().Float64("volume", 1, "Initial volume from 0 to 1")
	lo.Must0(viper.BindPFlag(key.PlayerVolume, playCmd.Flags().Lookup("volume")))
}

var playCmd = &cobra.Command{
	Use:   "play [url]",
	Short: "Play a URL or a source description",
	Example: "  reel play https://example.com/video.m3u8\n" +
		"  reel play --source movie.json --quality 720p",
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		hasSource := cmd.Flags().Changed("source")
		if hasSource == (len(args) == 1) {
			return errors.New("pass either a url or --source")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		src, err := playSource(cmd, args)
		handleErr(err)
		handleErr(play(src))
	},
}

func playSource(cmd *cobra.Command, args []string) (*media.Source, error) {
	if len(args) == 1 {
		return media.FromURL(args[0]), nil
	}
	return loadDescription(lo.Must(cmd.Flags().GetString("source")))
}

func play(src *media.Source) error {
	factory, err := engineFactory()
	if err != nil {
		return err
	}
	policy, err := selector.FromConfig()
	if err != nil {
		return err
	}

	opts := session.OptionsFromConfig()
	opts.Progress = progress.FromConfig()
	opts.Selector = policy

	sessions := pool.New()
	defer sessions.RecycleAll()

	provider := newWindowProvider()
	c := controller.New(sessions, pool.SessionFactory(factory, opts))
	defer c.Close()

	c.BindSurfaceProvider(provider)
	if err := c.Bind(src); err != nil {
		return err
	}

	s := c.Session()
	finished := make(chan struct{})
	unsubscribe := s.Subscribe(statusPrinter(opts.Looping, finished))
	defer unsubscribe()

	if err := c.StartPlayback(); err != nil {
		return err
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	select {
	case <-finished:
	case sig := <-interrupt:
		log.Infof("received %s, stopping", sig)
		fmt.Println()
		provider.destroy()
	}

	if perr := s.LastError(); perr != nil {
		return perr
	}
	return nil
}

// statusPrinter renders session events on the terminal and closes finished once
// playback will not continue on its own.
func statusPrinter(looping bool, finished chan<- struct{}) event.Listener {
	done := false
	finish := func() {
		if !done {
			done = true
			close(finished)
		}
	}

	return func(e event.Event) {
		switch e.Code {
		case event.InfoProgress:
			p := e.Payload.(event.Progress)
			fmt.Printf("\r%s %s / %s ", style.Fg(color.Green)("▶"), util.Timestamp(p.Position), util.Timestamp(p.Duration))
		case event.InfoBufferingStart:
			fmt.Printf("\r%s ", style.Faint("buffering..."))
		case event.InfoTrackChanged:
			change := e.Payload.(event.TrackChange)
			if change.To == nil {
				return
			}
			fmt.Printf("\n%s %s\n", style.Fg(color.Purple)(change.Type.String()), change.To.Quality)
		case event.StatePrepared:
			fmt.Println(style.Title(e.Session))
		case event.StatePaused:
			fmt.Printf("\r%s ", style.Fg(color.Yellow)("paused"))
		case event.StateCompleted:
			if !looping {
				fmt.Println()
				success("finished")
				finish()
			}
		case event.StateError:
			fmt.Printf("\n%s %v\n", style.ErrorTitle("error"), e.Payload)
			finish()
		case event.StateReleased:
			finish()
		}
	}
}
