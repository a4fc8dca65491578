package cmd

import (
	"encoding/json"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/reelkit/reel/color"
	"github.com/reelkit/reel/filesystem"
	"github.com/reelkit/reel/media"
	"github.com/reelkit/reel/style"
	"github.com/reelkit/reel/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourceCmd)
}

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Work with source description files",
}

func init() {
	sourceCmd.AddCommand(sourceSchemaCmd)
	sourceSchemaCmd.SetOut(os.Stdout)
}

var sourceSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of source descriptions",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := jsonschema.Reflector{ExpandedStruct: true}
		schema := reflector.Reflect(&media.Description{})

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(schema))
	},
}

func init() {
	sourceCmd.AddCommand(sourceInspectCmd)
	sourceInspectCmd.SetOut(os.Stdout)
}

var sourceInspectCmd = &cobra.Command{
	Use:   "inspect file",
	Short: "Validate a description and show its tracks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		src, err := loadDescription(args[0])
		handleErr(err)

		cmd.Println(style.Title(src.UniqueID()))
		cmd.Printf("%s %s\n", style.Faint("kind"), src.Kind())
		if d := src.Duration(); d > 0 {
			cmd.Printf("%s %s\n", style.Faint("duration"), util.Timestamp(d))
		}

		for _, typ := range media.TrackTypes {
			tracks := src.Tracks(typ)
			if len(tracks) == 0 {
				continue
			}
			cmd.Println()
			cmd.Println(style.Fg(color.Purple)(util.Quantify(len(tracks), typ.String()+" track", typ.String()+" tracks")))
			for _, t := range tracks {
				cmd.Printf("  %s %s\n", style.Fg(color.Yellow)(lo.Ternary(t.Quality.IsZero(), "?", t.Quality.String())), style.Faint(t.URL))
			}
		}
	},
}

func loadDescription(path string) (*media.Source, error) {
	file, err := filesystem.API().Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return media.DecodeDescription(file)
}
