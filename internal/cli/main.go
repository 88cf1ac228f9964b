package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := NewRootCommand()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "reelstitch --clips <manifest> --output <file.mp4>",
		Short:         "Stitch narrated clips into one short-form video",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "TOML configuration file")
	pf.String("clips", "", "Segment manifest (JSON or YAML)")
	pf.String("format", "", "Output aspect ratio: 9:16 or 16:9")
	pf.String("font", "", "Subtitle font")
	pf.Int("fontsize", 0, "Subtitle font size")
	pf.String("color", "", "Subtitle color (name or #RRGGBB)")
	pf.Float64("position", 0, "Subtitle vertical position (0 top, 1 bottom)")
	pf.Bool("no-subtitles", false, "Disable burned-in subtitles")
	pf.Int("workers", 0, "Maximum concurrent segment renders")
	pf.String("workdir", "", "Directory for intermediate files")
	pf.String("preset", "", "x264 preset")
	pf.Int("crf", 0, "x264 CRF")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: auto, console, json")

	f := root.Flags()
	f.String("output", "", "Final MP4 path")
	f.String("audio", "", "Background music")
	f.Float64("music-volume", 0, "Background music volume")

	root.AddCommand(newPlanCommand())
	root.AddCommand(newBeatsCommand())
	return root
}
