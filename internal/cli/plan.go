package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/forPelevin/reelstitch/internal/domain/renderplan"
	"github.com/forPelevin/reelstitch/internal/pipeline"
	"github.com/forPelevin/reelstitch/internal/usecase"
)

func newPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan --clips <manifest>",
		Short: "Show how each segment would be conformed without rendering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clips, _ := cmd.Flags().GetString("clips")
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()

			prepared, err := pipeline.Plan(ctx, pipeline.Config{
				ClipsPath: clips,
				Settings:  cfg,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), planTable(prepared))
			return nil
		},
	}
}

func planTable(prepared []usecase.Prepared) string {
	cols := []column{
		{"#", true}, {"Clip", true}, {"Narration", true}, {"Target", true},
		{"Strategy", false}, {"Tempo", false}, {"Words", false},
		{"Cues", true}, {"Dropped", true},
		{"Video ops", false}, {"Audio ops", false},
	}
	rows := make([][]string, 0, len(prepared))
	for _, p := range prepared {
		rows = append(rows, []string{
			strconv.Itoa(p.Plan.Index),
			seconds(p.Video.Duration),
			seconds(p.Audio.Duration),
			seconds(p.Plan.OutputDuration),
			p.Plan.Conform.String(),
			p.Plan.Tempo.String(),
			string(p.Words),
			strconv.Itoa(len(p.Plan.SubtitleCues)),
			strconv.Itoa(p.DroppedCues),
			renderplan.Describe(p.Plan.VideoOps),
			renderplan.Describe(p.Plan.AudioOps),
		})
	}
	return renderTable(cols, rows)
}

func seconds(v float64) string {
	if v <= 0 {
		return "?"
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + "s"
}
