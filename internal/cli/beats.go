package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/forPelevin/reelstitch/internal/pipeline"
)

func newBeatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "beats <audio>",
		Short: "Print beat times, or beat-aligned segment targets with --clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if clips == "" {
				grid, err := pipeline.Beats(ctx, cfg, args[0])
				if err != nil {
					return err
				}
				b, err := json.Marshal(grid)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}

			targets, err := pipeline.BeatTargets(ctx, cfg, clips, args[0], logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), targetsTable(targets))
			return nil
		},
	}
}

func targetsTable(targets []float64) string {
	rows := make([][]string, 0, len(targets))
	for i, t := range targets {
		rows = append(rows, []string{strconv.Itoa(i), strconv.FormatFloat(t, 'f', 3, 64)})
	}
	return renderTable([]column{{"#", true}, {"Target (s)", true}}, rows)
}
