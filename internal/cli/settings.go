package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/forPelevin/reelstitch/internal/config"
	"github.com/forPelevin/reelstitch/internal/logging"
)

// loadSettings layers explicitly set flags over the config file and
// environment.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	applyFlags(flags, &cfg)
	return cfg, nil
}

func applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}
	float := func(name string, dst *float64) {
		if flags.Changed(name) {
			*dst, _ = flags.GetFloat64(name)
		}
	}

	str("format", &cfg.Format)
	str("font", &cfg.Font)
	num("fontsize", &cfg.FontSize)
	str("color", &cfg.Color)
	float("position", &cfg.VerticalPosition)
	str("audio", &cfg.MusicPath)
	float("music-volume", &cfg.MusicVolume)
	num("workers", &cfg.Workers)
	str("workdir", &cfg.WorkDir)
	str("preset", &cfg.Preset)
	num("crf", &cfg.CRF)
	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)
	if flags.Changed("no-subtitles") {
		off, _ := flags.GetBool("no-subtitles")
		cfg.Subtitles = !off
	}
}

func newLogger(cmd *cobra.Command, cfg config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})
}
