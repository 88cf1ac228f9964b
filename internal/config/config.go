package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	FormatVertical   = "9:16"
	FormatHorizontal = "16:9"
)

// Config holds run-level settings. Zero values in a TOML file keep the
// defaults from Default.
type Config struct {
	Format           string  `toml:"format"`
	Font             string  `toml:"font"`
	FontSize         int     `toml:"font_size"`
	Color            string  `toml:"color"`
	VerticalPosition float64 `toml:"vertical_position"`
	MusicPath        string  `toml:"music_path"`
	MusicVolume      float64 `toml:"music_volume"`
	Subtitles        bool    `toml:"subtitles"`
	Workers          int     `toml:"workers"`
	WorkDir          string  `toml:"work_dir"`

	FFmpegPath   string `toml:"ffmpeg_path"`
	FFprobePath  string `toml:"ffprobe_path"`
	BeatsCommand string `toml:"beats_command"`
	WhisperBin   string `toml:"whisper_bin"`
	WhisperModel string `toml:"whisper_model"`

	Preset string `toml:"preset"`
	CRF    int    `toml:"crf"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

func Default() Config {
	return Config{
		Format:           FormatVertical,
		Font:             "Arial",
		FontSize:         48,
		Color:            "white",
		VerticalPosition: 0.85,
		MusicVolume:      0.3,
		Subtitles:        true,
		Workers:          4,
		WorkDir:          os.TempDir(),
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		BeatsCommand:     "python3 analyze_beats.py",
		WhisperBin:       ".cache/bin/whisper.cpp",
		Preset:           "veryfast",
		CRF:              18,
		LogLevel:         "info",
		LogFormat:        "auto",
	}
}

// Load returns defaults overlaid with the TOML file at path (when it exists)
// and then with REELSTITCH_* environment variables. An empty path skips the
// file. The result is not validated; flags still apply on top.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		file, err := os.Open(filepath.Clean(path))
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("open config: %w", err)
		default:
			defer file.Close()
			dec := toml.NewDecoder(file)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures the configuration is usable.
func (c Config) Validate() error {
	if _, _, err := c.Dimensions(); err != nil {
		return err
	}
	if c.FontSize <= 0 {
		return errors.New("font_size must be > 0")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if c.MusicVolume < 0 || c.MusicVolume > 4 {
		return errors.New("music_volume must be between 0 and 4")
	}
	if c.VerticalPosition < 0 || c.VerticalPosition > 1 {
		return errors.New("vertical_position must be between 0 and 1")
	}
	if c.CRF < 0 || c.CRF > 51 {
		return errors.New("crf must be between 0 and 51")
	}
	if strings.TrimSpace(c.FFmpegPath) == "" {
		return errors.New("ffmpeg_path must be set")
	}
	if strings.TrimSpace(c.FFprobePath) == "" {
		return errors.New("ffprobe_path must be set")
	}
	if strings.TrimSpace(c.WorkDir) == "" {
		return errors.New("work_dir must be set")
	}
	return nil
}

// Dimensions returns the output frame size for the configured format.
func (c Config) Dimensions() (width, height int, err error) {
	switch strings.TrimSpace(c.Format) {
	case FormatVertical:
		return 1080, 1920, nil
	case FormatHorizontal:
		return 1920, 1080, nil
	default:
		return 0, 0, fmt.Errorf("unsupported format %q (want %s or %s)", c.Format, FormatVertical, FormatHorizontal)
	}
}
