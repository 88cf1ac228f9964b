package config

import (
	"fmt"
	"strconv"
	"strings"
)

const envPrefix = "REELSTITCH_"

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		"FORMAT":        &c.Format,
		"FONT":          &c.Font,
		"COLOR":         &c.Color,
		"MUSIC_PATH":    &c.MusicPath,
		"WORK_DIR":      &c.WorkDir,
		"FFMPEG_PATH":   &c.FFmpegPath,
		"FFPROBE_PATH":  &c.FFprobePath,
		"BEATS_COMMAND": &c.BeatsCommand,
		"WHISPER_BIN":   &c.WhisperBin,
		"WHISPER_MODEL": &c.WhisperModel,
		"PRESET":        &c.Preset,
		"LOG_LEVEL":     &c.LogLevel,
		"LOG_FORMAT":    &c.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := lookupTrimmed(lookup, key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"FONT_SIZE": &c.FontSize,
		"WORKERS":   &c.Workers,
		"CRF":       &c.CRF,
	}
	for key, dst := range ints {
		v, ok := lookupTrimmed(lookup, key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = n
	}

	floats := map[string]*float64{
		"VERTICAL_POSITION": &c.VerticalPosition,
		"MUSIC_VOLUME":      &c.MusicVolume,
	}
	for key, dst := range floats {
		v, ok := lookupTrimmed(lookup, key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = f
	}

	if v, ok := lookupTrimmed(lookup, "SUBTITLES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSUBTITLES: %w", envPrefix, err)
		}
		c.Subtitles = b
	}
	return nil
}

func lookupTrimmed(lookup lookupFunc, key string) (string, bool) {
	v, ok := lookup(envPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
