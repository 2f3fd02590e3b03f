// Package config loads tool configuration from the environment, optionally
// pre-filled from a TOML file. Environment always wins so the process can be
// driven entirely by env vars, as a batch tool should be.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"slidecast/pkg/errors"
)

type AppConfig struct {
	ResourceFilePath string `toml:"resource_file_path"`
	FontDir          string `toml:"font_dir"`
	LogDir           string `toml:"log_dir"`
	FfmpegPath       string `toml:"ffmpeg_path"`
	VideoCodec       string `toml:"video_codec"`
	SynthConcurrency int    `toml:"synth_concurrency"`
}

type VoicevoxConfig struct {
	ServerURL      string `toml:"server_url"`
	DefaultVoiceID int    `toml:"default_voice_id"`
}

type OutputConfig struct {
	VoiceDir string `toml:"voice_dir"`
	VideoDir string `toml:"video_dir"`
}

type Config struct {
	App      AppConfig      `toml:"app"`
	Voicevox VoicevoxConfig `toml:"voicevox"`
	Output   OutputConfig   `toml:"output"`
}

var Conf Config

// Env var names. The DEFAULT_* ones are the conventional names used by
// existing .env files for this script format.
const (
	EnvResourceFilePath = "DEFAULT_RESOURCE_FILE_PATH"
	EnvOutputVoiceDir   = "DEFAULT_OUTPUT_VOICE_FILE_DIR"
	EnvOutputVideoDir   = "DEFAULT_OUTPUT_VIDEO_FILE_DIR"
	EnvVoicevoxURL      = "DEFAULT_VOICEVOX_SERVER_URL"
	EnvVoicevoxVoiceID  = "DEFAULT_VOICEVOX_VOICE_ID"

	EnvConfigFile       = "SLIDECAST_CONFIG_FILE"
	EnvFfmpegPath       = "SLIDECAST_FFMPEG_PATH"
	EnvFontDir          = "SLIDECAST_FONT_DIR"
	EnvLogDir           = "SLIDECAST_LOG_DIR"
	EnvVideoCodec       = "SLIDECAST_VIDEO_CODEC"
	EnvSynthConcurrency = "SLIDECAST_SYNTH_CONCURRENCY"
)

func defaultConfig() Config {
	return Config{
		App: AppConfig{
			FontDir:          filepath.Join("resource", "fonts", "static"),
			FfmpegPath:       "ffmpeg",
			VideoCodec:       "libx264",
			SynthConcurrency: 3,
		},
		Output: OutputConfig{
			VoiceDir: filepath.Join("results", "output", "voice"),
			VideoDir: filepath.Join("results", "output", "video"),
		},
	}
}

// LoadConfig fills Conf from the optional TOML file and then the environment.
// It never fails on a missing file path var; CheckConfig reports those.
func LoadConfig() error {
	Conf = defaultConfig()

	if configFile := strings.TrimSpace(os.Getenv(EnvConfigFile)); configFile != "" {
		if _, err := toml.DecodeFile(configFile, &Conf); err != nil {
			return errors.Wrap(errors.CodeConfigInvalid, "failed to decode config file", err)
		}
	}

	applyEnvString(EnvResourceFilePath, &Conf.App.ResourceFilePath)
	applyEnvString(EnvOutputVoiceDir, &Conf.Output.VoiceDir)
	applyEnvString(EnvOutputVideoDir, &Conf.Output.VideoDir)
	applyEnvString(EnvVoicevoxURL, &Conf.Voicevox.ServerURL)
	applyEnvString(EnvFfmpegPath, &Conf.App.FfmpegPath)
	applyEnvString(EnvFontDir, &Conf.App.FontDir)
	applyEnvString(EnvLogDir, &Conf.App.LogDir)
	applyEnvString(EnvVideoCodec, &Conf.App.VideoCodec)

	if err := applyEnvInt(EnvVoicevoxVoiceID, &Conf.Voicevox.DefaultVoiceID); err != nil {
		return err
	}
	if err := applyEnvInt(EnvSynthConcurrency, &Conf.App.SynthConcurrency); err != nil {
		return err
	}

	return nil
}

func applyEnvString(key string, target *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func applyEnvInt(key string, target *int) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.WrapWithDetail(errors.CodeConfigInvalid, "invalid integer config value", key, err)
	}
	*target = n
	return nil
}

// CheckConfig validates that everything required by the pipeline is present.
// Must run before any processing starts.
func CheckConfig() error {
	missing := func(key string) error {
		return errors.WrapWithDetail(errors.CodeConfigMissing, "required configuration missing", key, nil)
	}

	if Conf.App.ResourceFilePath == "" {
		return missing(EnvResourceFilePath)
	}
	if Conf.Output.VoiceDir == "" {
		return missing(EnvOutputVoiceDir)
	}
	if Conf.Output.VideoDir == "" {
		return missing(EnvOutputVideoDir)
	}
	if Conf.Voicevox.ServerURL == "" {
		return missing(EnvVoicevoxURL)
	}
	if Conf.Voicevox.DefaultVoiceID == 0 {
		return missing(EnvVoicevoxVoiceID)
	}
	if Conf.App.SynthConcurrency <= 0 {
		return errors.WrapWithDetail(errors.CodeConfigInvalid, "synth concurrency must be positive",
			fmt.Sprintf("%s=%d", EnvSynthConcurrency, Conf.App.SynthConcurrency), nil)
	}
	return nil
}

// ResolveDir turns a configured directory into an absolute path. Absolute
// paths pass through; relative ones resolve against the working directory,
// with "." segments dropped and ".." segments walking up.
func ResolveDir(dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}

	base, err := os.Getwd()
	if err != nil {
		return dir
	}
	return filepath.Clean(filepath.Join(base, dir))
}
