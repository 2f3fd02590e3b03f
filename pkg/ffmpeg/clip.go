package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"slidecast/internal/script"
	"slidecast/log"
	"slidecast/pkg/errors"
	"slidecast/pkg/executor"
)

// Renderer produces one video clip per narration line: the background looped
// for the audio's play time, with the line drawn as a subtitle.
type Renderer struct {
	FfmpegPath string
	VideoDir   string
	VideoCodec string
	Style      Style

	exec executor.Executor
}

func NewRenderer(exec executor.Executor, ffmpegPath, videoDir, videoCodec string, style Style) *Renderer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Renderer{
		FfmpegPath: ffmpegPath,
		VideoDir:   videoDir,
		VideoCodec: videoCodec,
		Style:      style,
		exec:       exec,
	}
}

// BuildClipArgs constructs the full argument vector and the deterministic
// per-key output path. Exposed so tests can assert the exact invocation.
func (r *Renderer) BuildClipArgs(key, backgroundPath string, audio script.AudioResult, overlayText string) ([]string, string) {
	outputPath := filepath.Join(r.VideoDir, key+".mp4")
	if !filepath.IsAbs(outputPath) {
		if cwd, err := os.Getwd(); err == nil {
			outputPath = filepath.Join(cwd, outputPath)
		}
	}

	// Clip length is forced to the audio duration; it is derived from the
	// synthesized payload, never measured again here.
	duration := audio.Duration.Seconds()

	args := []string{
		"-y",
		"-loop", "1",
		"-i", backgroundPath,
		"-i", audio.Filepath,
		"-filter_complex", r.Style.FilterComplex(overlayText),
		"-map", "[out2]",
		"-map", "1:a",
		"-s", fmt.Sprintf("%dx%d", r.Style.Width, r.Style.Height),
		"-t", fmt.Sprintf("%.3f", duration),
		"-c:v", r.VideoCodec,
		"-c:a", "aac",
		"-pix_fmt", "yuv420p",
		outputPath,
	}

	return args, outputPath
}

// RenderClip runs the external tool and returns the clip path.
func (r *Renderer) RenderClip(ctx context.Context, key, backgroundPath string, audio script.AudioResult, overlayText string) (string, error) {
	if err := os.MkdirAll(r.VideoDir, 0o755); err != nil {
		return "", errors.Wrap(errors.CodeFileWriteError, "create video output dir failed", err)
	}

	args, outputPath := r.BuildClipArgs(key, backgroundPath, audio, overlayText)

	if _, err := r.exec.Execute(ctx, r.FfmpegPath, args...); err != nil {
		return "", errors.WrapWithDetail(errors.CodeRender, "clip render failed", key, err)
	}

	log.GetLogger().Debug("clip rendered",
		zap.String("key", key),
		zap.String("background", backgroundPath),
		zap.String("output", outputPath))

	return outputPath, nil
}
