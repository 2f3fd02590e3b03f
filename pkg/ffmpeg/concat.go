package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"slidecast/log"
	"slidecast/pkg/errors"
	"slidecast/pkg/executor"
)

// Concatenator merges an ordered list of clips via the concat demuxer in
// stream-copy mode.
type Concatenator struct {
	FfmpegPath string
	VideoDir   string

	exec executor.Executor
}

func NewConcatenator(exec executor.Executor, ffmpegPath, videoDir string) *Concatenator {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Concatenator{
		FfmpegPath: ffmpegPath,
		VideoDir:   videoDir,
		exec:       exec,
	}
}

// OutputPaths generates a manifest/output pair sharing one random id, so
// repeated runs never collide.
func (c *Concatenator) OutputPaths() (manifestPath, outputPath string) {
	id := uuid.NewString()
	manifestPath = filepath.Join(c.VideoDir, fmt.Sprintf("concat-%s.txt", id))
	outputPath = filepath.Join(c.VideoDir, fmt.Sprintf("concat-%s.mp4", id))
	return manifestPath, outputPath
}

// WriteManifest writes the concat demuxer manifest: one "file '<path>'" line
// per clip, in input order, newline-terminated.
func WriteManifest(manifestPath string, clipPaths []string) error {
	var b strings.Builder
	for _, clip := range clipPaths {
		fmt.Fprintf(&b, "file '%s'\n", clip)
	}

	if err := os.MkdirAll(filepath.Dir(manifestPath), 0o755); err != nil {
		return errors.Wrap(errors.CodeManifestWrite, "create manifest dir failed", err)
	}
	if err := os.WriteFile(manifestPath, []byte(b.String()), 0o644); err != nil {
		return errors.WrapWithDetail(errors.CodeManifestWrite, "write concat manifest failed", manifestPath, err)
	}
	return nil
}

// Concat merges the clips listed in the manifest into outputPath.
func (c *Concatenator) Concat(ctx context.Context, clipPaths []string) (string, error) {
	manifestPath, outputPath := c.OutputPaths()

	if err := WriteManifest(manifestPath, clipPaths); err != nil {
		return "", err
	}

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		outputPath,
	}

	if _, err := c.exec.Execute(ctx, c.FfmpegPath, args...); err != nil {
		return "", errors.WrapWithDetail(errors.CodeConcat, "video concat failed", manifestPath, err)
	}

	log.GetLogger().Debug("clips concatenated",
		zap.Int("clips", len(clipPaths)),
		zap.String("output", outputPath))

	return outputPath, nil
}
