package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidecast/internal/script"
	"slidecast/log"
	apperrors "slidecast/pkg/errors"
)

type fakeExecutor struct {
	names []string
	args  [][]string
	err   error
}

func (f *fakeExecutor) Execute(_ context.Context, name string, args ...string) (string, error) {
	f.names = append(f.names, name)
	f.args = append(f.args, args)
	if f.err != nil {
		return "", f.err
	}
	return "", nil
}

func initTestLogger(t *testing.T) {
	t.Helper()
	t.Setenv("SLIDECAST_LOG_DIR", t.TempDir())
	log.InitLogger()
}

func testAudio() script.AudioResult {
	return script.AudioResult{
		VoiceID:  14,
		Filepath: "/tmp/voice/key.wav",
		Duration: 2500 * time.Millisecond,
	}
}

func TestFilterComplexShape(t *testing.T) {
	style := DefaultStyle(filepath.Join("resource", "fonts", "static"))
	filter := style.FilterComplex("hello world")

	assert.Contains(t, filter, "scale=w='min(1920,iw)':h='min(1080,ih)':force_original_aspect_ratio=decrease")
	assert.Contains(t, filter, "pad=1920:1080:(1920-iw)/2:(1080-ih)/2:white[bg]")
	assert.Contains(t, filter, "fontsize=36")
	assert.Contains(t, filter, "fontcolor=white@0.9")
	assert.Contains(t, filter, "bordercolor=0xBBDEFB")
	assert.Contains(t, filter, "text='hello world'")
	assert.Contains(t, filter, "x=(W-text_w)/2")
	assert.Contains(t, filter, "y=(H-text_h-50)")
	assert.Contains(t, filter, "wrap_unicode[out2]")
}

func TestFilterComplexEscapesOverlayText(t *testing.T) {
	style := DefaultStyle("fonts")
	filter := style.FilterComplex(`it's 10:30`)

	assert.Contains(t, filter, `text='it\'s 10\:30'`)
}

func TestBuildClipArgs(t *testing.T) {
	videoDir := t.TempDir()
	r := NewRenderer(&fakeExecutor{}, "ffmpeg", videoDir, "libx264", DefaultStyle("fonts"))

	args, outputPath := r.BuildClipArgs("key-1", "slides/a.png", testAudio(), "hello")

	assert.Equal(t, filepath.Join(videoDir, "key-1.mp4"), outputPath)
	assert.Equal(t, outputPath, args[len(args)-1])

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-loop 1")
	assert.Contains(t, joined, "-i slides/a.png")
	assert.Contains(t, joined, "-i /tmp/voice/key.wav")
	assert.Contains(t, joined, "-map [out2]")
	assert.Contains(t, joined, "-map 1:a")
	assert.Contains(t, joined, "-s 1920x1080")
	assert.Contains(t, joined, "-t 2.500")
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-c:a aac")
	assert.Contains(t, joined, "-pix_fmt yuv420p")
}

func TestRenderClipInvokesTool(t *testing.T) {
	initTestLogger(t)

	exec := &fakeExecutor{}
	videoDir := filepath.Join(t.TempDir(), "video")
	r := NewRenderer(exec, "/opt/ffmpeg/bin/ffmpeg", videoDir, "libx264", DefaultStyle("fonts"))

	clipPath, err := r.RenderClip(context.Background(), "key-1", "a.png", testAudio(), "hello")
	require.NoError(t, err)

	require.Len(t, exec.names, 1)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", exec.names[0])
	assert.Equal(t, clipPath, exec.args[0][len(exec.args[0])-1])

	// Output dir must exist before ffmpeg writes into it.
	_, statErr := os.Stat(videoDir)
	assert.NoError(t, statErr)
}

func TestRenderClipWrapsToolFailure(t *testing.T) {
	initTestLogger(t)

	exec := &fakeExecutor{err: errors.New("exit status 1\nstderr: no such filter")}
	r := NewRenderer(exec, "ffmpeg", t.TempDir(), "libx264", DefaultStyle("fonts"))

	_, err := r.RenderClip(context.Background(), "key-1", "a.png", testAudio(), "hello")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeRender))
	assert.Contains(t, err.Error(), "no such filter")
}

func TestWriteManifestFormat(t *testing.T) {
	manifestPath := filepath.Join(t.TempDir(), "concat-test.txt")

	require.NoError(t, WriteManifest(manifestPath, []string{"/out/a.mp4", "/out/b.mp4"}))

	data, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, "file '/out/a.mp4'\nfile '/out/b.mp4'\n", string(data))
}

func TestConcatInvokesConcatDemuxer(t *testing.T) {
	initTestLogger(t)

	exec := &fakeExecutor{}
	videoDir := t.TempDir()
	c := NewConcatenator(exec, "ffmpeg", videoDir)

	outputPath, err := c.Concat(context.Background(), []string{"/out/a.mp4", "/out/b.mp4"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(outputPath), "concat-"))
	assert.True(t, strings.HasSuffix(outputPath, ".mp4"))

	require.Len(t, exec.args, 1)
	joined := strings.Join(exec.args[0], " ")
	assert.Contains(t, joined, "-f concat")
	assert.Contains(t, joined, "-safe 0")
	assert.Contains(t, joined, "-c copy")
	assert.Equal(t, outputPath, exec.args[0][len(exec.args[0])-1])

	// Manifest and output share the same random id.
	manifestArg := exec.args[0][6]
	assert.Equal(t, strings.TrimSuffix(outputPath, ".mp4"), strings.TrimSuffix(manifestArg, ".txt"))
}

func TestConcatWrapsToolFailure(t *testing.T) {
	initTestLogger(t)

	exec := &fakeExecutor{err: errors.New("exit status 1")}
	c := NewConcatenator(exec, "ffmpeg", t.TempDir())

	_, err := c.Concat(context.Background(), []string{"/out/a.mp4"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeConcat))
}

func TestOutputPathsUnique(t *testing.T) {
	c := NewConcatenator(&fakeExecutor{}, "ffmpeg", "out")

	m1, o1 := c.OutputPaths()
	m2, o2 := c.OutputPaths()
	assert.NotEqual(t, m1, m2)
	assert.NotEqual(t, o1, o2)
}
