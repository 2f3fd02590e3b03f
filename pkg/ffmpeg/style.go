// Package ffmpeg builds and runs the external media-tool invocations that
// burn narration onto background media and merge the resulting clips.
package ffmpeg

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Style controls the scale/pad and subtitle drawtext stages of the clip
// filter graph.
type Style struct {
	Width           int
	Height          int
	BackgroundColor string
	FontFile        string
	FontSize        int
	FontColor       string
	BorderColor     string
}

// DefaultStyle is 1080p with a white fill, white 36pt text and a light-blue
// border, using the bundled Noto Sans JP bold face under fontDir.
func DefaultStyle(fontDir string) Style {
	return Style{
		Width:           1920,
		Height:          1080,
		BackgroundColor: "white",
		FontFile:        filepath.Join(fontDir, "NotoSansJP-Bold.ttf"),
		FontSize:        36,
		FontColor:       "white",
		BorderColor:     "0xBBDEFB",
	}
}

// FilterComplex builds the two-stage graph: scale and pad the background to
// the target resolution, then draw the overlay text centered near the bottom.
func (s Style) FilterComplex(overlayText string) string {
	var b strings.Builder

	fmt.Fprintf(&b,
		"[0]scale=w='min(%d,iw)':h='min(%d,ih)':force_original_aspect_ratio=decrease,"+
			"pad=%d:%d:(%d-iw)/2:(%d-ih)/2:%s[bg];",
		s.Width, s.Height, s.Width, s.Height, s.Width, s.Height, s.BackgroundColor)

	fmt.Fprintf(&b,
		"[bg]drawtext=fontfile='%s':fontsize=%d:fontcolor=%s@0.9:borderw=10:bordercolor=%s:"+
			"text='%s':x=(W-text_w)/2:y=(H-text_h-50):wrap_unicode[out2]",
		escapeFilterValue(s.FontFile), s.FontSize, s.FontColor, s.BorderColor,
		escapeFilterValue(overlayText))

	return b.String()
}

// escapeFilterValue escapes characters that break single-quoted drawtext
// values inside a filter_complex expression.
func escapeFilterValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	v = strings.ReplaceAll(v, `:`, `\:`)
	return v
}
