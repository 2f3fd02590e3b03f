// Package types holds the capability interfaces the pipeline drives. The
// concrete implementations talk to the synthesis engine and the external
// media tool; tests substitute fakes that record invocations.
package types

import (
	"context"

	"slidecast/internal/script"
)

// Synthesizer converts one narration line to an audio file and reports the
// voice used and the derived play time. A nil voiceID means the configured
// default voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voiceID *int, outputPath string) (script.AudioResult, error)
}

// ClipRenderer burns one narration line onto its background media as a video
// clip whose play length equals the audio duration.
type ClipRenderer interface {
	RenderClip(ctx context.Context, key, backgroundPath string, audio script.AudioResult, overlayText string) (string, error)
}

// Concatenator merges ordered clips into a single video file and returns its
// path.
type Concatenator interface {
	Concat(ctx context.Context, clipPaths []string) (string, error)
}
