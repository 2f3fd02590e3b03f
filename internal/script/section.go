// Package script defines the slide-script data model and its parser. A script
// is a plain-text sequence of sections, each bound to one background image or
// video file, with an optional title and narration body lines.
package script

import (
	"time"

	"github.com/google/uuid"
)

// Section is one unit of narrated content bound to one background media file.
// The parser creates it; the pipeline fills Voices and RenderedVideo, each
// exactly once and in stage order.
type Section struct {
	// SourcePath is the background image/video path as written in the script.
	// Not checked for existence at parse time.
	SourcePath string
	// Title is optional; when a section carries several "#" lines the last
	// one wins.
	Title string
	// Contents hold the narration lines in document order.
	Contents []*Content

	// Voices maps Content.Key to its synthesized audio. Populated by the
	// synthesis stage; equals len(Contents) once every entry succeeded.
	Voices map[string]AudioResult

	// RenderedVideo is the section's concatenated clip, set only after a
	// successful render stage.
	RenderedVideo string
}

// Content is one narration unit: a body line, or an explicit blank-line
// placeholder representing a deliberate pause.
type Content struct {
	// Key correlates this line with its synthesized audio. Generated once,
	// never reused.
	Key string
	// VoiceID overrides the default synthesis voice for this line only.
	VoiceID *int
	// Text may be empty for a pause placeholder.
	Text string
}

// AudioResult is the output of speech synthesis for one content line.
type AudioResult struct {
	VoiceID  int
	Filepath string
	Duration time.Duration
}

func NewContent(voiceID *int, text string) *Content {
	return &Content{
		Key:     uuid.NewString(),
		VoiceID: voiceID,
		Text:    text,
	}
}

func newSection() *Section {
	return &Section{
		Contents: []*Content{},
		Voices:   map[string]AudioResult{},
	}
}
