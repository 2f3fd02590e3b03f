package script

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"slidecast/pkg/errors"
)

/* Script format:
[background file, absolute path ok]
# title
body line
body line
[next background file]
# title
body line
*/

// ParseFile reads and parses a script file.
func ParseFile(path string) ([]*Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithDetail(errors.CodeScriptRead, "failed to read script file", path, err)
	}
	return Parse(string(data)), nil
}

// Parse converts raw script text into sections in document order. The grammar
// is line-oriented and single-pass: each line folds into an accumulator which
// may emit a completed section.
func Parse(text string) []*Section {
	// Files from some platforms carry a UTF-8 BOM.
	text = strings.TrimPrefix(text, "\ufeff")

	var sections []*Section
	acc := newSection()

	for _, line := range splitLines(text) {
		var emitted *Section
		acc, emitted = consumeLine(acc, line)
		if emitted != nil {
			sections = append(sections, emitted)
		}
	}

	// Flush on EOF, including the zero-contents case.
	if acc.SourcePath != "" {
		sections = append(sections, acc)
	}

	return sections
}

// consumeLine is one fold step: it returns the updated accumulator and the
// section the line completed, if any.
func consumeLine(acc *Section, line string) (*Section, *Section) {
	target := strings.TrimSpace(line)

	if target == "" {
		// Keep blank lines as pause placeholders, but only inside a section
		// that already has content. Leading blanks produce nothing.
		if acc.SourcePath != "" && len(acc.Contents) > 0 {
			acc.Contents = append(acc.Contents, NewContent(nil, ""))
		}
		return acc, nil
	}

	if strings.HasPrefix(target, "[") && strings.HasSuffix(target, "]") {
		var emitted *Section
		if acc.SourcePath != "" {
			// A header with zero body lines is still a section.
			emitted = acc
			acc = newSection()
		}
		acc.SourcePath = normalizeSourcePath(target[1 : len(target)-1])
		return acc, emitted
	}

	if strings.HasPrefix(target, "#") {
		// Last title wins within one section.
		acc.Title = strings.TrimSpace(strings.TrimLeft(target, "#"))
		return acc, nil
	}

	// Body lines before any header have nowhere to go and are dropped.
	if acc.SourcePath == "" {
		return acc, nil
	}

	voiceID, text := splitVoiceDirective(target)
	acc.Contents = append(acc.Contents, NewContent(voiceID, text))
	return acc, nil
}

// splitVoiceDirective handles the "@<number> text" per-line voice override.
// An unparsable numeral still consumes the token but yields no override.
func splitVoiceDirective(target string) (*int, string) {
	if !strings.HasPrefix(target, "@") {
		return nil, target
	}

	token, rest, found := strings.Cut(target, " ")
	if !found {
		rest = ""
	}

	if id, err := strconv.Atoi(strings.TrimPrefix(token, "@")); err == nil {
		return &id, rest
	}
	return nil, rest
}

func normalizeSourcePath(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return filepath.Clean(trimmed)
}

// splitLines handles both \n and \r\n endings and ignores a trailing newline.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
