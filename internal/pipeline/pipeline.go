// Package pipeline orchestrates the script-to-video run: synthesize every
// narration line per section, render each line as a clip, concatenate clips
// per section, then concatenate section videos into the final artifact.
//
// Per section the state machine is parsed -> voices_ready -> video_ready.
// The first stage error halts the whole run; already-persisted artifacts stay
// on disk.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"slidecast/internal/script"
	"slidecast/internal/storage"
	"slidecast/internal/types"
	"slidecast/log"
	"slidecast/pkg/errors"
)

type Config struct {
	// VoiceDir receives one wav per narration line, named by content key.
	VoiceDir string
	// SynthConcurrency bounds parallel synthesis calls within one section.
	SynthConcurrency int
}

type Pipeline struct {
	synthesizer types.Synthesizer
	renderer    types.ClipRenderer
	concat      types.Concatenator
	config      Config
}

func New(synthesizer types.Synthesizer, renderer types.ClipRenderer, concat types.Concatenator, cfg Config) *Pipeline {
	if cfg.SynthConcurrency <= 0 {
		cfg.SynthConcurrency = 3
	}
	return &Pipeline{
		synthesizer: synthesizer,
		renderer:    renderer,
		concat:      concat,
		config:      cfg,
	}
}

// SynthesizeSection produces audio for every content line of the section and
// fills Section.Voices. Synthesis calls within the section run concurrently
// under a bound; the first failure aborts and is returned.
func (p *Pipeline) SynthesizeSection(ctx context.Context, sec *script.Section) error {
	if len(sec.Contents) == 0 {
		return errors.WrapWithDetail(errors.CodeEmptyContent, "section has no content to synthesize", sec.SourcePath, nil)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.SynthConcurrency)

	// Results land in disjoint keys, but the map itself needs a guard.
	var mu sync.Mutex

	for _, content := range sec.Contents {
		content := content
		g.Go(func() error {
			// A failure elsewhere in the section cancels everything still
			// queued behind the concurrency limit.
			if err := ctx.Err(); err != nil {
				return err
			}

			outputPath := filepath.Join(p.config.VoiceDir, content.Key+".wav")
			result, err := p.synthesizer.Synthesize(ctx, content.Text, content.VoiceID, outputPath)
			if err != nil {
				return errors.WrapWithDetail(errors.CodeSynthesis, "content synthesis failed",
					fmt.Sprintf("section %s, content %s", sec.SourcePath, content.Key), err)
			}

			mu.Lock()
			sec.Voices[content.Key] = result
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.GetLogger().Info("section voices ready",
		zap.String("source", sec.SourcePath),
		zap.Int("contents", len(sec.Contents)))
	return nil
}

// RenderSection renders one clip per content line in document order and
// concatenates them into Section.RenderedVideo. A content line whose audio
// is missing from Voices is skipped, not fatal; a render or concat failure
// aborts the section.
func (p *Pipeline) RenderSection(ctx context.Context, sec *script.Section) error {
	clipPaths := make([]string, 0, len(sec.Contents))

	for _, content := range sec.Contents {
		audio, ok := sec.Voices[content.Key]
		if !ok {
			log.GetLogger().Warn("voice data not found, skipping content",
				zap.String("source", sec.SourcePath),
				zap.String("content_key", content.Key))
			continue
		}

		clipPath, err := p.renderer.RenderClip(ctx, content.Key, sec.SourcePath, audio, content.Text)
		if err != nil {
			return errors.WrapWithDetail(errors.CodeRender, "content clip render failed",
				fmt.Sprintf("section %s, content %s", sec.SourcePath, content.Key), err)
		}
		clipPaths = append(clipPaths, clipPath)
	}

	sectionVideo, err := p.concat.Concat(ctx, clipPaths)
	if err != nil {
		return errors.WrapWithDetail(errors.CodeConcat, "section concat failed", sec.SourcePath, err)
	}

	sec.RenderedVideo = sectionVideo
	log.GetLogger().Info("section video ready",
		zap.String("source", sec.SourcePath),
		zap.String("video", sectionVideo))
	return nil
}

// Run drives all sections in document order, stopping the entire run on the
// first stage failure, then concatenates every rendered section video into
// the final output. Stage transitions are recorded in the run ledger; ledger
// write failures never affect the run itself.
func (p *Pipeline) Run(ctx context.Context, scriptPath string, sections []*script.Section) (string, error) {
	runId := uuid.NewString()
	runRecord := &storage.RunRecord{
		RunId:      runId,
		ScriptPath: scriptPath,
		Status:     storage.RunStatusRunning,
	}
	_ = storage.SaveRun(runRecord)

	for i, sec := range sections {
		sectionRecord := &storage.SectionRecord{
			RunId:        runId,
			SectionIndex: i,
			SourcePath:   sec.SourcePath,
			Title:        sec.Title,
			ContentCount: len(sec.Contents),
			Stage:        storage.SectionStageParsed,
		}
		_ = storage.SaveSection(sectionRecord)

		if err := p.SynthesizeSection(ctx, sec); err != nil {
			p.markFailed(runRecord, sectionRecord, err)
			return "", err
		}
		sectionRecord.Stage = storage.SectionStageVoicesReady
		_ = storage.SaveSection(sectionRecord)

		if err := p.RenderSection(ctx, sec); err != nil {
			p.markFailed(runRecord, sectionRecord, err)
			return "", err
		}
		sectionRecord.Stage = storage.SectionStageVideoReady
		sectionRecord.RenderedVideo = sec.RenderedVideo
		_ = storage.SaveSection(sectionRecord)
	}

	renderedVideos := lo.FilterMap(sections, func(sec *script.Section, _ int) (string, bool) {
		return sec.RenderedVideo, sec.RenderedVideo != ""
	})

	outputPath, err := p.concat.Concat(ctx, renderedVideos)
	if err != nil {
		finalErr := errors.Wrap(errors.CodeConcat, "final concat failed", err)
		p.markFailed(runRecord, nil, finalErr)
		return "", finalErr
	}

	runRecord.Status = storage.RunStatusSucceeded
	runRecord.OutputPath = outputPath
	_ = storage.SaveRun(runRecord)

	log.GetLogger().Info("run complete",
		zap.String("run_id", runId),
		zap.Int("sections", len(sections)),
		zap.String("output", outputPath))
	return outputPath, nil
}

func (p *Pipeline) markFailed(run *storage.RunRecord, section *storage.SectionRecord, cause error) {
	if section != nil {
		section.Stage = storage.SectionStageFailed
		section.FailReason = cause.Error()
		_ = storage.SaveSection(section)
	}
	run.Status = storage.RunStatusFailed
	run.FailReason = cause.Error()
	_ = storage.SaveRun(run)
}
