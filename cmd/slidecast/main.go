package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"slidecast/config"
	"slidecast/internal/pipeline"
	"slidecast/internal/script"
	"slidecast/internal/storage"
	"slidecast/log"
	"slidecast/pkg/executor"
	"slidecast/pkg/ffmpeg"
	"slidecast/pkg/voicevox"
)

func main() {
	log.InitLogger()
	defer log.GetLogger().Sync()

	if err := config.LoadConfig(); err != nil {
		log.GetLogger().Error("failed to load configuration", zap.Error(err))
		os.Exit(1)
	}
	if err := config.CheckConfig(); err != nil {
		log.GetLogger().Error("configuration incomplete", zap.Error(err))
		os.Exit(1)
	}

	voiceDir := config.ResolveDir(config.Conf.Output.VoiceDir)
	videoDir := config.ResolveDir(config.Conf.Output.VideoDir)

	storage.InitDB(videoDir)
	if count, err := storage.MarkStaleRuns(); err != nil {
		log.GetLogger().Warn("failed to mark stale runs", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("marked stale runs as failed", zap.Int64("count", count))
	}

	scriptPath := config.Conf.App.ResourceFilePath
	sections, err := script.ParseFile(scriptPath)
	if err != nil {
		log.GetLogger().Error("failed to parse script", zap.String("path", scriptPath), zap.Error(err))
		os.Exit(1)
	}
	log.GetLogger().Info("script parsed",
		zap.String("path", scriptPath),
		zap.Int("sections", len(sections)))

	exec := executor.New()
	synthesizer := voicevox.NewClient(config.Conf.Voicevox.ServerURL, config.Conf.Voicevox.DefaultVoiceID)
	style := ffmpeg.DefaultStyle(config.ResolveDir(config.Conf.App.FontDir))
	renderer := ffmpeg.NewRenderer(exec, config.Conf.App.FfmpegPath, videoDir, config.Conf.App.VideoCodec, style)
	concatenator := ffmpeg.NewConcatenator(exec, config.Conf.App.FfmpegPath, videoDir)

	p := pipeline.New(synthesizer, renderer, concatenator, pipeline.Config{
		VoiceDir:         voiceDir,
		SynthConcurrency: config.Conf.App.SynthConcurrency,
	})

	outputPath, err := p.Run(context.Background(), scriptPath, sections)
	if err != nil {
		log.GetLogger().Error("pipeline run failed", zap.Error(err))
		os.Exit(1)
	}

	log.GetLogger().Info("success", zap.String("output", outputPath))
}
