// Package voicevox is a client for a VOICEVOX-compatible speech synthesis
// engine. Synthesis is a two-step protocol: build an audio query for the text,
// then render the query to a WAV payload.
package voicevox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"slidecast/internal/script"
	"slidecast/log"
	"slidecast/pkg/errors"
)

// The engine emits WAV at a fixed rate; play time derives from payload size,
// not from text length.
const bytesPerSecond = 48000

type Client struct {
	BaseURL        string
	DefaultVoiceID int

	httpClient *resty.Client
}

func NewClient(baseURL string, defaultVoiceID int) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60 * time.Second)

	return &Client{
		BaseURL:        baseURL,
		DefaultVoiceID: defaultVoiceID,
		httpClient:     httpClient,
	}
}

// Synthesize converts text into a WAV file at outputPath and reports the
// voice used and the audio play time. A nil voiceID falls back to the
// client's default voice.
func (c *Client) Synthesize(ctx context.Context, text string, voiceID *int, outputPath string) (script.AudioResult, error) {
	voice := c.DefaultVoiceID
	if voiceID != nil {
		voice = *voiceID
	}

	query, err := c.createAudioQuery(ctx, text, voice)
	if err != nil {
		return script.AudioResult{}, errors.WrapWithDetail(errors.CodeSynthesis, "create audio query failed", text, err)
	}

	audio, err := c.synthesis(ctx, query, voice)
	if err != nil {
		return script.AudioResult{}, errors.WrapWithDetail(errors.CodeSynthesis, "synthesis failed", text, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return script.AudioResult{}, errors.Wrap(errors.CodeFileWriteError, "create voice output dir failed", err)
	}
	if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
		return script.AudioResult{}, errors.WrapWithDetail(errors.CodeFileWriteError, "write voice file failed", outputPath, err)
	}

	duration := time.Duration(float64(len(audio)) / bytesPerSecond * float64(time.Second))
	log.GetLogger().Debug("voicevox synthesis done",
		zap.Int("voice_id", voice),
		zap.String("output", outputPath),
		zap.Duration("duration", duration))

	return script.AudioResult{
		VoiceID:  voice,
		Filepath: outputPath,
		Duration: duration,
	}, nil
}

func (c *Client) createAudioQuery(ctx context.Context, text string, voiceID int) ([]byte, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"text":    text,
			"speaker": strconv.Itoa(voiceID),
		}).
		Post("/audio_query")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("audio_query returned %s: %s", resp.Status(), resp.String())
	}
	return resp.Body(), nil
}

func (c *Client) synthesis(ctx context.Context, query []byte, voiceID int) ([]byte, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("speaker", strconv.Itoa(voiceID)).
		SetHeader("Content-Type", "application/json").
		SetBody(query).
		Post("/synthesis")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("synthesis returned %s: %s", resp.Status(), resp.String())
	}
	return resp.Body(), nil
}

// ListSpeakers fetches the engine's speaker catalog as raw JSON. Handy for
// discovering voice ids when writing a script.
func (c *Client) ListSpeakers(ctx context.Context) ([]byte, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get("/speakers")
	if err != nil {
		return nil, errors.Wrap(errors.CodeSynthesis, "list speakers failed", err)
	}
	if resp.IsError() {
		return nil, errors.WrapWithDetail(errors.CodeSynthesis, "list speakers failed", resp.Status(), nil)
	}
	return resp.Body(), nil
}
