package voicevox

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidecast/log"
	apperrors "slidecast/pkg/errors"
)

func initTestLogger(t *testing.T) {
	t.Helper()
	t.Setenv("SLIDECAST_LOG_DIR", t.TempDir())
	log.InitLogger()
}

func newEngineStub(t *testing.T, audio []byte) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/audio_query", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NotEmpty(t, r.URL.Query().Get("text"))
		require.NotEmpty(t, r.URL.Query().Get("speaker"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accent_phrases":[],"speedScale":1.0}`))
	})
	mux.HandleFunc("/synthesis", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NotEmpty(t, r.URL.Query().Get("speaker"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NotEmpty(t, body)
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(audio)
	})
	mux.HandleFunc("/speakers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"test","styles":[{"id":14}]}]`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSynthesizeWritesAudioAndDerivesDuration(t *testing.T) {
	initTestLogger(t)

	// 96000 bytes at the fixed 48000 bytes/sec rate is exactly two seconds.
	audio := make([]byte, 96000)
	server := newEngineStub(t, audio)

	client := NewClient(server.URL, 14)
	outputPath := filepath.Join(t.TempDir(), "voices", "content-key.wav")

	result, err := client.Synthesize(context.Background(), "hello there", nil, outputPath)
	require.NoError(t, err)

	assert.Equal(t, 14, result.VoiceID)
	assert.Equal(t, outputPath, result.Filepath)
	assert.Equal(t, 2*time.Second, result.Duration)

	written, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Len(t, written, len(audio))
}

func TestSynthesizeUsesVoiceOverride(t *testing.T) {
	initTestLogger(t)

	var querySpeaker string
	mux := http.NewServeMux()
	mux.HandleFunc("/audio_query", func(w http.ResponseWriter, r *http.Request) {
		querySpeaker = r.URL.Query().Get("speaker")
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/synthesis", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 4800))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 14)
	override := 42

	result, err := client.Synthesize(context.Background(), "hello", &override,
		filepath.Join(t.TempDir(), "out.wav"))
	require.NoError(t, err)
	assert.Equal(t, "42", querySpeaker)
	assert.Equal(t, 42, result.VoiceID)
}

func TestSynthesizeWrapsServiceFailure(t *testing.T) {
	initTestLogger(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine exploded", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 14)
	_, err := client.Synthesize(context.Background(), "hello", nil,
		filepath.Join(t.TempDir(), "out.wav"))

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeSynthesis))
}

func TestListSpeakers(t *testing.T) {
	initTestLogger(t)

	server := newEngineStub(t, nil)
	client := NewClient(server.URL, 14)

	body, err := client.ListSpeakers(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(body), `"id":14`)
}
