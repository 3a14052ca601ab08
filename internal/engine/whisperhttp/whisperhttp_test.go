package whisperhttp

import (
	"context"
	"encoding/binary"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rbright/scribe/internal/engine"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesServerURL(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	_, err = New(Config{ServerURL: "127.0.0.1:8080"})
	require.ErrorContains(t, err, "http://")

	e, err := New(Config{ServerURL: " http://localhost:8080/ "})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", e.serverURL)
}

func TestTranscribePostsWAVAndParsesSegments(t *testing.T) {
	var gotLanguage, gotFormat string
	var gotPCM []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inference", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotLanguage = r.FormValue("language")
		gotFormat = r.FormValue("response_format")

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "RIFF", string(data[:4]))
		gotPCM = data[44:]

		_, _ = w.Write([]byte(`{"text":" hello world","segments":[{"text":" hello","start":0,"end":0.5},{"text":" world","start":0.5,"end":1.25}]}`))
	}))
	defer server.Close()

	e, err := New(Config{ServerURL: server.URL, Language: "en"})
	require.NoError(t, err)
	defer e.Close()

	segments, err := e.Transcribe(context.Background(), []float32{0.5, -1, 3})
	require.NoError(t, err)
	require.Equal(t, []engine.Segment{
		{Text: " hello", End: 500 * time.Millisecond},
		{Text: " world", Start: 500 * time.Millisecond, End: 1250 * time.Millisecond},
	}, segments)
	require.Equal(t, "en", gotLanguage)
	require.Equal(t, "verbose_json", gotFormat)

	require.Len(t, gotPCM, 6)
	require.Equal(t, int16(16384), int16(binary.LittleEndian.Uint16(gotPCM[0:])))
	require.Equal(t, int16(-32768), int16(binary.LittleEndian.Uint16(gotPCM[2:])))
	require.Equal(t, int16(32767), int16(binary.LittleEndian.Uint16(gotPCM[4:])))
}

func TestTranscribeFallsBackToPlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"text":"just text"}`))
	}))
	defer server.Close()

	e, err := New(Config{ServerURL: server.URL})
	require.NoError(t, err)

	segments, err := e.Transcribe(context.Background(), make([]float32, 16))
	require.NoError(t, err)
	require.Equal(t, []engine.Segment{{Text: "just text"}}, segments)
}

func TestTranscribeEmptyTextYieldsNoSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"text":"  "}`))
	}))
	defer server.Close()

	e, err := New(Config{ServerURL: server.URL})
	require.NoError(t, err)

	segments, err := e.Transcribe(context.Background(), make([]float32, 16))
	require.NoError(t, err)
	require.Empty(t, segments)
}

func TestTranscribeReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	e, err := New(Config{ServerURL: server.URL})
	require.NoError(t, err)

	_, err = e.Transcribe(context.Background(), make([]float32, 16))
	require.ErrorContains(t, err, "HTTP 503")
	require.ErrorContains(t, err, "model not loaded")
	require.ErrorContains(t, e.Probe(context.Background()), "HTTP 503")
}

func TestTranscribeRejectsMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	e, err := New(Config{ServerURL: server.URL})
	require.NoError(t, err)

	_, err = e.Transcribe(context.Background(), make([]float32, 16))
	require.ErrorContains(t, err, "parse inference response")
}

func TestTranscribeHonorsContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	e, err := New(Config{ServerURL: server.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = e.Transcribe(ctx, make([]float32, 16))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	e, err := New(Config{ServerURL: server.URL})
	require.NoError(t, err)
	require.NoError(t, e.Probe(context.Background()))

	server.Close()
	require.ErrorContains(t, e.Probe(context.Background()), "unreachable")
}
