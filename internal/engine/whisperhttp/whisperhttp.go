// Package whisperhttp transcribes through a whisper.cpp server's /inference endpoint.
package whisperhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rbright/scribe/internal/audio"
	"github.com/rbright/scribe/internal/engine"
	"github.com/rbright/scribe/internal/pcm"
)

// Config controls the whisper-server client.
type Config struct {
	ServerURL string
	Model     string
	Language  string
	// HTTPClient defaults to a client without a timeout; the caller's context
	// bounds each request.
	HTTPClient *http.Client
}

// Engine posts each window as a WAV upload.
type Engine struct {
	serverURL string
	model     string
	language  string
	client    *http.Client
}

var _ engine.Engine = (*Engine)(nil)

// New validates cfg. No connection is made until the first request.
func New(cfg Config) (*Engine, error) {
	serverURL := strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")
	if serverURL == "" {
		return nil, errors.New("whisper server url is empty")
	}
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return nil, fmt.Errorf("whisper server url %q must start with http:// or https://", serverURL)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Engine{
		serverURL: serverURL,
		model:     strings.TrimSpace(cfg.Model),
		language:  strings.TrimSpace(cfg.Language),
		client:    client,
	}, nil
}

type inferenceResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

// Transcribe re-quantizes samples to 16-bit PCM and posts them as multipart WAV.
func (e *Engine) Transcribe(ctx context.Context, samples []float32) ([]engine.Segment, error) {
	wav := pcm.EncodeWAV(pcm.Bytes(pcm.Quantize(samples)), audio.SampleRate, audio.Channels)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "window.wav")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return nil, fmt.Errorf("write wav data: %w", err)
	}
	fields := [][2]string{
		{"response_format", "verbose_json"},
		{"language", e.language},
		{"model", e.model},
	}
	for _, field := range fields {
		if field[1] == "" {
			continue
		}
		if err := mw.WriteField(field[0], field[1]); err != nil {
			return nil, fmt.Errorf("write %s field: %w", field[0], err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.serverURL+"/inference", &body)
	if err != nil {
		return nil, fmt.Errorf("create inference request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper inference request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read inference response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper server returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var result inferenceResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse inference response: %w", err)
	}

	if len(result.Segments) == 0 {
		if strings.TrimSpace(result.Text) == "" {
			return nil, nil
		}
		return []engine.Segment{{Text: result.Text}}, nil
	}
	segments := make([]engine.Segment, 0, len(result.Segments))
	for _, s := range result.Segments {
		segments = append(segments, engine.Segment{
			Text:  s.Text,
			Start: seconds(s.Start),
			End:   seconds(s.End),
		})
	}
	return segments, nil
}

// Probe checks that the server answers HTTP at all.
func (e *Engine) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.serverURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create probe request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("whisper server unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("whisper server returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Close drops idle keep-alive connections.
func (e *Engine) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
