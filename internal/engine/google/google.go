// Package google transcribes windows with Google Cloud Speech-to-Text Recognize.
package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/rbright/scribe/internal/audio"
	"github.com/rbright/scribe/internal/engine"
	"github.com/rbright/scribe/internal/pcm"
)

// CredentialsEnv names the variable the Google client libraries read for a
// service account key.
const CredentialsEnv = "GOOGLE_APPLICATION_CREDENTIALS"

// Config controls the Speech client.
type Config struct {
	// Endpoint overrides the public API host (host:port).
	Endpoint string
	// Insecure dials Endpoint in plaintext without credentials, for emulators.
	Insecure    bool
	Language    string
	Model       string
	DialTimeout time.Duration
	// DebugResponseSinkJSON receives every response as one protojson line.
	DebugResponseSinkJSON io.Writer
}

// Engine sends each window as one synchronous LINEAR16 Recognize call.
type Engine struct {
	client   *speech.Client
	conn     *grpc.ClientConn
	language string
	model    string

	sinkMu sync.Mutex
	sink   io.Writer
}

var _ engine.Engine = (*Engine)(nil)

// New creates the Speech client. With Insecure set the endpoint connection is
// established and awaited here so a missing emulator fails at startup.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = "en-US"
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)

	e := &Engine{
		language: language,
		model:    strings.TrimSpace(cfg.Model),
		sink:     cfg.DebugResponseSinkJSON,
	}

	var opts []option.ClientOption
	switch {
	case cfg.Insecure:
		if endpoint == "" {
			return nil, errors.New("google insecure mode requires an endpoint")
		}
		conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("dial speech grpc %q: %w", endpoint, err)
		}
		readyCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		conn.Connect()
		if err := waitForReady(readyCtx, conn); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("wait for speech grpc readiness: %w", err)
		}
		e.conn = conn
		opts = append(opts, option.WithGRPCConn(conn))
	case endpoint != "":
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		if e.conn != nil {
			_ = e.conn.Close()
		}
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	e.client = client
	return e, nil
}

// Transcribe re-quantizes samples to LINEAR16 and returns the top alternative of
// each result.
func (e *Engine) Transcribe(ctx context.Context, samples []float32) ([]engine.Segment, error) {
	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   audio.SampleRate,
			AudioChannelCount: audio.Channels,
			LanguageCode:      e.language,
			Model:             e.model,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: pcm.Bytes(pcm.Quantize(samples)),
			},
		},
	}

	resp, err := e.client.Recognize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("speech recognize: %w", err)
	}
	e.dump(resp)

	var segments []engine.Segment
	var previousEnd time.Duration
	for _, result := range resp.GetResults() {
		alternatives := result.GetAlternatives()
		if len(alternatives) == 0 {
			continue
		}
		text := strings.TrimSpace(alternatives[0].GetTranscript())
		if text == "" {
			continue
		}
		end := result.GetResultEndTime().AsDuration()
		segments = append(segments, engine.Segment{Text: text, Start: previousEnd, End: end})
		previousEnd = end
	}
	return segments, nil
}

func (e *Engine) dump(resp *speechpb.RecognizeResponse) {
	if e.sink == nil {
		return
	}
	b, err := protojson.Marshal(resp)
	if err != nil {
		return
	}
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()
	_, _ = e.sink.Write(append(b, '\n'))
}

// Close releases the client and any dialed connection.
func (e *Engine) Close() error {
	var err error
	if e.client != nil {
		err = e.client.Close()
		e.client = nil
	}
	if e.conn != nil {
		// The client may already have closed a connection it was handed.
		_ = e.conn.Close()
		e.conn = nil
	}
	return err
}
