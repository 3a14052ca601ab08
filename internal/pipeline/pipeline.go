// Package pipeline runs the capture and transcription stages over a shared
// unbounded work queue.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/scribe/internal/audio"
	"github.com/rbright/scribe/internal/display"
	"github.com/rbright/scribe/internal/engine"
	"github.com/rbright/scribe/internal/metrics"
	"github.com/rbright/scribe/internal/publish"
	"github.com/rbright/scribe/internal/queue"
	"github.com/rbright/scribe/internal/stats"
	"github.com/rbright/scribe/internal/transcript"
	"github.com/rbright/scribe/internal/window"
)

// Publisher receives transcript events. *publish.Publisher satisfies it.
type Publisher interface {
	PublishPartial(ctx context.Context, event publish.Event) error
	PublishFinal(ctx context.Context, event publish.Event) error
}

// WindowDumper receives the audio of every completed window.
type WindowDumper interface {
	DumpWindow(windowSeq uint64, pcm []byte)
}

// Config holds the tunables of one run.
type Config struct {
	RunID         string
	WindowChunks  int
	Divisor       float64
	EngineTimeout time.Duration
	Transcript    transcript.Options
}

// Deps are the collaborators a pipeline drives. Source, Engine and Console are
// required; Stats and Metrics are created when nil.
type Deps struct {
	Source    audio.Source
	Engine    engine.Engine
	Console   *display.Console
	Stats     *stats.Collector
	Metrics   *metrics.Metrics
	Publisher Publisher
	Dumper    WindowDumper
	Logger    *slog.Logger
	Clock     func() time.Time
}

// Status is a point-in-time view of a running pipeline. Pending counts chunks
// queued plus the one in flight.
type Status struct {
	Processed      int
	QueueDepth     int
	Pending        int
	WindowLength   int
	WindowCapacity int
}

// Pipeline wires CaptureStage -> Queue -> TranscriptionStage.
type Pipeline struct {
	queue      *queue.Queue[audio.Chunk]
	stats      *stats.Collector
	capture    *CaptureStage
	transcribe *TranscriptionStage
	window     time.Duration
}

// New validates cfg and builds both stages.
func New(cfg Config, deps Deps) (*Pipeline, error) {
	if deps.Source == nil || deps.Engine == nil || deps.Console == nil {
		return nil, fmt.Errorf("pipeline requires a source, an engine and a console")
	}
	if cfg.Divisor <= 0 {
		return nil, fmt.Errorf("normalization divisor must be > 0 (got %v)", cfg.Divisor)
	}
	buf, err := window.New(cfg.WindowChunks)
	if err != nil {
		return nil, err
	}

	if deps.Stats == nil {
		deps.Stats = stats.NewCollector()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	q := queue.New[audio.Chunk]()
	return &Pipeline{
		queue:  q,
		stats:  deps.Stats,
		window: time.Duration(buf.Cap()) * audio.FrameDuration,
		capture: &CaptureStage{
			source:  deps.Source,
			queue:   q,
			metrics: deps.Metrics,
			logger:  deps.Logger,
			now:     deps.Clock,
		},
		transcribe: &TranscriptionStage{
			queue:         q,
			window:        buf,
			engine:        deps.Engine,
			console:       deps.Console,
			stats:         deps.Stats,
			metrics:       deps.Metrics,
			publisher:     deps.Publisher,
			dumper:        deps.Dumper,
			logger:        deps.Logger,
			now:           deps.Clock,
			runID:         cfg.RunID,
			divisor:       cfg.Divisor,
			engineTimeout: cfg.EngineTimeout,
			transcript:    cfg.Transcript,
		},
	}, nil
}

// Run blocks until ctx is done, the source is exhausted and the queue drained,
// or the source fails. A source failure cancels transcription and is returned.
func (p *Pipeline) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer p.queue.Close()
		return p.capture.Run(gctx)
	})
	g.Go(func() error {
		return p.transcribe.Run(gctx)
	})
	return g.Wait()
}

// Status reports progress; safe to call while Run is active.
func (p *Pipeline) Status() Status {
	return Status{
		Processed:      p.stats.Count(),
		QueueDepth:     p.queue.Len(),
		Pending:        p.queue.Unfinished(),
		WindowLength:   p.transcribe.WindowLen(),
		WindowCapacity: p.transcribe.window.Cap(),
	}
}

// Summary summarizes recorded cycles against the configured window duration.
func (p *Pipeline) Summary() stats.Summary {
	return p.stats.Summarize(p.window)
}
