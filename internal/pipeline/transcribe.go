package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rbright/scribe/internal/audio"
	"github.com/rbright/scribe/internal/display"
	"github.com/rbright/scribe/internal/engine"
	"github.com/rbright/scribe/internal/metrics"
	"github.com/rbright/scribe/internal/pcm"
	"github.com/rbright/scribe/internal/publish"
	"github.com/rbright/scribe/internal/queue"
	"github.com/rbright/scribe/internal/stats"
	"github.com/rbright/scribe/internal/transcript"
	"github.com/rbright/scribe/internal/window"
)

// TranscriptionStage owns the context window. Each cycle transcribes the whole
// window again with the newest chunk appended.
type TranscriptionStage struct {
	queue     *queue.Queue[audio.Chunk]
	window    *window.Buffer
	engine    engine.Engine
	console   *display.Console
	stats     *stats.Collector
	metrics   *metrics.Metrics
	publisher Publisher
	dumper    WindowDumper
	logger    *slog.Logger
	now       func() time.Time

	runID         string
	divisor       float64
	engineTimeout time.Duration
	transcript    transcript.Options

	windowSeq   uint64
	lastText    string
	lastSeq     uint64
	warnedRange bool
	windowLen   atomic.Int64
}

// Run processes cycles until the queue is closed and drained or ctx is done.
// The current cycle always completes; ctx is only checked between cycles.
func (s *TranscriptionStage) Run(ctx context.Context) error {
	defer s.finishWindow(context.WithoutCancel(ctx))

	for {
		if ctx.Err() != nil {
			return nil
		}

		if s.window.Full() {
			s.resetWindow(ctx)
		}

		chunk, err := s.queue.Get(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("dequeue chunk: %w", err)
		}

		if err := s.cycle(ctx, chunk); err != nil {
			return err
		}
	}
}

func (s *TranscriptionStage) cycle(ctx context.Context, chunk audio.Chunk) error {
	start := s.now()
	defer s.queue.Done()
	s.metrics.QueueDepth.Set(float64(s.queue.Len()))

	if err := s.window.Append(chunk); err != nil {
		return fmt.Errorf("append chunk %d: %w", chunk.Seq, err)
	}
	s.windowLen.Store(int64(s.window.Len()))
	s.metrics.WindowLength.Set(float64(s.window.Len()))

	samples, outOfRange := pcm.Normalize(s.window.Concat(), s.divisor)
	if outOfRange > 0 {
		s.metrics.OutOfRange.Add(float64(outOfRange))
		if !s.warnedRange {
			s.warnedRange = true
			s.logger.Warn("normalized samples exceed engine input range [-1, 1]; check normalize.divisor",
				"divisor", s.divisor,
				"out_of_range", outOfRange,
				"samples", len(samples),
			)
		}
	}

	segments, err := s.transcribe(ctx, samples)
	transcribed := s.now()
	if err != nil {
		s.metrics.EngineErrors.Inc()
		s.logger.Error("transcription failed; skipping cycle",
			"chunk_seq", chunk.Seq,
			"window_len", s.window.Len(),
			"error", err.Error(),
		)
		return nil
	}

	text := transcript.Assemble(engine.Texts(segments), s.transcript)
	postprocessed := s.now()

	if err := s.console.Update(text); err != nil {
		s.logger.Warn("console write failed", "error", err.Error())
	}

	sample := stats.Sample{
		Overall:        postprocessed.Sub(start),
		Transcription:  transcribed.Sub(start),
		Postprocessing: postprocessed.Sub(transcribed),
	}
	s.stats.Record(sample)
	s.metrics.ObserveCycle(sample.Overall, sample.Transcription, sample.Postprocessing)
	first, last, _ := s.window.Span()
	s.logger.Debug("cycle complete",
		"chunk_seq", chunk.Seq,
		"window", s.windowSeq,
		"window_len", s.window.Len(),
		"window_first_seq", first,
		"window_last_seq", last,
		"overall_ms", sample.Overall.Milliseconds(),
		"transcription_ms", sample.Transcription.Milliseconds(),
	)

	s.lastText = text
	s.lastSeq = chunk.Seq
	s.publish(ctx, publish.KindPartial)
	return nil
}

// transcribe shields the engine call from shutdown cancellation so an in-flight
// call completes. engineTimeout still bounds it when set.
func (s *TranscriptionStage) transcribe(ctx context.Context, samples []float32) ([]engine.Segment, error) {
	callCtx := context.WithoutCancel(ctx)
	if s.engineTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, s.engineTimeout)
		defer cancel()
	}
	return s.engine.Transcribe(callCtx, samples)
}

// resetWindow settles the full window and starts the next one on a new line.
func (s *TranscriptionStage) resetWindow(ctx context.Context) {
	s.finishWindow(ctx)
	s.window.Clear()
	s.windowLen.Store(0)
	s.metrics.WindowLength.Set(0)
	s.metrics.WindowResets.Inc()
	s.windowSeq++
	if err := s.console.Separator(); err != nil {
		s.logger.Warn("console write failed", "error", err.Error())
	}
}

// finishWindow publishes the window's last transcript and dumps its audio.
func (s *TranscriptionStage) finishWindow(ctx context.Context) {
	if s.window.Len() == 0 {
		return
	}
	if s.lastText != "" {
		s.publish(ctx, publish.KindFinal)
	}
	if s.dumper != nil {
		s.dumper.DumpWindow(s.windowSeq, s.window.Concat())
	}
	s.lastText = ""
}

func (s *TranscriptionStage) publish(ctx context.Context, kind string) {
	if s.publisher == nil {
		return
	}
	event := publish.Event{
		RunID:     s.runID,
		Window:    s.windowSeq,
		ChunkSeq:  s.lastSeq,
		Text:      s.lastText,
		Timestamp: s.now(),
	}

	var err error
	if kind == publish.KindFinal {
		err = s.publisher.PublishFinal(ctx, event)
	} else {
		err = s.publisher.PublishPartial(ctx, event)
	}
	if err != nil {
		s.logger.Warn("transcript publish failed", "kind", kind, "error", err.Error())
	}
}

// WindowLen reports the current window length; safe from other goroutines.
func (s *TranscriptionStage) WindowLen() int {
	return int(s.windowLen.Load())
}
