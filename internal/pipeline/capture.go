package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rbright/scribe/internal/audio"
	"github.com/rbright/scribe/internal/metrics"
	"github.com/rbright/scribe/internal/queue"
)

// ErrDevice marks a failed audio source. It ends the run.
var ErrDevice = errors.New("audio device failure")

// CaptureStage reads one frame at a time from the source and enqueues it
// without waiting on the consumer.
type CaptureStage struct {
	source  audio.Source
	queue   *queue.Queue[audio.Chunk]
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// byteCounter is implemented by sources that track raw device throughput.
type byteCounter interface {
	BytesCaptured() int64
}

// Run captures until ctx is done, the source reports io.EOF, or the source
// fails. Only a source failure is returned as an error.
func (c *CaptureStage) Run(ctx context.Context) error {
	var (
		seq      uint64
		captured time.Duration
	)
	for {
		frame, err := c.source.ReadFrame(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				c.logStopped("interrupted", seq, captured)
				return nil
			case errors.Is(err, io.EOF):
				c.logStopped("audio source exhausted", seq, captured)
				return nil
			default:
				c.logStopped("device failed", seq, captured)
				return fmt.Errorf("%w: read %s: %w", ErrDevice, c.source.Name(), err)
			}
		}

		chunk := audio.Chunk{Seq: seq, CapturedAt: c.now(), PCM: frame}
		captured += chunk.Duration()
		if err := c.queue.Put(chunk); err != nil {
			if errors.Is(err, queue.ErrClosed) {
				return nil
			}
			return fmt.Errorf("enqueue chunk %d: %w", seq, err)
		}
		seq++

		c.metrics.ChunksCaptured.Inc()
		c.metrics.QueueDepth.Set(float64(c.queue.Len()))
	}
}

func (c *CaptureStage) logStopped(reason string, chunks uint64, captured time.Duration) {
	attrs := []any{
		"reason", reason,
		"source", c.source.Name(),
		"chunks", chunks,
		"audio_ms", captured.Milliseconds(),
	}
	if counter, ok := c.source.(byteCounter); ok {
		attrs = append(attrs, "device_bytes", counter.BytesCaptured())
	}
	c.logger.Info("capture stopped", attrs...)
}
