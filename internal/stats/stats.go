// Package stats accumulates per-cycle latency samples and summarizes them.
package stats

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"
)

// Sample holds the three durations measured for one transcription cycle.
type Sample struct {
	Overall        time.Duration
	Transcription  time.Duration
	Postprocessing time.Duration
}

// Dist is the mean and population standard deviation of one series.
type Dist struct {
	Mean time.Duration
	Std  time.Duration
}

// Summary reports every recorded cycle.
type Summary struct {
	Count          int
	Overall        Dist
	Transcription  Dist
	Postprocessing Dist
	// EndToEnd adds the audio a chunk waits for (the window duration) to the
	// mean overall latency.
	EndToEnd time.Duration
}

// Collector stores samples in three parallel series. It is safe for concurrent use.
type Collector struct {
	mu             sync.Mutex
	overall        []time.Duration
	transcription  []time.Duration
	postprocessing []time.Duration
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends one sample.
func (c *Collector) Record(sample Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overall = append(c.overall, sample.Overall)
	c.transcription = append(c.transcription, sample.Transcription)
	c.postprocessing = append(c.postprocessing, sample.Postprocessing)
}

// Count reports recorded samples.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.overall)
}

// Summarize computes the distribution of each series. windowDuration is the
// audio span of a full context window. An empty collector yields zero values.
func (c *Collector) Summarize(windowDuration time.Duration) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	overall := distribution(c.overall)
	return Summary{
		Count:          len(c.overall),
		Overall:        overall,
		Transcription:  distribution(c.transcription),
		Postprocessing: distribution(c.postprocessing),
		EndToEnd:       overall.Mean + windowDuration,
	}
}

func distribution(values []time.Duration) Dist {
	if len(values) == 0 {
		return Dist{}
	}

	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := float64(v) - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(values)))

	return Dist{
		Mean: time.Duration(math.Round(mean)),
		Std:  time.Duration(math.Round(std)),
	}
}

// WriteTo prints the shutdown report.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"Number of processed chunks: %d\n"+
			"Overall time: avg: %.4fs, std: %.4fs\n"+
			"Transcription time: avg: %.4fs, std: %.4fs\n"+
			"Postprocessing time: avg: %.4fs, std: %.4fs\n"+
			"The average latency is %.4fs\n",
		s.Count,
		s.Overall.Mean.Seconds(), s.Overall.Std.Seconds(),
		s.Transcription.Mean.Seconds(), s.Transcription.Std.Seconds(),
		s.Postprocessing.Mean.Seconds(), s.Postprocessing.Std.Seconds(),
		s.EndToEnd.Seconds(),
	)
	return int64(n), err
}
