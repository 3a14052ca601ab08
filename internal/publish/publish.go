// Package publish hands transcripts to Kafka topics for downstream consumers.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event kinds.
const (
	KindPartial = "partial"
	KindFinal   = "final"
)

// Event is one published transcript. Partial events carry every cycle's text;
// a final event carries the last text of a window.
type Event struct {
	RunID     string    `json:"run_id"`
	Kind      string    `json:"kind"`
	Window    uint64    `json:"window"`
	ChunkSeq  uint64    `json:"chunk_seq"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Config holds Kafka publisher settings.
type Config struct {
	Enabled      bool
	Brokers      []string
	TopicPartial string
	TopicFinal   string
	Principal    string
}

// Observer is notified of every publish outcome.
type Observer func(kind string, err error)

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes events to the partial and final topics. When disabled it
// only logs.
type Publisher struct {
	partial   messageWriter
	final     messageWriter
	principal string
	enabled   bool
	logger    *slog.Logger
	observe   Observer
}

// New builds a publisher. Writers are asynchronous so a slow broker never stalls
// transcription; delivery results reach observe from the writer's goroutine.
func New(cfg Config, logger *slog.Logger, observe Observer) *Publisher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if observe == nil {
		observe = func(string, error) {}
	}

	p := &Publisher{
		principal: cfg.Principal,
		logger:    logger,
		observe:   observe,
	}
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		logger.Info("transcript publishing disabled, using log-only mode")
		return p
	}

	transport := &kafka.Transport{
		Dial: (&kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}).DialFunc,
	}
	p.partial = p.newWriter(cfg.Brokers, cfg.TopicPartial, KindPartial, transport)
	p.final = p.newWriter(cfg.Brokers, cfg.TopicFinal, KindFinal, transport)
	p.enabled = true

	logger.Info("transcript publisher initialized",
		"brokers", cfg.Brokers,
		"topic_partial", cfg.TopicPartial,
		"topic_final", cfg.TopicFinal,
	)
	return p
}

func (p *Publisher) newWriter(brokers []string, topic string, kind string, transport *kafka.Transport) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Transport:    transport,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				p.logger.Error("kafka delivery failed", "topic", topic, "messages", len(messages), "error", err.Error())
			}
			for range messages {
				p.observe(kind, err)
			}
		},
	}
}

// Enabled reports whether events leave the process.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// PublishPartial publishes one cycle's transcript.
func (p *Publisher) PublishPartial(ctx context.Context, event Event) error {
	event.Kind = KindPartial
	return p.publish(ctx, p.partial, event)
}

// PublishFinal publishes the settled transcript of a window.
func (p *Publisher) PublishFinal(ctx context.Context, event Event) error {
	event.Kind = KindFinal
	return p.publish(ctx, p.final, event)
}

func (p *Publisher) publish(ctx context.Context, writer messageWriter, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Kind, err)
	}

	p.logger.Debug("publishing transcript event",
		"kind", event.Kind,
		"run_id", event.RunID,
		"window", event.Window,
		"chunk_seq", event.ChunkSeq,
	)

	if !p.enabled || writer == nil {
		p.observe(event.Kind, nil)
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(event.RunID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(event.Kind)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}
	if err := writer.WriteMessages(ctx, msg); err != nil {
		p.observe(event.Kind, err)
		return fmt.Errorf("write %s event: %w", event.Kind, err)
	}
	return nil
}

// Close flushes pending messages and closes both writers.
func (p *Publisher) Close() error {
	var errs []error
	for _, writer := range []messageWriter{p.partial, p.final} {
		if writer == nil {
			continue
		}
		if err := writer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Probe dials each broker once and reports the first failure.
func Probe(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	for _, broker := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			return fmt.Errorf("dial kafka broker %q: %w", broker, err)
		}
		_ = conn.Close()
	}
	return nil
}
