package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/rbright/scribe/internal/audio"
	"github.com/rbright/scribe/internal/config"
	"github.com/rbright/scribe/internal/display"
	"github.com/rbright/scribe/internal/engine"
	"github.com/rbright/scribe/internal/engine/google"
	"github.com/rbright/scribe/internal/engine/whispercpp"
	"github.com/rbright/scribe/internal/engine/whisperhttp"
	"github.com/rbright/scribe/internal/ipc"
	"github.com/rbright/scribe/internal/metrics"
	"github.com/rbright/scribe/internal/pipeline"
	"github.com/rbright/scribe/internal/publish"
	"github.com/rbright/scribe/internal/session"
	"github.com/rbright/scribe/internal/transcript"
)

// commandRun owns the control socket and runs the pipeline until interrupted.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	var listener net.Listener
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "warning: %v; status and stop are unavailable\n", err)
		logger.Warn("control socket disabled", "error", err.Error())
	} else {
		listener, err = ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			logger.Error("acquire control socket failed", "error", err.Error())
			return 1
		}
		defer func() {
			if err := ipc.Release(listener, socketPath); err != nil {
				logger.Warn("release control socket failed", "error", err.Error())
			}
		}()
	}

	m := metrics.New()
	publisher := publish.New(publish.Config{
		Enabled:      cfg.Publish.Enable,
		Brokers:      cfg.Publish.Brokers,
		TopicPartial: cfg.Publish.TopicPartial,
		TopicFinal:   cfg.Publish.TopicFinal,
		Principal:    cfg.Publish.Principal,
	}, logger, m.ObservePublish)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close publisher failed", "error", err.Error())
		}
	}()

	console := display.NewConsole(r.Stdout, cfg.Transcript.Pad)

	var (
		controller *session.Controller
		closers    []io.Closer
	)
	starter := session.StartFunc(func(ctx context.Context) (session.Runner, error) {
		source, err := openSource(ctx, cfg.Audio, logger, r.Stderr)
		if err != nil {
			return nil, err
		}
		closers = append(closers, source)

		eng, dump, err := openEngine(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		closers = append(closers, eng)
		if dump != nil {
			closers = append(closers, dump)
		}

		var dumper pipeline.WindowDumper
		if cfg.Debug.EnableAudioDump {
			dumper = pipeline.WAVDumper{Logger: logger}
		}

		p, err := pipeline.New(pipeline.Config{
			RunID:         controller.RunID(),
			WindowChunks:  cfg.Window.Chunks,
			Divisor:       cfg.Normalize.Divisor,
			EngineTimeout: time.Duration(cfg.Engine.TimeoutMS) * time.Millisecond,
			Transcript:    transcript.Options{StripNoise: cfg.Transcript.StripNoise},
		}, pipeline.Deps{
			Source:    source,
			Engine:    eng,
			Console:   console,
			Metrics:   m,
			Publisher: publisher,
			Dumper:    dumper,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}

		logger.Info("run start",
			"run_id", controller.RunID(),
			"source", source.Name(),
			"engine", cfg.Engine.Backend,
			"window_chunks", cfg.Window.Chunks,
		)
		if err := console.Banner(source.Name()); err != nil {
			return nil, fmt.Errorf("write banner: %w", err)
		}
		return p, nil
	})
	controller = session.NewController(logger, starter)

	if cfg.Metrics.Enable {
		server, err := metrics.NewServer(cfg.Metrics.Addr, m, controller.Ready, logger)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()
	serverErrCh := make(chan error, 1)
	if listener != nil {
		go func() {
			serverErrCh <- ipc.Serve(serverCtx, listener, controller)
		}()
	} else {
		serverErrCh <- nil
	}

	result := controller.Run(ctx)
	if err := closeAll(closers); err != nil {
		logger.Warn("release runtime resources failed", "error", err.Error())
	}

	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		logger.Error("ipc server failed", "error", serverErr.Error())
	}

	_ = console.Finish()
	logRunResult(logger, result)

	if result.Started {
		fmt.Fprintln(r.Stdout, "Exiting...")
		_, _ = result.Summary.WriteTo(r.Stdout)
	}
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	}
	return 0
}

// openSource opens the configured capture backend.
func openSource(ctx context.Context, cfg config.AudioConfig, logger *slog.Logger, stderr io.Writer) (audio.Source, error) {
	switch cfg.Backend {
	case config.AudioPulse:
		selection, err := audio.SelectDevice(ctx, cfg.Input, cfg.Fallback)
		if err != nil {
			return nil, fmt.Errorf("select audio device: %w", err)
		}
		if selection.Warning != "" {
			fmt.Fprintf(stderr, "warning: %s\n", selection.Warning)
			logger.Warn("audio device fallback", "warning", selection.Warning)
		}
		src, err := audio.OpenPulse(selection.Device)
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.AudioPortAudio:
		src, err := audio.OpenPortAudio()
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.AudioMalgo:
		src, err := audio.OpenMalgo()
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.AudioWAV:
		src, err := audio.OpenWAV(cfg.WAVPath, cfg.Realtime)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unsupported audio backend %q", cfg.Backend)
	}
}

// openEngine loads the configured engine once. The returned closer, when set,
// owns the engine debug dump file.
func openEngine(ctx context.Context, cfg config.Config, logger *slog.Logger) (engine.Engine, io.Closer, error) {
	switch cfg.Engine.Backend {
	case config.EngineWhisperHTTP:
		eng, err := whisperhttp.New(whisperhttp.Config{
			ServerURL: cfg.Engine.ServerURL,
			Model:     cfg.Engine.Model,
			Language:  cfg.Engine.Language,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("whisper-http engine: %w", err)
		}
		return eng, nil, nil
	case config.EngineWhisperCPP:
		eng, err := whispercpp.New(whispercpp.Config{
			ModelPath: cfg.Engine.ModelPath,
			Language:  cfg.Engine.Language,
			Logger:    logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("whisper-cpp engine: %w", err)
		}
		return eng, nil, nil
	case config.EngineGoogle:
		var dump *os.File
		if cfg.Debug.EnableEngineDump {
			f, err := pipeline.CreateDebugFile("google-response", "jsonl")
			if err != nil {
				logger.Warn("unable to create engine debug dump", "error", err.Error())
			} else {
				dump = f
				logger.Info("engine debug dump enabled", "path", f.Name())
			}
		}

		gcfg := google.Config{
			Endpoint: cfg.Engine.Google.Endpoint,
			Insecure: cfg.Engine.Google.Insecure,
			Language: cfg.Engine.Language,
			Model:    cfg.Engine.Model,
		}
		if dump != nil {
			gcfg.DebugResponseSinkJSON = dump
		}
		eng, err := google.New(ctx, gcfg)
		if err != nil {
			if dump != nil {
				_ = dump.Close()
			}
			return nil, nil, fmt.Errorf("google engine: %w", err)
		}
		if dump == nil {
			return eng, nil, nil
		}
		return eng, dump, nil
	default:
		return nil, nil, fmt.Errorf("unsupported engine backend %q", cfg.Engine.Backend)
	}
}

// closeAll releases resources in acquisition order.
func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func logRunResult(logger *slog.Logger, result session.Result) {
	if logger == nil {
		return
	}
	fields := []any{
		"run_id", result.RunID,
		"state", result.State,
		"interrupted", result.Interrupted,
		"processed", result.Status.Processed,
		"queue_depth", result.Status.QueueDepth,
		"started_at", result.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	}
	if result.Started {
		fields = append(fields, "latency_mean_s", result.Summary.Overall.Mean.Seconds())
	}

	if result.Err != nil {
		logger.Error("run failed", append(fields, "error", result.Err.Error())...)
		return
	}
	logger.Info("run complete", fields...)
}
