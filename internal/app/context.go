package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/teaden/Audiophile/configs"
	"github.com/teaden/Audiophile/internal/analyzer"
	"github.com/teaden/Audiophile/pkg/audio"
	"github.com/teaden/Audiophile/pkg/logging"
	"github.com/teaden/Audiophile/pkg/output"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	OutputFormat string
	Duration     time.Duration
	Verbose      bool
	Quiet        bool

	// Analyses to run
	EnablePeaks   bool
	EnableGesture bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// App handles the analysis application lifecycle: devices in, snapshots out
type App struct {
	ctx    *Context
	config *configs.Config
	logger logging.Logger
}

// NewApp loads and validates configuration and prepares the application
func NewApp(ctx *Context) (*App, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if ctx.OutputFormat != "" {
		config.OutputFormat = ctx.OutputFormat
	}
	if ctx.Verbose {
		config.Verbose = true
		config.LogLevel = "debug"
	}
	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := setupLogging(config)
	ctx.Logger = logger
	ctx.Config = config

	logger.Debug("application initialized", logging.Fields{
		"sample_rate":   config.Audio.SampleRate,
		"buffer_size":   config.Audio.BufferSize,
		"tick_rate_hz":  config.Audio.TickRateHz,
		"output_format": config.OutputFormat,
		"peaks":         ctx.EnablePeaks,
		"gesture":       ctx.EnableGesture,
	})

	return &App{
		ctx:    ctx,
		config: config,
		logger: logger,
	}, nil
}

// Run captures from the microphone and prints analysis snapshots until the
// context is cancelled or the configured duration elapses
func (app *App) Run(ctx context.Context) error {
	opts := analyzer.Options{
		SampleRate:      float64(app.config.Audio.SampleRate),
		BufferSize:      app.config.Audio.BufferSize,
		EnablePeaks:     app.ctx.EnablePeaks,
		MinSeparationHz: app.config.Peaks.MinSeparationHz,
		EnableGesture:   app.ctx.EnableGesture,
		Probe:           app.config.Gesture.Probe(),
		Gesture:         app.config.Gesture.ClassifierConfig(),
	}

	eng, err := analyzer.New(opts, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	capture, err := audio.NewCapture(app.config.Audio.SampleRate, app.config.Audio.Device, eng.Feed, app.logger)
	if err != nil {
		return fmt.Errorf("failed to open capture device: %w", err)
	}
	defer capture.Stop()

	var probe *audio.ProbeTone
	if app.ctx.EnableGesture {
		probe, err = audio.NewProbeTone(app.config.Audio.SampleRate,
			app.config.Gesture.ProbeFrequencyHz, app.config.Gesture.ProbeVolume, app.logger)
		if err != nil {
			return fmt.Errorf("failed to open probe playback: %w", err)
		}
		defer probe.Stop()
		if err := probe.Start(); err != nil {
			return err
		}
	}

	if err := capture.Start(); err != nil {
		return err
	}

	if app.ctx.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.ctx.Duration)
		defer cancel()
	}

	return app.tickLoop(ctx, eng)
}

// tickLoop drives the analyzer at the configured cadence and emits snapshots
// about once per second
func (app *App) tickLoop(ctx context.Context, eng *analyzer.Analyzer) error {
	interval := time.Second / time.Duration(app.config.Audio.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	formatter := output.NewFormatter(app.config.OutputFormat)
	emitEvery := app.config.Audio.TickRateHz
	tick := 0

	for {
		select {
		case <-ctx.Done():
			app.logger.Debug("analysis loop stopped", logging.Fields{
				"reason": ctx.Err().Error(),
			})
			return nil
		case <-ticker.C:
			snap, err := eng.Tick()
			if err != nil {
				// the ring needs one full window before the first tick
				// can succeed; anything else is fatal
				if eng.Snapshot() == nil {
					app.logger.Debug("waiting for samples", logging.Fields{
						"error": err.Error(),
					})
					continue
				}
				return fmt.Errorf("analysis tick failed: %w", err)
			}

			tick++
			if app.ctx.Quiet || tick%emitEvery != 0 {
				continue
			}
			if err := app.emitSnapshot(formatter, snap); err != nil {
				return err
			}
		}
	}
}

// emitSnapshot renders one snapshot to stdout
func (app *App) emitSnapshot(formatter output.Formatter, snap *analyzer.Snapshot) error {
	data := map[string]any{
		"timestamp": snap.Timestamp.Format(time.RFC3339),
	}

	if app.ctx.EnablePeaks {
		peaks := make([]map[string]any, 0, len(snap.TopPeaks))
		for _, p := range snap.TopPeaks {
			if !p.Valid() {
				continue
			}
			peaks = append(peaks, map[string]any{
				"frequency_hz": p.Frequency,
				"magnitude_db": p.Magnitude,
			})
		}
		data["peaks"] = peaks
		data["vowel"] = snap.Vowel.String()
	}

	if snap.Gesture != nil {
		data["gesture"] = snap.Gesture.State.String()
		data["probe_level_db"] = snap.Gesture.ProbeLevelDB
		if app.config.Verbose {
			data["ratio"] = snap.Gesture.Ratio
		}
	}

	formatted, err := formatter.Format(data, true)
	if err != nil {
		return fmt.Errorf("failed to format snapshot: %w", err)
	}
	if _, err := os.Stdout.Write(formatted); err != nil {
		return err
	}
	_, err = fmt.Println()
	return err
}

// setupLogging configures logging based on the loaded configuration
func setupLogging(config *configs.Config) logging.Logger {
	return logging.NewLoggerWithLevel(config.LogLevel)
}
