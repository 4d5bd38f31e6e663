package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teaden/Audiophile/internal/app"
)

var (
	// Gesture command flags
	gestureDuration  time.Duration
	gestureProbeHz   float64
	gestureVolume    float64
	gestureDevice    string
	gestureWithPeaks bool
)

// gestureCmd represents the gesture command
var gestureCmd = &cobra.Command{
	Use:   "gesture [flags]",
	Short: "Classify hand gestures from Doppler shifts around a probe tone",
	Long: `Play a continuous inaudible probe tone through the speakers and watch the
microphone spectrum for Doppler-style energy asymmetry around it. A hand
moving toward the microphone shifts reflected energy above the probe,
moving away shifts it below.

The classifier calibrates itself on startup: it waits for the probe to
stabilize, learns the quiet noise baseline, then learns detection
thresholds from the observed ratio distribution. Expect a few seconds
before gestures are reported.

Examples:
  # Classify gestures with the default 18 kHz probe
  audiophile gesture

  # Use a different probe frequency at half volume
  audiophile gesture --probe 19000 --volume 0.5

  # Also report dominant tones while classifying
  audiophile gesture --with-peaks`,
	RunE: runGesture,
}

func init() {
	rootCmd.AddCommand(gestureCmd)

	gestureCmd.Flags().DurationVar(&gestureDuration, "duration", 0,
		"how long to run (0 means until interrupted)")
	gestureCmd.Flags().Float64Var(&gestureProbeHz, "probe", 18000,
		"probe tone frequency in Hz")
	gestureCmd.Flags().Float64Var(&gestureVolume, "volume", 1.0,
		"probe tone volume (0 to 1)")
	gestureCmd.Flags().StringVar(&gestureDevice, "device", "",
		"capture device name substring (default system device)")
	gestureCmd.Flags().BoolVar(&gestureWithPeaks, "with-peaks", false,
		"also run peak detection and vowel labeling")

	viper.BindPFlag("gesture.probe_frequency_hz", gestureCmd.Flags().Lookup("probe"))
	viper.BindPFlag("gesture.probe_volume", gestureCmd.Flags().Lookup("volume"))
	viper.BindPFlag("audio.device", gestureCmd.Flags().Lookup("device"))
}

func runGesture(cmd *cobra.Command, args []string) error {
	appCtx := &app.Context{
		OutputFormat:  outputFormat,
		Duration:      gestureDuration,
		Verbose:       verbose,
		Quiet:         quiet,
		EnablePeaks:   gestureWithPeaks,
		EnableGesture: true,
	}

	application, err := app.NewApp(appCtx)
	if err != nil {
		return err
	}
	return application.Run(cmd.Context())
}
