package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teaden/Audiophile/internal/app"
)

var (
	// Listen command flags
	listenDuration   time.Duration
	listenSeparation float64
	listenDevice     string
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen [flags]",
	Short: "Detect the two dominant tones in the live microphone signal",
	Long: `Continuously analyze the microphone signal and report the two strongest
spectral peaks, refined to sub-bin accuracy, together with a vowel label
derived from their frequency ratio.

Examples:
  # Listen with defaults until interrupted
  audiophile listen

  # Require 100 Hz between reported peaks, stop after 30 seconds
  audiophile listen --min-separation 100 --duration 30s

  # Emit JSON snapshots
  audiophile listen -o json`,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().DurationVar(&listenDuration, "duration", 0,
		"how long to listen (0 means until interrupted)")
	listenCmd.Flags().Float64Var(&listenSeparation, "min-separation", 50,
		"minimum separation between reported peaks in Hz")
	listenCmd.Flags().StringVar(&listenDevice, "device", "",
		"capture device name substring (default system device)")

	viper.BindPFlag("peaks.min_separation_hz", listenCmd.Flags().Lookup("min-separation"))
	viper.BindPFlag("audio.device", listenCmd.Flags().Lookup("device"))
}

func runListen(cmd *cobra.Command, args []string) error {
	appCtx := &app.Context{
		OutputFormat: outputFormat,
		Duration:     listenDuration,
		Verbose:      verbose,
		Quiet:        quiet,
		EnablePeaks:  true,
	}

	application, err := app.NewApp(appCtx)
	if err != nil {
		return err
	}
	return application.Run(cmd.Context())
}
