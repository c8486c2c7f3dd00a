package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/config"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Retrain the recognition model from the sample gallery",
	Long: `Rebuild the eigenface model from every stored face sample.

Registration retrains automatically, so this command is only needed after
editing the dataset directory by hand (adding, removing or replacing
sample files). The previous model stays in force until the new one is
fully written, and an empty gallery leaves it untouched.

Examples:
  # Retrain with a progress bar
  faceledger train

  # JSON output for scripting
  faceledger train --json`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().Bool("json", false, "Output as JSON instead of progress bar")
}

func runTrain(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	cfg := config.Load()
	svc := newService(cfg, nil)
	startTime := time.Now()

	// The sample count is only known once the gallery walk begins, so the
	// bar is created on the first progress callback.
	var bar *progressbar.ProgressBar
	opts := attendance.TrainOptions{}
	if !jsonOutput {
		opts.OnSample = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("Training model"),
					progressbar.OptionShowCount(),
					progressbar.OptionShowIts(),
					progressbar.OptionSetItsString("samples"),
					progressbar.OptionShowElapsedTimeOnFinish(),
					progressbar.OptionSetPredictTime(true),
					progressbar.OptionFullWidth(),
				)
			}
			_ = bar.Set(done)
		}
	}

	result, err := svc.Retrain(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	}

	if result.Skipped {
		fmt.Println("No samples in the gallery - training skipped, existing model untouched")
		return nil
	}

	fmt.Printf("\nTrained on %d samples from %d subjects (%d components) in %s\n",
		result.Samples, result.Subjects, result.Components, time.Since(startTime).Round(time.Millisecond))
	return nil
}
