package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/config"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Recognize a face and mark attendance",
	Long: `Recognize the face in an image against the trained model.

The probe is matched against every stored sample in the projected
subspace. A match below the dissimilarity threshold marks attendance in
the ledger; use --no-record to evaluate a probe without recording it.
Lower scores mean closer matches.

Examples:
  # Recognize and mark attendance
  faceledger recognize checkin.jpg

  # Dry run without touching the ledger
  faceledger recognize checkin.jpg --no-record

  # Output as JSON
  faceledger recognize checkin.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().Bool("no-record", false, "Evaluate the probe without recording attendance")
	recognizeCmd.Flags().Bool("json", false, "Output as JSON")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	noRecord := mustGetBool(cmd, "no-record")
	jsonOutput := mustGetBool(cmd, "json")

	cfg := config.Load()

	detector, err := newDetector(cfg)
	if err != nil {
		return err
	}
	svc := newService(cfg, detector)

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cannot open image %s: %w", args[0], err)
	}
	defer file.Close()

	result, err := svc.Recognize(context.Background(), file, attendance.RecognizeOptions{
		SkipLedger: noRecord,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	}

	switch result.Status {
	case attendance.RecognizeNoFace:
		fmt.Println("No face detected")
	case attendance.RecognizeNoModel:
		fmt.Println("No trained model yet - register a face first")
	case attendance.RecognizeRejected:
		fmt.Printf("Unknown face (score %.1f, threshold %.1f)\n", result.Score, cfg.Recognizer.Threshold)
	default:
		fmt.Printf("Recognized %s (subject #%d, score %.1f)\n", result.Name, result.SubjectID, result.Score)
		if result.Recorded {
			fmt.Printf("Attendance recorded at %s\n", result.At.Format(time.DateTime))
		} else {
			fmt.Println("Attendance not recorded (--no-record)")
		}
	}
	return nil
}
