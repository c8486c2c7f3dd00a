package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceledger/internal/config"
	"github.com/kozaktomas/faceledger/internal/constants"
)

var nearestCmd = &cobra.Command{
	Use:   "nearest <image>",
	Short: "Show the gallery samples most similar to a probe",
	Long: `Find the stored gallery samples closest to the face in an image.

This is a diagnostic view into the model: it shows which subjects a probe
gravitates toward and how far away they sit, using the approximate
nearest-neighbor index over the projected samples. It never marks
attendance; use 'recognize' for the thresholded decision.

Examples:
  # Five nearest samples (default)
  faceledger nearest probe.jpg

  # More neighbors
  faceledger nearest probe.jpg -k 10

  # Output as JSON
  faceledger nearest probe.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runNearest,
}

func init() {
	rootCmd.AddCommand(nearestCmd)

	nearestCmd.Flags().IntP("limit", "k", constants.DefaultNearestLimit, "Number of neighbors to return")
	nearestCmd.Flags().Bool("json", false, "Output as JSON")
}

func runNearest(cmd *cobra.Command, args []string) error {
	limit := mustGetInt(cmd, "limit")
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

	neighbors, err := svc.Nearest(context.Background(), file, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := json.NewEncoder(os.Stdout).Encode(neighbors); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	}

	if len(neighbors) == 0 {
		fmt.Println("No gallery samples found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSUBJECT\tNAME\tDISTANCE")
	fmt.Fprintln(w, "----\t-------\t----\t--------")
	for i, n := range neighbors {
		fmt.Fprintf(w, "%d\t#%d\t%s\t%.1f\n", i+1, n.SubjectID, n.Name, n.Distance)
	}
	w.Flush()
	return nil
}
