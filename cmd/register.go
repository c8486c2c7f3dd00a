package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/config"
)

var registerCmd = &cobra.Command{
	Use:   "register <image>",
	Short: "Register a face sample for a subject",
	Long: `Register a face from an image file under a subject name.

The image is scanned for a face, the normalized face patch is stored in
the sample gallery and the recognition model is retrained from the full
gallery. Registering an existing name adds another sample for the same
subject, which improves recognition over time.

Examples:
  # Register a new subject
  faceledger register --name "Alice" selfie.jpg

  # Add another sample for the same subject
  faceledger register --name "Alice" selfie2.jpg

  # Output as JSON
  faceledger register --name "Alice" selfie.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("name", "", "Subject display name (required)")
	registerCmd.Flags().Bool("json", false, "Output as JSON")
}

func runRegister(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")
	jsonOutput := mustGetBool(cmd, "json")

	if name == "" {
		return errors.New("--name flag is required")
	}

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

	result, err := svc.Register(context.Background(), name, file)
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
	case attendance.RegisterNoFace:
		fmt.Println("No face detected - nothing was stored")
	case attendance.RegisterTrainingSkipped:
		fmt.Printf("Stored sample for %s (subject #%d), but the corpus was empty at training time\n",
			result.Name, result.SubjectID)
	default:
		verb := "Updated"
		if result.Created {
			verb = "Registered"
		}
		fmt.Printf("%s %s (subject #%d, %d samples) and retrained the model\n",
			verb, result.Name, result.SubjectID, result.Samples)
	}
	return nil
}
