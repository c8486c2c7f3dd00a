package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/config"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List registered subjects",
	Long: `List registered subjects with their stored sample counts.

The --search filter matches names without case or diacritics, so "jiri"
finds "Jiří".

Examples:
  # Full roster
  faceledger subjects

  # Filter by name
  faceledger subjects --search alice

  # Output as JSON
  faceledger subjects --json`,
	RunE: runSubjects,
}

func init() {
	rootCmd.AddCommand(subjectsCmd)

	subjectsCmd.Flags().String("search", "", "Filter subjects by name (case- and diacritic-insensitive)")
	subjectsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runSubjects(cmd *cobra.Command, args []string) error {
	search := mustGetString(cmd, "search")
	jsonOutput := mustGetBool(cmd, "json")

	cfg := config.Load()
	svc := newService(cfg, nil)

	subjects := svc.Subjects(search)

	if jsonOutput {
		if subjects == nil {
			subjects = []attendance.SubjectInfo{}
		}
		if err := json.NewEncoder(os.Stdout).Encode(subjects); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	}

	if len(subjects) == 0 {
		fmt.Println("No subjects found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSAMPLES")
	fmt.Fprintln(w, "--\t----\t-------")
	for _, subject := range subjects {
		fmt.Fprintf(w, "%d\t%s\t%d\n", subject.ID, subject.Name, subject.Samples)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d subjects\n", len(subjects))
	return nil
}
