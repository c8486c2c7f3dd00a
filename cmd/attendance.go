package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceledger/internal/config"
	"github.com/kozaktomas/faceledger/internal/ledger"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "List attendance records",
	Long: `List attendance records from the ledger, oldest first.

Examples:
  # All records
  faceledger attendance

  # Only one subject
  faceledger attendance --name "Alice"

  # Only one day
  faceledger attendance --date 2026-08-25

  # Output as JSON
  faceledger attendance --json`,
	RunE: runAttendance,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)

	attendanceCmd.Flags().String("name", "", "Only records for this subject name (exact match)")
	attendanceCmd.Flags().String("date", "", "Only records on this day (YYYY-MM-DD)")
	attendanceCmd.Flags().Bool("json", false, "Output as JSON")
}

func runAttendance(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")
	date := mustGetString(cmd, "date")
	jsonOutput := mustGetBool(cmd, "json")

	filter := ledger.Filter{Name: name}
	if date != "" {
		day, err := time.ParseInLocation(time.DateOnly, date, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", date)
		}
		filter.Day = day
	}

	cfg := config.Load()
	svc := newService(cfg, nil)

	records, err := svc.Attendance(filter)
	if err != nil {
		return fmt.Errorf("failed to read attendance ledger: %w", err)
	}

	if jsonOutput {
		if records == nil {
			records = []ledger.Record{}
		}
		if err := json.NewEncoder(os.Stdout).Encode(records); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No attendance records found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTIME")
	fmt.Fprintln(w, "----\t----")
	for _, record := range records {
		fmt.Fprintf(w, "%s\t%s\n", record.Name, record.At.Format(time.DateTime))
	}
	w.Flush()

	fmt.Printf("\nTotal: %d records\n", len(records))
	return nil
}
