package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "faceledger",
	Short: "Face recognition attendance from the command line",
	Long: `Face Ledger registers people by face image, recognizes faces against an
eigenface model trained from the stored samples and appends attendance
records to a CSV ledger. All state lives in flat files under the data
directory (DATA_DIR, default ./data).`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
