// Command screenly runs the candidate screening API and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "screenly",
	Short: "AI-assisted candidate screening",
	Long: `Screenly accepts CV submissions, extracts candidate details with a generative model,
scores each candidate against the job profile and exports the results to a spreadsheet.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, reprocessCmd, indexProfilesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
