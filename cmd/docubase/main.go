package main

import (
	"fmt"
	"os"

	"github.com/docubase-ai/docubase/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "docubase",
		Short: "Docubase CLI - document Q&A from the terminal",
		Long: `Docubase CLI provides commands to upload documents and ask
questions answered from their content.

Environment variables:
  DOCUBASE_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")

	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.StatusCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.DeleteCmd())
	rootCmd.AddCommand(client.AskCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
