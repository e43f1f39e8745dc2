package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// StatusCmd creates the status command.
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <upload_id>",
		Short: "Show the status of an upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStatus(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runStatus(cmd *cobra.Command, uploadID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	status, err := fetchStatus(api, uploadID)
	if err != nil {
		return err
	}

	if outputJSON {
		output, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Status: %s\n", status.Status)
	if status.Filename != "" {
		fmt.Printf("File: %s\n", status.Filename)
	}
	fmt.Printf("Progress: %d%%\n", status.Progress)
	if status.Message != "" {
		fmt.Printf("Message: %s\n", status.Message)
	}
	if status.TotalChunks > 0 {
		fmt.Printf("Chunks: %d/%d\n", status.ProcessedChunks, status.TotalChunks)
	}

	return nil
}
