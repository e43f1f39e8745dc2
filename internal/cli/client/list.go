package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DocumentListItem represents a single document in the list response.
type DocumentListItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded documents",
		Long:  "Lists all documents currently indexed by the server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(cmd, outputJSON)
		},
	}

	return cmd
}

func runList(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/documents")
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var documents []DocumentListItem
	if err := json.Unmarshal(resp.Data, &documents); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(documents, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(documents) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	fmt.Printf("Found %d documents:\n\n", len(documents))
	for i, doc := range documents {
		fmt.Printf("%d. %s\n", i+1, doc.Name)
		fmt.Printf("   ID: %s\n", doc.ID)
		if doc.CreatedAt != "" {
			fmt.Printf("   Uploaded: %s\n", doc.CreatedAt)
		}
	}

	return nil
}
