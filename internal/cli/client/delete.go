package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <document_id>",
		Short: "Delete a document by ID",
		Long:  "Deletes a document and all of its indexed chunks.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDelete(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runDelete(cmd *cobra.Command, documentID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	_, err = api.Delete(fmt.Sprintf("/documents/%s", documentID))
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(map[string]string{
			"id":     documentID,
			"status": "deleted",
		}, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Deleted document: %s\n", documentID)
	}

	return nil
}
