package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

// UploadResponse represents the upload acceptance response.
type UploadResponse struct {
	UploadID string `json:"upload_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// UploadStatusResponse represents the upload status response.
type UploadStatusResponse struct {
	Status          string `json:"status"`
	Filename        string `json:"filename,omitempty"`
	Progress        int    `json:"progress"`
	Message         string `json:"message,omitempty"`
	TotalChunks     int    `json:"total_chunks"`
	ProcessedChunks int    `json:"processed_chunks"`
}

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document for indexing",
		Long: `Upload a document (PDF, TXT or Markdown) for indexing.

The server processes the file in the background. Use --wait to block
until processing finishes, or 'docubase status <upload_id>' to poll
manually.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(cmd, args[0], wait, outputJSON)
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for processing to finish")

	return cmd
}

func runUpload(cmd *cobra.Command, filePath string, wait, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.PostFile("/upload", "file", filePath)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var upload UploadResponse
	if err := json.Unmarshal(resp.Data, &upload); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if !wait {
		if outputJSON {
			output, _ := json.MarshalIndent(upload, "", "  ")
			fmt.Println(string(output))
		} else {
			fmt.Printf("Upload accepted: %s\n", upload.UploadID)
			fmt.Printf("Status: %s\n", upload.Status)
		}
		return nil
	}

	return pollStatus(api, upload.UploadID, outputJSON)
}

func pollStatus(api *APIClient, uploadID string, outputJSON bool) error {
	var lastMessage string
	for {
		status, err := fetchStatus(api, uploadID)
		if err != nil {
			return err
		}

		if !outputJSON && status.Message != lastMessage {
			fmt.Printf("[%3d%%] %s\n", status.Progress, status.Message)
			lastMessage = status.Message
		}

		switch status.Status {
		case "complete":
			if outputJSON {
				output, _ := json.MarshalIndent(status, "", "  ")
				fmt.Println(string(output))
			} else {
				fmt.Printf("Done: %d chunks indexed\n", status.TotalChunks)
			}
			return nil
		case "error":
			return fmt.Errorf("processing failed: %s", status.Message)
		case "not_found":
			return fmt.Errorf("upload %s not found (job may have expired)", uploadID)
		}

		time.Sleep(time.Second)
	}
}

func fetchStatus(api *APIClient, uploadID string) (*UploadStatusResponse, error) {
	resp, err := api.Get(fmt.Sprintf("/upload/status/%s", url.PathEscape(uploadID)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch status: %w", err)
	}

	var status UploadStatusResponse
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status: %w", err)
	}

	return &status, nil
}
