package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// askEvent mirrors the server's streamed answer event.
type askEvent struct {
	Type    string   `json:"type"`
	Content string   `json:"content,omitempty"`
	Sources []string `json:"sources,omitempty"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about your documents",
		Long: `Ask a question answered from the uploaded documents.

The answer streams token by token. Source document names are printed
before the answer starts.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, strings.Join(args, " "), outputJSON)
		},
	}

	return cmd
}

func runAsk(cmd *cobra.Command, question string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	body, err := api.GetStream("/ask?question=" + url.QueryEscape(question))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tokensPrinted := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if outputJSON {
			fmt.Println(line)
			continue
		}

		var event askEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return fmt.Errorf("failed to parse event: %w", err)
		}

		switch event.Type {
		case "sources":
			fmt.Printf("Sources: %s\n\n", strings.Join(event.Sources, ", "))
		case "token":
			fmt.Print(event.Content)
			tokensPrinted = true
		case "done":
			if tokensPrinted {
				fmt.Println()
			}
			return nil
		case "error":
			if tokensPrinted {
				fmt.Println()
			}
			return fmt.Errorf("%s", event.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %w", err)
	}

	if tokensPrinted {
		fmt.Println()
	}
	return fmt.Errorf("stream ended without a terminal event")
}
