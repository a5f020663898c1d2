package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/solho/setlist/internal/chat"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "Show a chat session's transcript",
	Long:  `Fetches and prints the stored transcript for a chat session.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	chatClient := chat.NewClient(cfg.Chat.BaseURL)
	chatClient.SetLogger(newLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	messages, err := chatClient.History(ctx, args[0])
	if err != nil {
		return err
	}

	if JSONOutput() {
		output := make([]map[string]interface{}, 0, len(messages))
		for _, m := range messages {
			item := map[string]interface{}{
				"role": string(m.Role),
				"text": m.Text,
			}
			if !m.Timestamp.IsZero() {
				item["timestamp"] = m.Timestamp.Format(time.RFC3339)
			}
			if m.Mode != "" {
				item["mode"] = m.Mode
			}
			output = append(output, item)
		}
		return json.NewEncoder(os.Stdout).Encode(output)
	}

	if len(messages) == 0 {
		fmt.Println("No history for this session.")
		return nil
	}

	for _, m := range messages {
		label := "setlist"
		if m.Role == chat.RoleUser {
			label = "you"
		}
		if !m.Timestamp.IsZero() {
			fmt.Printf("[%s] %s:\n", m.Timestamp.Format("2006-01-02 15:04"), label)
		} else {
			fmt.Printf("%s:\n", label)
		}
		fmt.Printf("  %s\n\n", m.Text)
	}

	return nil
}
