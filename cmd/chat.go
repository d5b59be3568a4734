package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/localhive/localhive/internal/chat"
	"github.com/localhive/localhive/internal/config"
	"github.com/localhive/localhive/internal/dependency"
)

var chatMessage string

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a single message to the assistant and print the reply",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Message text (alternative to positional args)")
}

func runChat(_ *cobra.Command, args []string) error {
	text := chatMessage
	if text == "" {
		text = strings.TrimSpace(strings.Join(args, " "))
	}
	if text == "" {
		return fmt.Errorf("no message given; pass text as arguments or with -m")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	defer container.Store().Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Fprintf(os.Stderr, "  ↳ thinking...\n")
	result, err := container.Orchestrator().Run(ctx, chat.BuildSeedPrompt(text, nil))
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}

	fmt.Println(result.FinalMessage)
	if result.ToolUsageCount > 0 {
		names := make([]string, 0, len(result.ToolCallBreakdown))
		for _, rec := range result.ToolCallBreakdown {
			names = append(names, rec.Name)
		}
		fmt.Fprintf(os.Stderr, "  (used %d tool calls: %s)\n", result.ToolUsageCount, strings.Join(names, ", "))
	}
	return nil
}
