package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/saharlajmi1/recmooc4all/config"
	"github.com/saharlajmi1/recmooc4all/core/turn"
	"github.com/saharlajmi1/recmooc4all/providers/history"
	"github.com/saharlajmi1/recmooc4all/providers/observability/slogobs"
)

func newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the bot in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), cfg)
		},
	}
}

func runChat(ctx context.Context, cfg *config.Config) error {
	// Warnings only; INFO would interleave with the conversation.
	observer := slogobs.New(slogobs.WithLevel(slog.LevelWarn))

	bot, store, err := buildChatbot(ctx, cfg, observer)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	conversationID := uuid.NewString()
	var chatHistory []turn.Message

	fmt.Println("Ask about courses, roadmaps or quizzes. Ctrl-D to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}

		state := turn.State{
			QueryID:        history.NewID(),
			ConversationID: conversationID,
			Query:          query,
			ChatHistory:    chatHistory,
		}

		record := &history.Record{
			ID:             state.QueryID,
			ConversationID: conversationID,
			Query:          query,
		}
		if err = store.Create(ctx, record); err != nil {
			return err
		}

		final, err := bot.ProcessTurn(ctx, state)
		if err != nil {
			fmt.Fprintln(os.Stderr, "turn failed:", err)
			continue
		}

		fmt.Println(final.FinalAnswer)
		fmt.Println()

		record.Query = final.Query
		record.RefinedQuery = final.RefinedQuery
		record.Response = final.FinalAnswer
		record.Intent = string(final.Classification)
		if final.Metadata != nil {
			record.Topic = final.Metadata.Topic
			record.Level = final.Metadata.Level
			record.NumCourses = final.Metadata.NumCourses
		}
		if err = store.Update(ctx, record); err != nil {
			return err
		}

		chatHistory = append(chatHistory,
			turn.Message{Role: turn.RoleUser, Text: query},
			turn.Message{Role: turn.RoleAssistant, Text: final.FinalAnswer},
		)
	}
}
