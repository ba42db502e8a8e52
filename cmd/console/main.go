// Package main is an interactive console over the advigo chat client.
// Conversation memory, logging and streaming all run through the advisor
// pipeline; the model is a scripted local stand-in, so the console works
// offline. The memory backend is selected in config.yaml (memory, redis,
// postgres or mysql); connection secrets come from the environment,
// loaded from .env when present.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"

	"github.com/advigo/advigo/core/chatclient"
	"github.com/advigo/advigo/core/chatclient/advisor"
	"github.com/advigo/advigo/providers/ai"
	"github.com/advigo/advigo/providers/memory"
)

func main() {
	if err := mainImpl(); err != nil {
		log.Fatal(err)
	}
}

func mainImpl() error {
	ctx := context.Background()

	config, err := LoadConfig("config.yaml")
	if err != nil {
		return err
	}
	logger := newLogger(config)

	store, cleanup, err := openStore(ctx, config)
	if err != nil {
		return err
	}
	defer cleanup()

	memoryOpts := []advisor.MemoryOption{advisor.WithMemoryLogger(logger)}
	if maxMessages := config.GetIntOrDefault("maxMessages", 0); maxMessages > 0 {
		memoryOpts = append(memoryOpts, advisor.WithMaxMessages(maxMessages))
	}

	client, err := chatclient.NewBuilder(localProvider{}).
		DefaultSystem(config.GetStringOrDefault("systemText", "You are a helpful assistant.")).
		DefaultModel(config.GetStringOrDefault("model", "local-scripted")).
		DefaultAdvisors(
			advisor.NewPromptMemory(store, memoryOpts...),
			advisor.NewSimpleLogger(logger),
		).
		Logger(logger).
		Build()
	if err != nil {
		return err
	}

	conversationID := config.GetStringOrDefault("conversationId", uuid.NewString())
	streaming := config.GetBoolOrDefault("stream", false)
	return runREPL(ctx, client, store, conversationID, streaming)
}

// newLogger builds a stderr text logger at the configured level so log
// entries stay apart from chat output on stdout.
func newLogger(config *Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.GetStringOrDefault("logLevel", "warn"))); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runREPL(ctx context.Context, client *chatclient.Client, store memory.Store, conversationID string, streaming bool) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	fmt.Printf("advigo console, conversation %s\n", conversationID)
	fmt.Println("/stream toggles streaming, /history shows memory, /clear wipes it, /quit exits")

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := runCommand(ctx, store, conversationID, line, &streaming)
			if err != nil {
				fmt.Println(err)
			}
			if quit {
				break
			}
			continue
		}
		if streaming {
			streamOnce(ctx, client, conversationID, line)
		} else {
			callOnce(ctx, client, conversationID, line)
		}
	}
	return nil
}

func runCommand(ctx context.Context, store memory.Store, conversationID, line string, streaming *bool) (bool, error) {
	switch line {
	case "/quit", "/exit":
		return true, nil
	case "/stream":
		*streaming = !*streaming
		if *streaming {
			fmt.Println("streaming on")
		} else {
			fmt.Println("streaming off")
		}
		return false, nil
	case "/clear":
		if err := store.Clear(ctx, conversationID); err != nil {
			return false, err
		}
		fmt.Println("conversation cleared")
		return false, nil
	case "/history":
		messages, err := store.Messages(ctx, conversationID)
		if err != nil {
			return false, err
		}
		if len(messages) == 0 {
			fmt.Println("no history yet")
			return false, nil
		}
		for _, message := range messages {
			fmt.Printf("%s: %s\n", message.Role, message.Content)
		}
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %s", line)
	}
}

func callOnce(ctx context.Context, client *chatclient.Client, conversationID, userText string) {
	response, err := client.Prompt().User(userText).Conversation(conversationID).Call(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(response.Content())
}

func streamOnce(ctx context.Context, client *chatclient.Client, conversationID, userText string) {
	stream, err := client.Prompt().User(userText).Conversation(conversationID).Stream(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	for event, iterErr := range stream.Iter() {
		if iterErr != nil {
			fmt.Println()
			fmt.Println(iterErr)
			return
		}
		if event.Type == ai.StreamEventContent {
			fmt.Print(event.Content)
		}
	}
	fmt.Println()
}
