package main

import (
	"context"
	"strings"

	"github.com/advigo/advigo/providers/ai"
)

// localProvider is a scripted stand-in for a real model so the console
// runs without network access or API keys. It echoes the user text and
// streams word by word.
type localProvider struct{}

var _ ai.Provider = localProvider{}
var _ ai.StreamProvider = localProvider{}

func (localProvider) SendMessage(_ context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	var userText string
	for _, message := range request.Messages {
		if message.Role == ai.RoleUser {
			userText = message.Content
		}
	}
	return &ai.ChatResponse{
		Id:           "local",
		Model:        request.Model,
		Content:      "You said: " + userText,
		FinishReason: "stop",
	}, nil
}

func (p localProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	response, err := p.SendMessage(ctx, request)
	if err != nil {
		return nil, err
	}
	words := strings.SplitAfter(response.Content, " ")
	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		for _, word := range words {
			if !yield(ai.StreamEvent{Type: ai.StreamEventContent, Content: word}, nil) {
				return
			}
		}
		yield(ai.StreamEvent{Type: ai.StreamEventDone, FinishReason: "stop"}, nil)
	}
	return ai.NewChatStream(iteratorFunc), nil
}
