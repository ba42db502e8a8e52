package ai

import (
	"context"
	"errors"
)

// Provider is the interface every chat model implementation must satisfy.
// Implementations translate the provider-agnostic [ChatRequest] into their
// own wire format and map the result back into a [ChatResponse].
type Provider interface {
	// SendMessage sends a chat request to the model and returns the
	// completed response. Returns an error if the model call fails,
	// the context is cancelled, or the response cannot be decoded.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)
}

// StreamProvider is an optional interface that providers can implement to
// support streaming responses. Callers detect streaming support via type
// assertion: provider.(StreamProvider). If the provider does not implement
// this interface, callers should fall back to the synchronous SendMessage
// method and wrap the result with [NewSingleEventStream].
type StreamProvider interface {
	Provider
	// StreamMessage sends a chat request and returns a ChatStream that yields
	// incremental deltas as they arrive from the model. Pre-stream errors
	// (auth, bad request, network) are returned as a normal error. Mid-stream
	// errors are yielded through the iterator.
	StreamMessage(ctx context.Context, request ChatRequest) (*ChatStream, error)
}

// GenerateText performs a minimal single-turn exchange: prompt in, response
// text out. It is used for auxiliary model calls where only the generated
// text matters, such as query rewriting.
func GenerateText(ctx context.Context, provider Provider, prompt string) (string, error) {
	response, err := provider.SendMessage(ctx, ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	if response == nil {
		return "", errors.New("advigo: provider returned a nil response")
	}
	return response.Content, nil
}
