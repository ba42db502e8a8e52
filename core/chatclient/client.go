package chatclient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/advigo/advigo/providers/ai"
)

// Client is the façade for advised chat calls. It is immutable after
// [Builder.Build] and safe for concurrent use: every invocation operates
// on its own [AdvisedRequest] and [AdvisorContext].
type Client struct {
	provider        ai.Provider
	defaultSystem   string
	defaultModel    string
	defaultOptions  *ai.GenerationConfig
	defaultAdvisors []Advisor
	logger          *slog.Logger
}

// Prompt opens a fluent prompt against this client.
func (c *Client) Prompt() *PromptSpec {
	return &PromptSpec{client: c, params: map[string]any{}}
}

// Logger returns the logger configured at build time.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// assemble merges the client defaults with the per-call spec into the
// initial request, the advisor list, and the seeded context for one
// invocation.
func (c *Client) assemble(spec *PromptSpec) (AdvisedRequest, []Advisor, *AdvisorContext, error) {
	if strings.TrimSpace(spec.userText) == "" {
		return AdvisedRequest{}, nil, nil, ErrEmptyUserText
	}

	systemText := spec.systemText
	if systemText == "" {
		systemText = c.defaultSystem
	}

	model := spec.model
	if model == "" {
		model = c.defaultModel
	}

	options := spec.options
	if options == nil {
		options = c.defaultOptions
	}

	// Defaults run first, then per-call advisors, each group in
	// registration order.
	advisors := make([]Advisor, 0, len(c.defaultAdvisors)+len(spec.advisors))
	advisors = append(advisors, c.defaultAdvisors...)
	advisors = append(advisors, spec.advisors...)

	// The request carries its own copy of the caller params and the context
	// is seeded with a second copy plus the invocation id. Keys advisors
	// set on the context never show up in AdvisorParams.
	params := make(map[string]any, len(spec.params))
	advCtx := NewAdvisorContext()
	for key, value := range spec.params {
		params[key] = value
		advCtx.Set(key, value)
	}
	advCtx.Set(KeyInvocationID, uuid.NewString())

	request := AdvisedRequest{
		SystemText:     systemText,
		UserText:       spec.userText,
		ConversationID: spec.conversationID,
		Model:          model,
		Options:        options,
		AdvisorParams:  params,
	}

	return request, advisors, advCtx, nil
}

// call runs one synchronous invocation: request chain, model call,
// response chain.
func (c *Client) call(ctx context.Context, spec *PromptSpec) (*CallResponse, error) {
	request, advisors, advCtx, err := c.assemble(spec)
	if err != nil {
		return nil, err
	}

	advised, err := runRequestChain(ctx, advisors, request, advCtx)
	if err != nil {
		return nil, err
	}

	response, err := c.provider.SendMessage(ctx, advised.chatRequest())
	if err != nil {
		return nil, fmt.Errorf("chat model call: %w", err)
	}

	final, err := runResponseChain(ctx, advisors, response, advCtx)
	if err != nil {
		return nil, err
	}

	return &CallResponse{response: final}, nil
}

// stream runs one streaming invocation. The request chain runs eagerly
// before the stream is opened; stream decorations compose before the
// first event is pulled and the composed stream is returned un-drained.
func (c *Client) stream(ctx context.Context, spec *PromptSpec) (*ai.ChatStream, error) {
	request, advisors, advCtx, err := c.assemble(spec)
	if err != nil {
		return nil, err
	}

	advised, err := runRequestChain(ctx, advisors, request, advCtx)
	if err != nil {
		return nil, err
	}

	stream, err := c.openStream(ctx, advised.chatRequest())
	if err != nil {
		return nil, fmt.Errorf("chat model stream: %w", err)
	}

	return runStreamChain(ctx, advisors, stream, advCtx), nil
}

// openStream uses the provider's native streaming when available and
// falls back to a synchronous call delivered as a single-event stream.
func (c *Client) openStream(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	if streamProvider, ok := c.provider.(ai.StreamProvider); ok {
		return streamProvider.StreamMessage(ctx, request)
	}

	response, err := c.provider.SendMessage(ctx, request)
	if err != nil {
		return nil, err
	}

	return ai.NewSingleEventStream(response), nil
}
