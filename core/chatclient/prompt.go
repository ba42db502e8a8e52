package chatclient

import (
	"context"

	"github.com/advigo/advigo/providers/ai"
)

// PromptSpec accumulates the parts of one chat call. Obtain one from
// [Client.Prompt], configure it fluently, then finish with [PromptSpec.Call]
// or [PromptSpec.Stream]. A PromptSpec describes a single invocation and is
// not safe for concurrent mutation.
type PromptSpec struct {
	client         *Client
	userText       string
	systemText     string
	model          string
	options        *ai.GenerationConfig
	conversationID string
	advisors       []Advisor
	params         map[string]any
}

// User sets the user text. Required: Call and Stream fail with
// [ErrEmptyUserText] when it is missing or blank.
func (p *PromptSpec) User(text string) *PromptSpec {
	p.userText = text
	return p
}

// System overrides the client's default system text for this call.
func (p *PromptSpec) System(text string) *PromptSpec {
	p.systemText = text
	return p
}

// Model overrides the client's default model for this call.
func (p *PromptSpec) Model(model string) *PromptSpec {
	p.model = model
	return p
}

// Options overrides the client's default generation options for this call.
func (p *PromptSpec) Options(options *ai.GenerationConfig) *PromptSpec {
	p.options = options
	return p
}

// Conversation sets the conversation id advisors use to scope state, such
// as which history PromptMemory loads and records.
func (p *PromptSpec) Conversation(conversationID string) *PromptSpec {
	p.conversationID = conversationID
	return p
}

// Advisors configures per-call advisors and advisor params through the
// given functions. Repeated calls accumulate on the same invocation.
//
//	client.Prompt().
//	    User("and my name?").
//	    Advisors(func(a *chatclient.AdvisorSpec) {
//	        a.Param(advisor.ParamConversationID, "session-42")
//	    }).
//	    Call(ctx)
func (p *PromptSpec) Advisors(configure ...func(*AdvisorSpec)) *PromptSpec {
	spec := &AdvisorSpec{prompt: p}
	for _, fn := range configure {
		fn(spec)
	}
	return p
}

// Call executes the invocation synchronously: request chain, model call,
// response chain.
func (p *PromptSpec) Call(ctx context.Context) (*CallResponse, error) {
	return p.client.call(ctx, p)
}

// Stream executes the invocation with a streaming response. The request
// chain runs before this method returns; the returned stream is decorated
// by the stream advisors and has not been consumed.
func (p *PromptSpec) Stream(ctx context.Context) (*ai.ChatStream, error) {
	return p.client.stream(ctx, p)
}

// AdvisorSpec configures the advisor side of one call: extra advisors
// that run after the client defaults, and the params advisors read during
// the invocation.
type AdvisorSpec struct {
	prompt *PromptSpec
}

// Advisor appends per-call advisors. They run after the client's default
// advisors, in the order given.
func (s *AdvisorSpec) Advisor(advisors ...Advisor) *AdvisorSpec {
	s.prompt.advisors = append(s.prompt.advisors, advisors...)
	return s
}

// Param sets one advisor param. Setting the same key again replaces the
// earlier value.
func (s *AdvisorSpec) Param(key string, value any) *AdvisorSpec {
	s.prompt.params[key] = value
	return s
}

// Params sets several advisor params at once, with the same replacement
// rule as [AdvisorSpec.Param].
func (s *AdvisorSpec) Params(params map[string]any) *AdvisorSpec {
	for key, value := range params {
		s.prompt.params[key] = value
	}
	return s
}

// CallResponse is the result of a successful Call invocation, after the
// response chain has run.
type CallResponse struct {
	response *ai.ChatResponse
}

// Content returns the model's text content.
func (r *CallResponse) Content() string {
	return r.response.Content
}

// Response returns the full chat response.
func (r *CallResponse) Response() *ai.ChatResponse {
	return r.response
}
