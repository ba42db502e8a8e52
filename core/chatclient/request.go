package chatclient

import (
	"github.com/advigo/advigo/providers/ai"
)

// AdvisedRequest is the snapshot of one chat call as it travels the
// request chain. Advisors never mutate the request they receive; they
// return a derived copy, typically through [AdvisedRequest.WithSystemText]
// or [AdvisedRequest.WithUserText], and the chain hands that copy to the
// next advisor.
//
// AdvisorParams holds the caller-supplied per-call parameters. The map is
// shared between copies and must be treated as read-only; advisor
// bookkeeping belongs in the [AdvisorContext] instead.
type AdvisedRequest struct {
	SystemText     string
	UserText       string
	ConversationID string
	Model          string
	Options        *ai.GenerationConfig
	AdvisorParams  map[string]any
}

// WithSystemText returns a copy of the request with SystemText replaced.
func (r AdvisedRequest) WithSystemText(systemText string) AdvisedRequest {
	r.SystemText = systemText
	return r
}

// WithUserText returns a copy of the request with UserText replaced.
func (r AdvisedRequest) WithUserText(userText string) AdvisedRequest {
	r.UserText = userText
	return r
}

// Param returns the advisor param stored under key and whether the caller
// set it.
func (r AdvisedRequest) Param(key string) (any, bool) {
	value, ok := r.AdvisorParams[key]
	return value, ok
}

// chatRequest converts the advised request into the provider request.
// The user text travels as the single conversation message; advisors that
// inject history or retrieved documents do so through the system text.
func (r AdvisedRequest) chatRequest() ai.ChatRequest {
	return ai.ChatRequest{
		Model:            r.Model,
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: r.UserText}},
		SystemPrompt:     r.SystemText,
		GenerationConfig: r.Options,
	}
}
