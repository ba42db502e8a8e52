package chatclient

import (
	"context"

	"github.com/advigo/advigo/providers/ai"
)

// Advisor is the base interface implemented by every advisor. An advisor
// intercepts chat calls around the model: it can rewrite the outgoing
// request, transform the completed response, and decorate the response
// stream. Which of those it does is declared by additionally implementing
// [RequestAdvisor], [ResponseAdvisor], or [StreamAdvisor]; each chain leg
// detects the capability by type assertion and skips advisors that do not
// implement it.
type Advisor interface {
	// Name identifies the advisor in chain errors and logs.
	Name() string
}

// RequestAdvisor rewrites the outgoing request before the model call.
type RequestAdvisor interface {
	Advisor

	// AdviseRequest receives the request produced by the previous advisor
	// and returns the request handed to the next one. Returning an error
	// aborts the invocation before the model is called.
	AdviseRequest(ctx context.Context, request AdvisedRequest, advCtx *AdvisorContext) (AdvisedRequest, error)
}

// ResponseAdvisor transforms the completed response after the model call.
type ResponseAdvisor interface {
	Advisor

	// AdviseResponse receives the response produced by the previous advisor
	// and returns the response handed to the next one. It must return a
	// non-nil response or an error.
	AdviseResponse(ctx context.Context, response *ai.ChatResponse, advCtx *AdvisorContext) (*ai.ChatResponse, error)
}

// StreamAdvisor decorates the response stream of a Stream invocation.
type StreamAdvisor interface {
	Advisor

	// AdviseStream wraps the stream produced by the previous advisor and
	// returns the stream handed to the next one. Decoration happens before
	// the consumer pulls the first event, so implementations must not
	// drain the upstream themselves. Returning nil keeps the upstream
	// unchanged.
	AdviseStream(ctx context.Context, stream *ai.ChatStream, advCtx *AdvisorContext) *ai.ChatStream
}
