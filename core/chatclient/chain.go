package chatclient

import (
	"context"
	"fmt"

	"github.com/advigo/advigo/providers/ai"
)

// runRequestChain folds the request through every [RequestAdvisor] in
// registration order. Each advisor receives the request produced by the
// previous one; the first error aborts the chain and the invocation.
func runRequestChain(ctx context.Context, advisors []Advisor, request AdvisedRequest, advCtx *AdvisorContext) (AdvisedRequest, error) {
	for _, advisor := range advisors {
		requestAdvisor, ok := advisor.(RequestAdvisor)
		if !ok {
			continue
		}

		advised, err := requestAdvisor.AdviseRequest(ctx, request, advCtx)
		if err != nil {
			return AdvisedRequest{}, fmt.Errorf("advisor %q: advise request: %w", advisor.Name(), err)
		}
		request = advised
	}

	return request, nil
}

// runResponseChain folds the response through every [ResponseAdvisor] in
// the same registration order as the request leg. An advisor returning a
// nil response without an error is itself an error.
func runResponseChain(ctx context.Context, advisors []Advisor, response *ai.ChatResponse, advCtx *AdvisorContext) (*ai.ChatResponse, error) {
	for _, advisor := range advisors {
		responseAdvisor, ok := advisor.(ResponseAdvisor)
		if !ok {
			continue
		}

		advised, err := responseAdvisor.AdviseResponse(ctx, response, advCtx)
		if err != nil {
			return nil, fmt.Errorf("advisor %q: advise response: %w", advisor.Name(), err)
		}
		if advised == nil {
			return nil, fmt.Errorf("advisor %q returned a nil response", advisor.Name())
		}
		response = advised
	}

	return response, nil
}

// runStreamChain composes stream decorations in registration order, so the
// first advisor's wrapper sits closest to the provider stream and the last
// advisor observes everything the earlier ones emit. No events are pulled
// here; the composed stream is returned un-drained.
func runStreamChain(ctx context.Context, advisors []Advisor, stream *ai.ChatStream, advCtx *AdvisorContext) *ai.ChatStream {
	for _, advisor := range advisors {
		streamAdvisor, ok := advisor.(StreamAdvisor)
		if !ok {
			continue
		}

		if decorated := streamAdvisor.AdviseStream(ctx, stream, advCtx); decorated != nil {
			stream = decorated
		}
	}

	return stream
}
