package advisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/advigo/advigo/core/chatclient"
	"github.com/advigo/advigo/internal/utils"
	"github.com/advigo/advigo/providers/ai"
)

// SimpleLogger traces every advised call with structured slog entries:
// the outgoing request on the request leg, the completed response on the
// response leg, and for streaming calls a completion or failure entry once
// the consumer drains the stream.
//
// WARNING: the request entry includes the (truncated) system and user
// texts, which may contain sensitive user data. Intended for development
// and debugging rather than production audit trails.
type SimpleLogger struct {
	logger      *slog.Logger
	truncateLen int
}

// LoggerOption configures a [SimpleLogger].
type LoggerOption func(*SimpleLogger)

// WithTruncateLength caps how many characters of the system and user
// texts are included per log entry.
func WithTruncateLength(length int) LoggerOption {
	return func(a *SimpleLogger) {
		if length > 0 {
			a.truncateLen = length
		}
	}
}

// NewSimpleLogger creates the advisor. A nil logger falls back to
// slog.Default().
func NewSimpleLogger(logger *slog.Logger, opts ...LoggerOption) *SimpleLogger {
	if logger == nil {
		logger = slog.Default()
	}
	advisor := &SimpleLogger{
		logger:      logger,
		truncateLen: utils.DefaultMaxStringLength,
	}
	for _, opt := range opts {
		opt(advisor)
	}
	return advisor
}

// Name implements chatclient.Advisor.
func (a *SimpleLogger) Name() string { return "simple-logger" }

// AdviseRequest logs the outgoing request and passes it through unchanged.
func (a *SimpleLogger) AdviseRequest(ctx context.Context, request chatclient.AdvisedRequest, advCtx *chatclient.AdvisorContext) (chatclient.AdvisedRequest, error) {
	a.logger.InfoContext(ctx, "chat call",
		slog.String("invocation_id", advCtx.GetString(chatclient.KeyInvocationID)),
		slog.String("conversation_id", request.ConversationID),
		slog.String("model", request.Model),
		slog.String("system_text", utils.TruncateString(request.SystemText, a.truncateLen)),
		slog.String("user_text", utils.TruncateString(request.UserText, a.truncateLen)),
	)
	return request, nil
}

// AdviseResponse logs the completed response and passes it through
// unchanged.
func (a *SimpleLogger) AdviseResponse(ctx context.Context, response *ai.ChatResponse, advCtx *chatclient.AdvisorContext) (*ai.ChatResponse, error) {
	attrs := []any{
		slog.String("invocation_id", advCtx.GetString(chatclient.KeyInvocationID)),
		slog.Int("content_length", len(response.Content)),
		slog.String("finish_reason", response.FinishReason),
	}

	if response.Usage != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", response.Usage.PromptTokens),
			slog.Int("completion_tokens", response.Usage.CompletionTokens),
			slog.Int("total_tokens", response.Usage.TotalTokens),
		)
	}

	a.logger.InfoContext(ctx, "chat call completed", attrs...)
	return response, nil
}

// AdviseStream wraps the stream so the terminal entry is emitted when the
// consumer finishes: completion on a full drain, abandonment on an early
// break, failure on a mid-stream error.
func (a *SimpleLogger) AdviseStream(ctx context.Context, stream *ai.ChatStream, advCtx *chatclient.AdvisorContext) *ai.ChatStream {
	invocationID := advCtx.GetString(chatclient.KeyInvocationID)
	start := time.Now()

	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		var contentLength int
		var finishReason string
		var usage *ai.Usage

		for event, err := range stream.Iter() {
			if err != nil {
				a.logger.ErrorContext(ctx, "chat stream failed",
					slog.String("invocation_id", invocationID),
					slog.Duration("duration", time.Since(start)),
					slog.String("error", err.Error()),
				)
				yield(event, err)
				return
			}

			if event.Type == ai.StreamEventContent {
				contentLength += len(event.Content)
			}

			if event.Type == ai.StreamEventUsage && event.Usage != nil {
				usage = event.Usage
			}

			if event.Type == ai.StreamEventDone {
				finishReason = event.FinishReason
			}

			if !yield(event, nil) {
				a.logger.InfoContext(ctx, "chat stream abandoned",
					slog.String("invocation_id", invocationID),
					slog.Duration("duration", time.Since(start)),
				)
				return
			}

			if event.Type == ai.StreamEventDone {
				break
			}
		}

		attrs := []any{
			slog.String("invocation_id", invocationID),
			slog.Duration("duration", time.Since(start)),
			slog.Int("content_length", contentLength),
		}

		if finishReason != "" {
			attrs = append(attrs, slog.String("finish_reason", finishReason))
		}

		if usage != nil {
			attrs = append(attrs,
				slog.Int("prompt_tokens", usage.PromptTokens),
				slog.Int("completion_tokens", usage.CompletionTokens),
				slog.Int("total_tokens", usage.TotalTokens),
			)
		}

		a.logger.InfoContext(ctx, "chat stream completed", attrs...)
	}

	return ai.NewChatStream(iteratorFunc)
}
