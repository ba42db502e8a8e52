package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/advigo/advigo/core/chatclient"
	"github.com/advigo/advigo/providers/ai"
	"github.com/advigo/advigo/providers/memory"
)

// ParamConversationID is the advisor param that selects the conversation
// whose history PromptMemory loads and records, overriding the prompt's
// conversation id for a single call.
const ParamConversationID = "chat_memory_conversation_id"

// Context keys PromptMemory uses to hand values from its request leg to
// its response and stream legs.
const (
	ctxKeyConversationID = "promptmemory.conversation_id"
	ctxKeyUserText       = "promptmemory.user_text"
)

// memoryTemplate is appended to the system text on the request leg. The
// single %s receives the rendered ROLE:content history lines.
const memoryTemplate = `

Use the conversation memory from the MEMORY section to provide accurate answers.

---------------------
MEMORY:
%s
---------------------
`

// PromptMemory gives a stateless chat model conversation memory. On the
// request leg it loads the conversation history from a [memory.Store] and
// splices it into the system text; after the model answers it records the
// user/assistant exchange back into the store.
//
// The conversation id is resolved per call: the [ParamConversationID]
// advisor param wins, then the prompt's conversation id, then the
// configured default.
//
// Store failures are deliberately soft. A failed read logs a warning and
// the call proceeds without history; a failed write logs a warning and the
// response stands. Memory degrades the experience when lost, but it never
// takes the conversation down with it.
type PromptMemory struct {
	store               memory.Store
	defaultConversation string
	maxMessages         int
	logger              *slog.Logger
}

// MemoryOption configures a [PromptMemory].
type MemoryOption func(*PromptMemory)

// WithDefaultConversation sets the conversation id used when neither the
// advisor param nor the prompt supplies one.
func WithDefaultConversation(conversationID string) MemoryOption {
	return func(a *PromptMemory) {
		if conversationID != "" {
			a.defaultConversation = conversationID
		}
	}
}

// WithMaxMessages caps how many of the most recent history messages are
// spliced into the system text. Zero or negative means no cap.
func WithMaxMessages(maxMessages int) MemoryOption {
	return func(a *PromptMemory) {
		a.maxMessages = maxMessages
	}
}

// WithMemoryLogger sets the logger used for store failure warnings.
func WithMemoryLogger(logger *slog.Logger) MemoryOption {
	return func(a *PromptMemory) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewPromptMemory creates the advisor around the given conversation store.
func NewPromptMemory(store memory.Store, opts ...MemoryOption) *PromptMemory {
	advisor := &PromptMemory{
		store:               store,
		defaultConversation: memory.DefaultConversationID,
		logger:              slog.Default(),
	}
	for _, opt := range opts {
		opt(advisor)
	}
	return advisor
}

// Name implements chatclient.Advisor.
func (a *PromptMemory) Name() string { return "prompt-memory" }

// AdviseRequest loads the conversation history and splices it into the
// system text. A failed read degrades to an empty history.
func (a *PromptMemory) AdviseRequest(ctx context.Context, request chatclient.AdvisedRequest, advCtx *chatclient.AdvisorContext) (chatclient.AdvisedRequest, error) {
	conversationID := a.resolveConversation(request)

	history, err := a.store.Messages(ctx, conversationID)
	if err != nil {
		a.logger.WarnContext(ctx, "conversation memory read failed, continuing without history",
			slog.String("conversation_id", conversationID),
			slog.String("error", err.Error()),
		)
		history = nil
	}

	if a.maxMessages > 0 && len(history) > a.maxMessages {
		history = history[len(history)-a.maxMessages:]
	}

	advCtx.Set(ctxKeyConversationID, conversationID)
	advCtx.Set(ctxKeyUserText, request.UserText)

	return request.WithSystemText(request.SystemText + renderMemory(history)), nil
}

// AdviseResponse records the completed exchange. A failed write logs a
// warning; the response is returned unchanged either way.
func (a *PromptMemory) AdviseResponse(ctx context.Context, response *ai.ChatResponse, advCtx *chatclient.AdvisorContext) (*ai.ChatResponse, error) {
	a.appendExchange(ctx,
		advCtx.GetString(ctxKeyConversationID),
		advCtx.GetString(ctxKeyUserText),
		response.Content,
	)
	return response, nil
}

// AdviseStream decorates the stream to accumulate content deltas and
// record the exchange once the stream completes. Abandoned or failed
// streams never record; re-draining a completed stream records only once.
func (a *PromptMemory) AdviseStream(ctx context.Context, stream *ai.ChatStream, advCtx *chatclient.AdvisorContext) *ai.ChatStream {
	conversationID := advCtx.GetString(ctxKeyConversationID)
	userText := advCtx.GetString(ctxKeyUserText)

	var recorded sync.Once
	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		var content strings.Builder

		for event, err := range stream.Iter() {
			if err != nil {
				yield(event, err)
				return
			}

			if event.Type == ai.StreamEventContent {
				content.WriteString(event.Content)
			}

			done := event.Type == ai.StreamEventDone
			if done {
				// Record before handing the final event over, so a consumer
				// that stops ranging at the done event still gets the write.
				recorded.Do(func() {
					a.appendExchange(ctx, conversationID, userText, content.String())
				})
			}

			if !yield(event, nil) {
				return
			}

			if done {
				return
			}
		}

		// Upstream ended without a done event; the content is still complete.
		recorded.Do(func() {
			a.appendExchange(ctx, conversationID, userText, content.String())
		})
	}

	return ai.NewChatStream(iteratorFunc)
}

// resolveConversation picks the conversation id for one call: advisor
// param, then the prompt's conversation id, then the configured default.
func (a *PromptMemory) resolveConversation(request chatclient.AdvisedRequest) string {
	if value, ok := request.Param(ParamConversationID); ok {
		if conversationID, ok := value.(string); ok && conversationID != "" {
			return conversationID
		}
	}
	if request.ConversationID != "" {
		return request.ConversationID
	}
	return a.defaultConversation
}

func (a *PromptMemory) appendExchange(ctx context.Context, conversationID, userText, assistantText string) {
	messages := []ai.Message{
		{Role: ai.RoleUser, Content: userText},
		{Role: ai.RoleAssistant, Content: assistantText},
	}
	if err := a.store.Append(ctx, conversationID, messages); err != nil {
		a.logger.WarnContext(ctx, "conversation memory write failed, response is unaffected",
			slog.String("conversation_id", conversationID),
			slog.String("error", err.Error()),
		)
	}
}

// renderMemory renders history as ROLE:content lines inside the memory
// template.
func renderMemory(history []ai.Message) string {
	lines := make([]string, 0, len(history))
	for _, message := range history {
		lines = append(lines, strings.ToUpper(string(message.Role))+":"+message.Content)
	}
	return fmt.Sprintf(memoryTemplate, strings.Join(lines, "\n"))
}
