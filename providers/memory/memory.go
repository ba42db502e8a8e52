package memory

import (
	"context"

	"github.com/advigo/advigo/providers/ai"
)

// DefaultConversationID is the conversation identifier used when the caller
// does not supply one. All turns issued without an explicit id share this
// single history.
const DefaultConversationID = "default"

// Store is the interface for conversation history backends. Implementations
// persist [ai.Message] values grouped by conversation id and return them in
// insertion order.
//
// All methods take the conversation id explicitly so that a single Store can
// serve many concurrent conversations. Implementations must be safe for
// concurrent use.
type Store interface {
	// Messages returns every message recorded for the conversation, oldest
	// first. A conversation with no history yields an empty slice, not an
	// error.
	Messages(ctx context.Context, conversationID string) ([]ai.Message, error)

	// Append records the given messages at the end of the conversation,
	// preserving their order.
	Append(ctx context.Context, conversationID string, messages []ai.Message) error

	// Clear removes all messages recorded for the conversation.
	Clear(ctx context.Context, conversationID string) error
}
