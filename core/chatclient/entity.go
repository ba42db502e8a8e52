package chatclient

import (
	"errors"

	"github.com/advigo/advigo/core/parse"
)

// Entity parses the content of a completed call into T using core/parse,
// which tolerates the usual model output quirks (markdown fences,
// surrounding prose, slightly malformed JSON). It is pure post-processing:
// the advisor chains have already run and are not consulted again.
//
// Example usage:
//
//	response, err := client.Prompt().
//	    User("List three colors as a JSON array of strings").
//	    Call(ctx)
//	if err != nil {
//	    return err
//	}
//	colors, err := chatclient.Entity[[]string](response)
func Entity[T any](response *CallResponse) (T, error) {
	if response == nil || response.response == nil {
		var zero T
		return zero, errors.New("chatclient: nil call response")
	}
	return parse.As[T](response.response.Content)
}
