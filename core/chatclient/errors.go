package chatclient

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the sentinel for invalid client or prompt
// configuration detected before any model call. Every configuration
// failure wraps it, so callers can branch with errors.Is regardless of
// which specific check failed.
var ErrConfiguration = errors.New("advigo: invalid client configuration")

// ErrNilProvider is returned by [Builder.Build] when no chat model
// provider was supplied.
var ErrNilProvider = fmt.Errorf("%w: provider must not be nil", ErrConfiguration)

// ErrEmptyUserText is returned by [PromptSpec.Call] and
// [PromptSpec.Stream] when the prompt carries no user text.
var ErrEmptyUserText = fmt.Errorf("%w: user text must not be empty", ErrConfiguration)
