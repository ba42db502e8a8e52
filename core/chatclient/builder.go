package chatclient

import (
	"log/slog"
	"slices"

	"github.com/advigo/advigo/providers/ai"
)

// Builder assembles an immutable [Client]. Defaults configured here apply
// to every prompt and can be overridden per call through [PromptSpec].
type Builder struct {
	provider        ai.Provider
	defaultSystem   string
	defaultModel    string
	defaultOptions  *ai.GenerationConfig
	defaultAdvisors []Advisor
	logger          *slog.Logger
}

// NewBuilder starts a builder around the given chat model provider.
func NewBuilder(provider ai.Provider) *Builder {
	return &Builder{provider: provider}
}

// DefaultSystem sets the system text used when a prompt does not supply
// its own.
func (b *Builder) DefaultSystem(systemText string) *Builder {
	b.defaultSystem = systemText
	return b
}

// DefaultModel sets the model used when a prompt does not supply its own.
func (b *Builder) DefaultModel(model string) *Builder {
	b.defaultModel = model
	return b
}

// DefaultOptions sets the generation options used when a prompt does not
// supply its own.
func (b *Builder) DefaultOptions(options *ai.GenerationConfig) *Builder {
	b.defaultOptions = options
	return b
}

// DefaultAdvisors registers advisors that run on every invocation, before
// any per-call advisors, in the order given here. Repeated calls append.
func (b *Builder) DefaultAdvisors(advisors ...Advisor) *Builder {
	b.defaultAdvisors = append(b.defaultAdvisors, advisors...)
	return b
}

// Logger sets the logger the client uses. Defaults to slog.Default().
func (b *Builder) Logger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and returns the client. A nil
// provider fails with [ErrNilProvider], which wraps [ErrConfiguration].
func (b *Builder) Build() (*Client, error) {
	if b.provider == nil {
		return nil, ErrNilProvider
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		provider:        b.provider,
		defaultSystem:   b.defaultSystem,
		defaultModel:    b.defaultModel,
		defaultOptions:  b.defaultOptions,
		defaultAdvisors: slices.Clone(b.defaultAdvisors),
		logger:          logger,
	}, nil
}
