// Package ai defines the shared, provider-agnostic chat model types and
// interfaces used across advigo. Concrete model integrations are responsible
// for mapping these types to their own wire format, keeping the rest of the
// codebase decoupled from provider-specific details.
//
// The two central interfaces are [Provider] for synchronous chat completions
// and [StreamProvider] for streaming responses. Request data flows through
// [ChatRequest] and responses are returned as [ChatResponse]. For real-time
// streaming, [ChatStream] and [StreamEvent] carry incremental deltas to the
// caller.
package ai
