package chatclient

import "slices"

// KeyInvocationID is the [AdvisorContext] key under which the client
// stores the unique id generated for each Call or Stream invocation.
const KeyInvocationID = "invocation_id"

// AdvisorContext is the mutable state shared by the advisors of a single
// Call or Stream invocation. The client seeds it with the caller's
// advisor params plus a fresh [KeyInvocationID] before the request chain
// runs; advisors use it to hand values from their request leg to their
// response or stream leg.
//
// A context lives for exactly one invocation and is never reused. It is
// not safe for concurrent use: advisors run sequentially within an
// invocation, so no locking is needed.
type AdvisorContext struct {
	values map[string]any
}

// NewAdvisorContext returns an empty context.
func NewAdvisorContext() *AdvisorContext {
	return &AdvisorContext{values: map[string]any{}}
}

// Set stores value under key, replacing any previous value.
func (c *AdvisorContext) Set(key string, value any) {
	c.values[key] = value
}

// Get returns the value stored under key and whether it was present.
func (c *AdvisorContext) Get(key string) (any, bool) {
	value, ok := c.values[key]
	return value, ok
}

// GetString returns the string stored under key, or "" when the key is
// absent or holds a non-string value.
func (c *AdvisorContext) GetString(key string) string {
	value, _ := c.values[key].(string)
	return value
}

// Has reports whether key is present.
func (c *AdvisorContext) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Keys returns every present key in sorted order.
func (c *AdvisorContext) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for key := range c.values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of stored entries.
func (c *AdvisorContext) Len() int {
	return len(c.values)
}
