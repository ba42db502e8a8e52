// Package inmemory provides a concurrency-safe, map-backed implementation of
// the [memory.Store] interface for keeping conversation history in process
// memory. It is designed for single-process use cases where persistence
// across restarts is not required.
// The main entry point is [New], which returns a ready-to-use [MapStore].
package inmemory
