// Package redismemory provides a Redis-backed implementation of the
// [memory.Store] interface. Each conversation lives in its own Redis list
// under a configurable key prefix, which makes histories fast to append,
// cheap to read in full, and easy to expire via [WithTTL].
//
// The main entry point is [New], which accepts any redis.Cmdable (typically
// a *redis.Client created with redis.NewClient).
package redismemory
