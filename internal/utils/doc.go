// Package utils provides shared low-level helpers used throughout the advigo
// internals: string truncation for log-safe output of potentially large
// prompt and completion texts, JSON rendering that never panics, and HTTP
// body cleanup.
//
// Key entry points: [TruncateString] and [TruncateStringDefault] for bounded
// log output, [JSONToString] for compact or indented JSON dumps, and
// [CloseWithLog] for deferred response body closes.
package utils
