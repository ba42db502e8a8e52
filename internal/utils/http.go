package utils

import (
	"io"
	"log/slog"
)

// CloseWithLog closes the given closer and logs a warning when the close
// fails. Meant for deferred response body closes, where the close error
// cannot be returned without overriding the primary error.
func CloseWithLog(closer io.Closer) {
	if err := closer.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
