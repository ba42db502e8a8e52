package webloader

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/advigo/advigo/internal/utils"
	"github.com/advigo/advigo/providers/vectorstore"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is the default User-Agent header value.
	DefaultUserAgent = "advigo-webloader/1.0"
	// MaxBodySize is the maximum response body size (10MB).
	MaxBodySize = 10 * 1024 * 1024
	// DialTimeout is the maximum time to wait for a TCP connection.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the maximum time to wait for TLS handshake.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is the maximum time to wait for response headers.
	ResponseHeaderTimeout = 10 * time.Second
	// IdleConnTimeout is the maximum time an idle connection can be reused.
	IdleConnTimeout = 90 * time.Second
)

// Loader fetches web pages and converts their HTML content to Markdown
// documents ready for indexing into a [vectorstore.Store].
//
// Partial URLs (e.g. "example.com") are normalised by prepending "https://".
// Up to ten redirects are followed; the final URL after all redirects becomes
// the document ID. Response bodies are capped at [MaxBodySize].
type Loader struct {
	client    *http.Client
	userAgent string
}

// Option configures a [Loader].
type Option func(*Loader)

// WithHTTPClient sets the HTTP client used for page fetches. The client
// should enforce its own timeouts; the default client uses [DefaultTimeout].
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every fetch.
func WithUserAgent(agent string) Option {
	return func(l *Loader) {
		if agent != "" {
			l.userAgent = agent
		}
	}
}

// New creates a page loader with a fully timed-out HTTP client so slow or
// unresponsive servers cannot block indexing pipelines indefinitely.
func New(opts ...Option) *Loader {
	loader := &Loader{
		client:    newDefaultClient(),
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(loader)
	}
	return loader
}

func newDefaultClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			IdleConnTimeout:       IdleConnTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			ForceAttemptHTTP2:     true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects (>10)")
			}
			return nil
		},
	}
}

// Load fetches the web page at url and returns it as a document: the final
// URL after redirects becomes the ID, the Markdown conversion of the page
// the content, and the source URL and content type land in the metadata.
//
// Load returns an error when the URL is empty, the HTTP status code is not
// 200 OK, the body exceeds [MaxBodySize], HTML-to-Markdown conversion fails,
// or the context is cancelled or times out.
func (l *Loader) Load(ctx context.Context, url string) (vectorstore.Document, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return vectorstore.Document{}, fmt.Errorf("webloader: URL cannot be empty")
	}

	// Add https:// prefix if missing
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return vectorstore.Document{}, fmt.Errorf("webloader: create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return vectorstore.Document{}, fmt.Errorf("webloader: request timeout or canceled: %w", err)
		}
		return vectorstore.Document{}, fmt.Errorf("webloader: fetch URL: %w", err)
	}
	defer utils.CloseWithLog(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return vectorstore.Document{}, fmt.Errorf("webloader: unexpected status code: %d %s", resp.StatusCode, resp.Status)
	}

	htmlBytes, err := readBody(ctx, resp.Body)
	if err != nil {
		return vectorstore.Document{}, err
	}

	markdown, err := htmltomarkdown.ConvertString(string(htmlBytes))
	if err != nil {
		return vectorstore.Document{}, fmt.Errorf("webloader: convert HTML to Markdown: %w", err)
	}

	// Final URL after redirects
	finalURL := resp.Request.URL.String()

	return vectorstore.Document{
		ID:      finalURL,
		Content: markdown,
		Metadata: map[string]any{
			"source":       finalURL,
			"content_type": resp.Header.Get("Content-Type"),
		},
	}, nil
}

// readBody reads the response body up to [MaxBodySize]. Reading happens in a
// goroutine so context cancellation is honoured even during slow reads.
func readBody(ctx context.Context, body io.Reader) ([]byte, error) {
	limitedReader := io.LimitReader(body, MaxBodySize)

	type readResult struct {
		data []byte
		err  error
	}

	readChan := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(limitedReader)
		readChan <- readResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("webloader: timeout while reading response body: %w", ctx.Err())
	case result := <-readChan:
		if result.err != nil {
			return nil, fmt.Errorf("webloader: read response body: %w", result.err)
		}
		if len(result.data) == MaxBodySize {
			return nil, fmt.Errorf("webloader: response body exceeds maximum size of %d bytes", MaxBodySize)
		}
		return result.data, nil
	}
}
