package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/advigo/advigo/internal/utils"
	"github.com/advigo/advigo/providers/vectorstore"
)

const (
	defaultBaseURL     = "https://api.tavily.com"
	defaultSearchDepth = "basic"
	envAPIKey          = "TAVILY_API_KEY"

	// maxResults is the hard cap the Tavily Search API enforces per request.
	maxResults = 20

	// maxBodySize caps response body reads to prevent unbounded memory allocation.
	maxBodySize = 10 * 1024 * 1024
)

// Store retrieves documents through the Tavily Search API, turning live web
// search results into ranked [vectorstore.Document] values. It implements
// [vectorstore.Store] so retrieval-augmented pipelines can swap between a
// vector database and web search without changing callers.
type Store struct {
	apiKey      string
	baseURL     string
	searchDepth string
	client      *http.Client
}

// Option configures a [Store].
type Option func(*Store)

// WithAPIKey sets the Tavily API key, overriding the TAVILY_API_KEY
// environment variable.
func WithAPIKey(key string) Option {
	return func(s *Store) {
		s.apiKey = key
	}
}

// WithBaseURL overrides the Tavily API endpoint. Useful for testing against
// a local server or routing through a proxy.
func WithBaseURL(url string) Option {
	return func(s *Store) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		if client != nil {
			s.client = client
		}
	}
}

// WithSearchDepth sets the search depth: "basic" (faster, 1 credit) or
// "advanced" (more thorough, 2 credits). Defaults to "basic".
func WithSearchDepth(depth string) Option {
	return func(s *Store) {
		s.searchDepth = depth
	}
}

// New creates a Tavily-backed document store. The API key is taken from the
// TAVILY_API_KEY environment variable unless [WithAPIKey] is given; a missing
// key surfaces as an error on the first search, not here.
func New(opts ...Option) *Store {
	store := &Store{
		baseURL:     defaultBaseURL,
		searchDepth: defaultSearchDepth,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.apiKey == "" {
		store.apiKey = os.Getenv(envAPIKey)
	}
	return store
}

// searchResponse mirrors the Tavily Search API response payload.
type searchResponse struct {
	Query        string         `json:"query"`
	Results      []searchResult `json:"results"`
	ResponseTime float64        `json:"response_time"`
}

// searchResult is a single ranked hit from the Tavily Search API.
type searchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SimilaritySearch runs the query through the Tavily Search API and maps the
// ranked results to documents: the result URL becomes the document ID, the
// content snippet the document content, and the API relevance score the
// document score. TopK is capped at the API maximum of 20; results below
// MinScore are dropped.
func (s *Store) SimilaritySearch(ctx context.Context, request vectorstore.SearchRequest) ([]vectorstore.Document, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("tavily: %s environment variable is not set and no API key was configured", envAPIKey)
	}
	if strings.TrimSpace(request.Query) == "" {
		return nil, errors.New("tavily: search query is empty")
	}

	topK := request.TopK
	if topK <= 0 {
		topK = vectorstore.DefaultTopK
	}
	if topK > maxResults {
		topK = maxResults
	}

	apiResponse, err := s.fetchSearch(ctx, request.Query, topK)
	if err != nil {
		return nil, err
	}

	documents := make([]vectorstore.Document, 0, len(apiResponse.Results))
	for _, result := range apiResponse.Results {
		if request.MinScore > 0 && result.Score < request.MinScore {
			continue
		}
		documents = append(documents, vectorstore.Document{
			ID:      result.URL,
			Content: result.Content,
			Score:   result.Score,
			Metadata: map[string]any{
				"title": result.Title,
				"url":   result.URL,
			},
		})
	}

	return documents, nil
}

// fetchSearch performs the API call to Tavily Search.
func (s *Store) fetchSearch(ctx context.Context, query string, topK int) (*searchResponse, error) {
	reqBody := map[string]any{
		"api_key":      s.apiKey,
		"query":        query,
		"search_depth": s.searchDepth,
		"max_results":  topK,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("tavily: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/search", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("tavily: create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: send request: %w", err)
	}
	defer utils.CloseWithLog(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("tavily: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if errMsg := parseAPIError(body); errMsg != "" {
			return nil, fmt.Errorf("tavily: API error (status %d): %s", resp.StatusCode, errMsg)
		}
		return nil, fmt.Errorf("tavily: unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var apiResponse searchResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("tavily: parse response: %w", err)
	}

	return &apiResponse, nil
}

// parseAPIError extracts the error message from a Tavily error body. The API
// returns "detail" either as an object with an "error" field or as a plain
// string. Returns "" when no message can be extracted.
func parseAPIError(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var structured struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(envelope.Detail, &structured); err == nil && structured.Error != "" {
		return structured.Error
	}

	var plain string
	if err := json.Unmarshal(envelope.Detail, &plain); err == nil {
		return plain
	}

	return ""
}
