package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/advigo/advigo/providers/vectorstore"
)

func TestNew_Defaults(t *testing.T) {
	originalKey := os.Getenv("TAVILY_API_KEY")
	os.Unsetenv("TAVILY_API_KEY")
	defer func() {
		if originalKey != "" {
			os.Setenv("TAVILY_API_KEY", originalKey)
		}
	}()

	store := New()

	if store.baseURL != defaultBaseURL {
		t.Errorf("expected base URL %q, got %q", defaultBaseURL, store.baseURL)
	}
	if store.searchDepth != defaultSearchDepth {
		t.Errorf("expected search depth %q, got %q", defaultSearchDepth, store.searchDepth)
	}
	if store.client == nil {
		t.Fatal("expected a default HTTP client")
	}
	if store.client.Timeout <= 0 {
		t.Error("expected default HTTP client to have a timeout")
	}
	if store.apiKey != "" {
		t.Errorf("expected empty API key, got %q", store.apiKey)
	}
}

func TestNew_ReadsAPIKeyFromEnv(t *testing.T) {
	originalKey := os.Getenv("TAVILY_API_KEY")
	os.Setenv("TAVILY_API_KEY", "env-key")
	defer func() {
		if originalKey != "" {
			os.Setenv("TAVILY_API_KEY", originalKey)
		} else {
			os.Unsetenv("TAVILY_API_KEY")
		}
	}()

	store := New()

	if store.apiKey != "env-key" {
		t.Errorf("expected API key from environment, got %q", store.apiKey)
	}

	override := New(WithAPIKey("explicit-key"))
	if override.apiKey != "explicit-key" {
		t.Errorf("expected explicit API key to win over environment, got %q", override.apiKey)
	}
}

func TestNew_Options(t *testing.T) {
	custom := &http.Client{}
	store := New(
		WithAPIKey("test-key"),
		WithBaseURL("http://localhost:8080/"),
		WithSearchDepth("advanced"),
		WithHTTPClient(custom),
	)

	if store.apiKey != "test-key" {
		t.Errorf("expected API key 'test-key', got %q", store.apiKey)
	}
	if store.baseURL != "http://localhost:8080" {
		t.Errorf("expected trailing slash to be trimmed, got %q", store.baseURL)
	}
	if store.searchDepth != "advanced" {
		t.Errorf("expected search depth 'advanced', got %q", store.searchDepth)
	}
	if store.client != custom {
		t.Error("expected custom HTTP client to be used")
	}

	ignoresNil := New(WithAPIKey("test-key"), WithHTTPClient(nil))
	if ignoresNil.client == nil {
		t.Error("expected nil HTTP client option to keep the default")
	}
}

func TestSimilaritySearch_MissingAPIKey(t *testing.T) {
	originalKey := os.Getenv("TAVILY_API_KEY")
	os.Unsetenv("TAVILY_API_KEY")
	defer func() {
		if originalKey != "" {
			os.Setenv("TAVILY_API_KEY", originalKey)
		}
	}()

	store := New()

	_, err := store.SimilaritySearch(context.Background(), vectorstore.SearchRequest{Query: "test query"})
	if err == nil {
		t.Fatal("expected error when API key is missing")
	}
	if !strings.Contains(err.Error(), "TAVILY_API_KEY") {
		t.Errorf("expected error message to mention TAVILY_API_KEY, got: %s", err.Error())
	}
}

func TestSimilaritySearch_EmptyQuery(t *testing.T) {
	store := New(WithAPIKey("test-key"))

	_, err := store.SimilaritySearch(context.Background(), vectorstore.SearchRequest{Query: "   "})
	if err == nil {
		t.Fatal("expected error for blank query")
	}
	if !strings.Contains(err.Error(), "query is empty") {
		t.Errorf("expected error about empty query, got: %s", err.Error())
	}
}

// TestSimilaritySearch_MapsResultsToDocuments verifies the request shape sent
// to the API and that ranked results come back as documents with the URL as
// ID and the relevance score preserved.
func TestSimilaritySearch_MapsResultsToDocuments(t *testing.T) {
	mockResponse := searchResponse{
		Query: "test query",
		Results: []searchResult{
			{
				Title:   "Test Result 1",
				URL:     "https://example.com/1",
				Content: "This is the content of test result 1",
				Score:   0.95,
			},
			{
				Title:   "Test Result 2",
				URL:     "https://example.com/2",
				Content: "This is the content of test result 2",
				Score:   0.90,
			},
		},
		ResponseTime: 0.5,
	}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != "POST" {
			t.Errorf("expected POST request, got %s", request.Method)
		}
		if request.URL.Path != "/search" {
			t.Errorf("expected /search path, got %s", request.URL.Path)
		}
		if request.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", request.Header.Get("Content-Type"))
		}
		if request.Header.Get("Accept") != "application/json" {
			t.Errorf("expected Accept application/json, got %s", request.Header.Get("Accept"))
		}

		var reqBody map[string]interface{}
		if err := json.NewDecoder(request.Body).Decode(&reqBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if reqBody["api_key"] != "test-key" {
			t.Errorf("expected api_key 'test-key', got %v", reqBody["api_key"])
		}
		if reqBody["query"] != "test query" {
			t.Errorf("expected query 'test query', got %v", reqBody["query"])
		}
		if reqBody["search_depth"] != "basic" {
			t.Errorf("expected search_depth 'basic', got %v", reqBody["search_depth"])
		}

		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(mockResponse) //nolint:errcheck
	}))
	defer server.Close()

	store := New(WithAPIKey("test-key"), WithBaseURL(server.URL))

	documents, err := store.SimilaritySearch(context.Background(), vectorstore.SearchRequest{Query: "test query"})
	if err != nil {
		t.Fatalf("SimilaritySearch failed: %v", err)
	}

	if len(documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(documents))
	}
	if documents[0].ID != "https://example.com/1" {
		t.Errorf("expected first document ID to be the result URL, got %q", documents[0].ID)
	}
	if documents[0].Content != "This is the content of test result 1" {
		t.Errorf("unexpected first document content: %q", documents[0].Content)
	}
	if documents[0].Score != 0.95 {
		t.Errorf("expected first document score 0.95, got %f", documents[0].Score)
	}
	if documents[0].Metadata["title"] != "Test Result 1" {
		t.Errorf("expected title metadata, got %v", documents[0].Metadata["title"])
	}
	if documents[0].Metadata["url"] != "https://example.com/1" {
		t.Errorf("expected url metadata, got %v", documents[0].Metadata["url"])
	}
	if documents[1].Score != 0.90 {
		t.Errorf("expected second document score 0.90, got %f", documents[1].Score)
	}
}

// TestSimilaritySearch_TopKDefaultsAndCap verifies that max_results falls
// back to the package default and never exceeds the API maximum of 20.
func TestSimilaritySearch_TopKDefaultsAndCap(t *testing.T) {
	tests := []struct {
		name     string
		topK     int
		expected float64
	}{
		{name: "zero uses default", topK: 0, expected: float64(vectorstore.DefaultTopK)},
		{name: "explicit value passes through", topK: 7, expected: 7},
		{name: "capped at API maximum", topK: 50, expected: 20},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			var gotMaxResults float64
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				var reqBody map[string]interface{}
				if err := json.NewDecoder(request.Body).Decode(&reqBody); err != nil {
					t.Errorf("failed to decode request body: %v", err)
				}
				gotMaxResults, _ = reqBody["max_results"].(float64)

				writer.Header().Set("Content-Type", "application/json")
				json.NewEncoder(writer).Encode(searchResponse{}) //nolint:errcheck
			}))
			defer server.Close()

			store := New(WithAPIKey("test-key"), WithBaseURL(server.URL))

			_, err := store.SimilaritySearch(context.Background(), vectorstore.SearchRequest{Query: "test", TopK: testCase.topK})
			if err != nil {
				t.Fatalf("SimilaritySearch failed: %v", err)
			}
			if gotMaxResults != testCase.expected {
				t.Errorf("expected max_results %v, got %v", testCase.expected, gotMaxResults)
			}
		})
	}
}

func TestSimilaritySearch_MinScoreFilters(t *testing.T) {
	mockResponse := searchResponse{
		Results: []searchResult{
			{Title: "High", URL: "https://example.com/high", Content: "high", Score: 0.9},
			{Title: "Low", URL: "https://example.com/low", Content: "low", Score: 0.3},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(mockResponse) //nolint:errcheck
	}))
	defer server.Close()

	store := New(WithAPIKey("test-key"), WithBaseURL(server.URL))

	documents, err := store.SimilaritySearch(context.Background(), vectorstore.SearchRequest{Query: "test", MinScore: 0.5})
	if err != nil {
		t.Fatalf("SimilaritySearch failed: %v", err)
	}

	if len(documents) != 1 {
		t.Fatalf("expected 1 document after filtering, got %d", len(documents))
	}
	if documents[0].ID != "https://example.com/high" {
		t.Errorf("expected the high-score document to survive, got %q", documents[0].ID)
	}
}

func TestSimilaritySearch_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(searchResponse{Query: "test"}) //nolint:errcheck
	}))
	defer server.Close()

	store := New(WithAPIKey("test-key"), WithBaseURL(server.URL))

	documents, err := store.SimilaritySearch(context.Background(), vectorstore.SearchRequest{Query: "test"})
	if err != nil {
		t.Fatalf("SimilaritySearch failed: %v", err)
	}

	if documents == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(documents) != 0 {
		t.Errorf("expected no documents, got %d", len(documents))
	}
}

// TestSimilaritySearch_APIError verifies that structured error responses are
// surfaced with the API's message.
func TestSimilaritySearch_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(writer).Encode(map[string]interface{}{
			"detail": map[string]string{"error": "invalid api key"},
		}) //nolint:errcheck
	}))
	defer server.Close()

	store := New(WithAPIKey("bad-key"), WithBaseURL(server.URL))

	_, err := store.SimilaritySearch(context.Background(), vectorstore.SearchRequest{Query: "test"})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("expected error to contain API error message, got: %s", err.Error())
	}
}

// TestSimilaritySearch_APIErrorPlainDetail verifies that plain string detail
// responses are handled as well.
func TestSimilaritySearch_APIErrorPlainDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
		json.NewEncoder(writer).Encode(map[string]string{
			"detail": "access denied",
		}) //nolint:errcheck
	}))
	defer server.Close()

	store := New(WithAPIKey("bad-key"), WithBaseURL(server.URL))

	_, err := store.SimilaritySearch(context.Background(), vectorstore.SearchRequest{Query: "test"})
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "access denied") {
		t.Errorf("expected error to contain 'access denied', got: %s", err.Error())
	}
}

func TestSimilaritySearch_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
		writer.Write([]byte(`Internal Server Error`))
	}))
	defer server.Close()

	store := New(WithAPIKey("test-key"), WithBaseURL(server.URL))

	_, err := store.SimilaritySearch(context.Background(), vectorstore.SearchRequest{Query: "test"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "unexpected status code 500") {
		t.Errorf("expected error about status code 500, got: %s", err.Error())
	}
}

func TestSimilaritySearch_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	store := New(WithAPIKey("test-key"), WithBaseURL(server.URL))

	_, err := store.SimilaritySearch(context.Background(), vectorstore.SearchRequest{Query: "test"})
	if err == nil {
		t.Fatal("expected error for malformed JSON response")
	}
	if !strings.Contains(err.Error(), "parse response") {
		t.Errorf("expected error about parsing response, got: %s", err.Error())
	}
}

// TestParseAPIError verifies both error formats Tavily returns are handled.
func TestParseAPIError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "structured error",
			body:     `{"detail": {"error": "invalid key"}}`,
			expected: "invalid key",
		},
		{
			name:     "plain string detail",
			body:     `{"detail": "not found"}`,
			expected: "not found",
		},
		{
			name:     "unparseable body",
			body:     `<html>error</html>`,
			expected: "",
		},
		{
			name:     "empty detail",
			body:     `{"detail": {}}`,
			expected: "",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			result := parseAPIError([]byte(testCase.body))
			if result != testCase.expected {
				t.Errorf("parseAPIError(%q) = %q, expected %q", testCase.body, result, testCase.expected)
			}
		})
	}
}
