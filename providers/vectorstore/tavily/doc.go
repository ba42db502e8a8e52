// Package tavily implements [vectorstore.Store] on top of the Tavily AI
// search API, so retrieval-augmented pipelines can draw context from live
// web search instead of (or alongside) a vector database.
//
// [New] reads the API key from the TAVILY_API_KEY environment variable
// unless [WithAPIKey] is used. Search results map to documents with the
// result URL as ID and the Tavily relevance score as the document score.
package tavily
