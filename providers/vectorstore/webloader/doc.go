// Package webloader turns web pages into [vectorstore.Document] values by
// fetching a URL and converting its HTML content to Markdown with the
// html-to-markdown library. The resulting documents are ready to be added to
// any [vectorstore.Store] implementation for retrieval.
package webloader
