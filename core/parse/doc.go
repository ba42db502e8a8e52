// Package parse provides utilities for extracting and converting structured
// data from raw LLM text output. Because language models frequently wrap
// JSON in narrative prose or markdown code fences, the package first tries
// balanced JSON candidates extracted from the text, then automatic JSON
// repair, before falling back to a clear error.
//
// The main entry point is the generic [As] function, which handles both
// primitive types (string, bool, int, float) and complex types (structs,
// maps, slices) in a single, uniform API.
package parse
