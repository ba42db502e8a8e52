package parse

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/advigo/advigo/internal/utils"
)

// As attempts to parse a string into the specified type T.
// For primitive types (string, bool, int, uint, float), it performs direct
// conversion. For complex types (structs, maps, slices), it attempts JSON
// unmarshaling. When the content is not well-formed JSON, it extracts
// balanced JSON candidates from surrounding narrative text, repairs
// malformed JSON with the jsonrepair library, and reconciles container
// mismatches (an array where an object was expected and vice versa) before
// giving up.
//
// Example usage:
//
//	type Person struct {
//	    Name string `json:"name"`
//	    Age  int    `json:"age"`
//	}
//
//	// Parse a valid JSON string
//	person, err := parse.As[Person](`{"name":"John","age":30}`)
//
//	// Parse an invalid JSON string (will be auto-repaired)
//	person, err := parse.As[Person](`{name: 'John', age: 30}`)
//
//	// Parse primitive types
//	num, err := parse.As[int]("42")
//	flag, err := parse.As[bool]("true")
func As[T any](content string) (T, error) {
	var result T

	switch reflect.TypeFor[T]().Kind() {
	case reflect.String:
		reflect.ValueOf(&result).Elem().SetString(content)
		return result, nil

	case reflect.Bool:
		val, err := strconv.ParseBool(content)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as bool: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetBool(val)
		return result, nil

	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(content, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as float: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetFloat(val)
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(content, 10, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as int: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetInt(val)
		return result, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(content, 10, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as uint: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetUint(val)
		return result, nil

	default:
		return parseComplex[T](content)
	}
}

// parseComplex decodes structs, maps, slices and pointers from content,
// recovering from the usual ways models mangle JSON output.
func parseComplex[T any](content string) (T, error) {
	var result T

	// Well-formed JSON is the common case
	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	// The model may have wrapped the JSON in narrative text or markdown
	// fences. Try each balanced JSON span in document order and use the
	// first one that decodes.
	for _, candidate := range extractJSONCandidates(content) {
		if parsed, err := unmarshalRepaired[T](candidate); err == nil {
			return parsed, nil
		}
	}

	// Truncated JSON never forms a balanced candidate, so as a last resort
	// repair the full content.
	parsed, err := unmarshalRepaired[T](content)
	if err != nil {
		return result, fmt.Errorf("failed to parse content as %T: %w (content: %s)", result, err, utils.TruncateString(content, 200))
	}
	return parsed, nil
}

// unmarshalRepaired decodes content into T, running it through jsonrepair
// when plain unmarshaling fails and healing container mismatches afterwards.
func unmarshalRepaired[T any](content string) (T, error) {
	var result T

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return result, fmt.Errorf("repair JSON: %w", err)
	}

	unmarshalErr := json.Unmarshal([]byte(repaired), &result)
	if unmarshalErr == nil {
		return result, nil
	}

	if healed, ok := healShape[T](repaired); ok {
		return healed, nil
	}

	return result, unmarshalErr
}

// healShape reconciles container mismatches between a valid JSON document
// and the target type: when a struct or map is expected but the document is
// an array, the first element is used; when a slice is expected but the
// document is a single object, it is wrapped into a one-element array.
func healShape[T any](document string) (T, bool) {
	var result T

	targetType := reflect.TypeFor[T]()
	kind := targetType.Kind()
	if kind == reflect.Pointer {
		kind = targetType.Elem().Kind()
	}

	trimmed := strings.TrimSpace(document)
	if trimmed == "" {
		return result, false
	}

	switch {
	case (kind == reflect.Struct || kind == reflect.Map) && trimmed[0] == '[':
		var elements []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &elements); err != nil || len(elements) == 0 {
			return result, false
		}
		if err := json.Unmarshal(elements[0], &result); err != nil {
			return result, false
		}
		return result, true

	case kind == reflect.Slice && trimmed[0] == '{':
		if err := json.Unmarshal([]byte("["+trimmed+"]"), &result); err != nil {
			return result, false
		}
		return result, true
	}

	return result, false
}

// extractJSONCandidates returns every balanced JSON object or array found in
// content, in document order. Nested containers are reported after the
// container they appear in. Spans that never close are ignored.
func extractJSONCandidates(content string) []string {
	candidates := []string{}
	for i := 0; i < len(content); i++ {
		if content[i] != '{' && content[i] != '[' {
			continue
		}
		if end, ok := scanBalanced(content, i); ok {
			candidates = append(candidates, content[i:end+1])
		}
	}
	return candidates
}

// scanBalanced finds the closing position of the container opening at start.
// It tracks brace and bracket depth while skipping string literals and
// escape sequences, and reports false when the container never closes.
func scanBalanced(content string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(content); i++ {
		c := content[i]

		if escaped {
			escaped = false
			continue
		}

		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				depth++
			}
		case '}', ']':
			if !inString {
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
	}

	return 0, false
}
