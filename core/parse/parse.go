package parse

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseStringAs attempts to parse a string into the specified type T.
// For primitive types (string, bool, int, float), it performs direct
// conversion. For complex types (structs, maps, slices), it attempts JSON
// unmarshaling. If JSON unmarshaling fails, it will attempt to repair the
// JSON string using jsonrepair and retry the unmarshaling operation.
//
// Example usage:
//
//	type Intent struct {
//	    Classification string `json:"classification"`
//	}
//
//	// Parse a valid JSON string
//	intent, err := ParseStringAs[Intent](`{"classification":"roadmap"}`)
//
//	// Parse an invalid JSON string (will be auto-repaired)
//	intent, err := ParseStringAs[Intent](`{classification: 'roadmap'}`)
//
//	// Parse primitive types
//	num, err := ParseStringAs[int]("42")
//	flag, err := ParseStringAs[bool]("true")
func ParseStringAs[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

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

	default:
		// For structs, slices, maps, and other complex types, use JSON
		// unmarshaling with a repair-and-retry fallback. Models often emit
		// code fences or stray prose around the JSON payload.
		content = stripCodeFence(content)

		err := json.Unmarshal([]byte(content), &result)
		if err == nil {
			return result, nil
		}

		repairedJSON, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
		}

		if err = json.Unmarshal([]byte(repairedJSON), &result); err != nil {
			return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (repaired: %s)", result, err, repairedJSON)
		}
		return result, nil
	}
}

// stripCodeFence removes a surrounding Markdown code fence (``` or ```json)
// if the whole content is wrapped in one.
func stripCodeFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	trimmed := strings.TrimPrefix(content, "```")
	trimmed = strings.TrimPrefix(trimmed, "json")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
