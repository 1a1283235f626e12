// Package parse converts raw language-model output into typed Go values.
//
// Models frequently return slightly malformed JSON: single quotes, trailing
// commas, unquoted keys, or payloads wrapped in Markdown code fences. Rather
// than failing the turn, complex types are repaired with jsonrepair and
// unmarshaled again before giving up.
package parse
