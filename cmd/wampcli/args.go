package main

import "encoding/json"

// parseArg interprets a CLI positional argument as JSON when possible
// (so "42", "true", and `{"k":1}` become their native types) and falls
// back to the raw string otherwise, letting callers pass bareword
// strings without quoting.
func parseArg(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func parseArgs(raw []string) []any {
	out := make([]any, len(raw))
	for i, s := range raw {
		out[i] = parseArg(s)
	}
	return out
}
