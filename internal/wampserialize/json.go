package wampserialize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONSerializer implements Serializer using the standard library's
// encoding/json. It is the default WAMP wire serialization.
type JSONSerializer struct{}

// NewJSONSerializer creates a JSONSerializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Binary() bool { return false }

func (s *JSONSerializer) Pack(msg []any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("wampserialize: json pack: %w", err)
	}
	return data, nil
}

// Unpack decodes a JSON array into an ordered heterogeneous array. It
// uses json.Decoder.UseNumber so the leading type code and subsequent
// WAMP IDs decode as json.Number rather than float64, which keeps large
// session/request identifiers exact and lets internal/wampmsg's
// coercion helpers normalize numeric types the same way regardless of
// which serializer produced them.
func (s *JSONSerializer) Unpack(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("wampserialize: json unpack: %w", err)
	}
	return normalizeJSON(raw), nil
}

// normalizeJSON walks the decoded []any/map[string]any tree and returns
// it unchanged: nested objects are already map[string]any, and
// json.Number values are left in place for the codec's coercion helpers
// to resolve. Numbers in args/kwargs therefore reach callers as
// json.Number.
func normalizeJSON(v any) any {
	switch t := v.(type) {
	case []any:
		for i, e := range t {
			t[i] = normalizeJSON(e)
		}
		return t
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeJSON(e)
		}
		return t
	default:
		return v
	}
}
