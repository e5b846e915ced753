package wampmsg

import (
	"encoding/json"
	"fmt"
)

// The helpers below normalize values decoded by a Serializer. JSON
// decodes all numbers as float64 unless the serializer took care to use
// json.Number (see wampserialize.JSONSerializer); MessagePack can
// produce int64, uint64, or float64 depending on the encoded value's
// magnitude. The codec must accept any of these so message decoding is
// serializer-agnostic.

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got json.Number %q", n.String())
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func asID(v any) (ID, error) {
	n, err := asInt(v)
	if err != nil {
		return 0, err
	}
	return ID(n), nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

func asDict(v any) (Dict, error) {
	switch m := v.(type) {
	case Dict:
		return m, nil
	case map[string]any:
		return Dict(m), nil
	case nil:
		return Dict{}, nil
	default:
		return nil, fmt.Errorf("expected dict, got %T", v)
	}
}

func asList(v any) (List, error) {
	switch l := v.(type) {
	case List:
		return l, nil
	case []any:
		return List(l), nil
	case nil:
		return List{}, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", v)
	}
}
