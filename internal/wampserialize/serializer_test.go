package wampserialize

import (
	"encoding/json"
	"testing"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name       string
		wantBinary bool
		wantErr    bool
	}{
		{"", false, false},
		{"json", false, false},
		{"msgpack", true, false},
		{"cbor", false, true},
	}
	for _, tt := range tests {
		s, err := ByName(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ByName(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ByName(%q): unexpected error: %v", tt.name, err)
		}
		if s.Binary() != tt.wantBinary {
			t.Errorf("ByName(%q).Binary() = %v, want %v", tt.name, s.Binary(), tt.wantBinary)
		}
	}
}

func TestJSONSerializer_RoundTrip(t *testing.T) {
	s := NewJSONSerializer()
	msg := []any{1, "realm1", map[string]any{"agent": "test"}}

	data, err := s.Pack(msg)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	got, err := s.Unpack(data)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d elements, want 3: %v", len(got), got)
	}
	if got[1] != "realm1" {
		t.Errorf("got[1] = %v, want realm1", got[1])
	}
}

func TestJSONSerializer_PreservesIntegerPrecision(t *testing.T) {
	s := NewJSONSerializer()
	// A session/request ID well past float64's exact-integer range for
	// naive decoding to silently lose precision on.
	const bigID = 9007199254740993
	data, err := s.Pack([]any{2, bigID})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	got, err := s.Unpack(data)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	n, ok := got[1].(json.Number)
	if !ok {
		t.Fatalf("got[1] = %T, want json.Number", got[1])
	}
	i, err := n.Int64()
	if err != nil {
		t.Fatalf("Int64: %v", err)
	}
	if i != bigID {
		t.Errorf("got %d, want %d", i, bigID)
	}
}

func TestMsgPackSerializer_RoundTrip(t *testing.T) {
	s := NewMsgPackSerializer()
	msg := []any{1, "realm1", map[string]any{"agent": "test"}}

	data, err := s.Pack(msg)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	got, err := s.Unpack(data)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d elements, want 3: %v", len(got), got)
	}
	if got[1] != "realm1" {
		t.Errorf("got[1] = %v, want realm1", got[1])
	}
}

func TestSerializers_BinaryFlag(t *testing.T) {
	if NewJSONSerializer().Binary() {
		t.Error("JSONSerializer.Binary() = true, want false")
	}
	if !NewMsgPackSerializer().Binary() {
		t.Error("MsgPackSerializer.Binary() = false, want true")
	}
}
