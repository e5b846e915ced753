package wampserialize

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPackSerializer implements Serializer using MessagePack, WAMP's binary
// wire format alternative to JSON.
type MsgPackSerializer struct{}

// NewMsgPackSerializer creates a MsgPackSerializer.
func NewMsgPackSerializer() *MsgPackSerializer {
	return &MsgPackSerializer{}
}

func (s *MsgPackSerializer) Binary() bool { return true }

func (s *MsgPackSerializer) Pack(msg []any) ([]byte, error) {
	data, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("wampserialize: msgpack pack: %w", err)
	}
	return data, nil
}

// Unpack decodes a MessagePack array into an ordered heterogeneous array.
// msgpack decodes WAMP's integer type codes and IDs as int64 or uint64
// depending on sign and magnitude, and nested dictionaries as
// map[string]any; internal/wampmsg's coercion helpers accept either.
func (s *MsgPackSerializer) Unpack(data []byte) ([]any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("wampserialize: msgpack unpack: %w", err)
	}
	return raw, nil
}
