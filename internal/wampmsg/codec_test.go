package wampmsg

import (
	"reflect"
	"testing"
)

func roundTrip(t *testing.T, m Message) Message {
	t.Helper()
	list := ToList(m)
	got, err := Decode(list)
	if err != nil {
		t.Fatalf("Decode(ToList(%T)) error: %v", m, err)
	}
	return got
}

func TestRoundTrip_Hello(t *testing.T) {
	m := &Hello{Realm: "realm1", Details: Dict{"agent": "test", "roles": Dict{"caller": Dict{}}}}
	got := roundTrip(t, m).(*Hello)
	if got.Realm != m.Realm {
		t.Errorf("realm = %v, want %v", got.Realm, m.Realm)
	}
	if !reflect.DeepEqual(got.Details, m.Details) {
		t.Errorf("details = %v, want %v", got.Details, m.Details)
	}
}

func TestRoundTrip_Welcome(t *testing.T) {
	m := &Welcome{Session: 12345, Details: Dict{"roles": Dict{"dealer": Dict{}}}}
	got := roundTrip(t, m).(*Welcome)
	if got.Session != m.Session {
		t.Errorf("session = %v, want %v", got.Session, m.Session)
	}
}

func TestRoundTrip_Abort(t *testing.T) {
	m := &Abort{Details: Dict{}, Reason: "wamp.error.system_shutdown"}
	got := roundTrip(t, m).(*Abort)
	if got.Reason != m.Reason {
		t.Errorf("reason = %v, want %v", got.Reason, m.Reason)
	}
}

func TestRoundTrip_Challenge(t *testing.T) {
	m := &Challenge{AuthMethod: "ticket", Extra: Dict{}}
	got := roundTrip(t, m).(*Challenge)
	if got.AuthMethod != m.AuthMethod {
		t.Errorf("authmethod = %v, want %v", got.AuthMethod, m.AuthMethod)
	}
}

func TestRoundTrip_Goodbye(t *testing.T) {
	m := &Goodbye{Details: Dict{}, Reason: "wamp.error.close_realm"}
	got := roundTrip(t, m).(*Goodbye)
	if got.Reason != m.Reason {
		t.Errorf("reason = %v, want %v", got.Reason, m.Reason)
	}
}

func TestRoundTrip_Error_WithArgs(t *testing.T) {
	m := &Error{RequestType: CALL, Request: 7, Details: Dict{}, URI: "wamp.error.no_such_procedure", Args: List{"x"}, KwArgs: Dict{"k": "v"}}
	got := roundTrip(t, m).(*Error)
	if got.RequestType != m.RequestType || got.Request != m.Request || got.URI != m.URI {
		t.Fatalf("got %+v, want %+v", got, m)
	}
	if !reflect.DeepEqual(got.Args, m.Args) || !reflect.DeepEqual(got.KwArgs, m.KwArgs) {
		t.Errorf("args/kwargs mismatch: got %v/%v want %v/%v", got.Args, got.KwArgs, m.Args, m.KwArgs)
	}
}

func TestRoundTrip_Call_NoArgs(t *testing.T) {
	m := &Call{Request: 1, Options: Dict{}, Procedure: "com.example.add"}
	list := ToList(m)
	// Elision: no args/kwargs present means the encoded array is exactly 4 elements.
	if len(list) != 4 {
		t.Fatalf("expected elided array of length 4, got %d: %v", len(list), list)
	}
	got := roundTrip(t, m).(*Call)
	if len(got.Args) != 0 {
		t.Errorf("expected no args, got %v", got.Args)
	}
}

func TestRoundTrip_Call_ArgsOnly(t *testing.T) {
	m := &Call{Request: 2, Options: Dict{}, Procedure: "com.example.add", Args: List{2, 3}}
	list := ToList(m)
	if len(list) != 5 {
		t.Fatalf("expected array of length 5 (kwargs elided), got %d: %v", len(list), list)
	}
	got := roundTrip(t, m).(*Call)
	if !reflect.DeepEqual(got.Args, m.Args) {
		t.Errorf("args = %v, want %v", got.Args, m.Args)
	}
}

func TestRoundTrip_Publish_Subscribe_Event(t *testing.T) {
	pub := &Publish{Request: 1, Options: Dict{"acknowledge": true}, Topic: "com.x"}
	_ = roundTrip(t, pub)

	sub := &Subscribe{Request: 2, Options: Dict{}, Topic: "com.chan"}
	_ = roundTrip(t, sub)

	ev := &Event{Subscription: 777, Publication: 1, Details: Dict{}, Args: List{"hi"}}
	got := roundTrip(t, ev).(*Event)
	if got.Subscription != 777 || !reflect.DeepEqual(got.Args, List{"hi"}) {
		t.Errorf("got %+v", got)
	}
}

func TestRoundTrip_AllRegisterFamily(t *testing.T) {
	msgs := []Message{
		&Register{Request: 1, Options: Dict{}, Procedure: "com.x"},
		&Registered{Request: 1, Registration: 42},
		&Unregister{Request: 2, Registration: 42},
		&Unregistered{Request: 2},
		&Invocation{Request: 3, Registration: 42, Details: Dict{}, Args: List{1, 2}},
		&Yield{Request: 3, Options: Dict{}, Args: List{}, KwArgs: Dict{"sum": 3}},
	}
	for _, m := range msgs {
		got := roundTrip(t, m)
		if got.Type() != m.Type() {
			t.Errorf("type = %v, want %v", got.Type(), m.Type())
		}
	}
}

func TestDecodeInbound_RejectsOutboundOnly(t *testing.T) {
	outbound := []Message{
		&Hello{Realm: "r", Details: Dict{}},
		&Authenticate{Signature: "s", Extra: Dict{}},
		&Publish{Request: 1, Options: Dict{}, Topic: "t"},
		&Subscribe{Request: 1, Options: Dict{}, Topic: "t"},
		&Unsubscribe{Request: 1, Subscription: 1},
		&Register{Request: 1, Options: Dict{}, Procedure: "p"},
		&Unregister{Request: 1, Registration: 1},
		&Call{Request: 1, Options: Dict{}, Procedure: "p"},
		&Yield{Request: 1, Options: Dict{}},
	}
	for _, m := range outbound {
		if _, err := DecodeInbound(ToList(m)); err == nil {
			t.Errorf("DecodeInbound accepted outbound-only type %v", m.Type())
		}
	}
}

func TestDecodeInbound_AcceptsInbound(t *testing.T) {
	inbound := []Message{
		&Welcome{Session: 1, Details: Dict{}},
		&Abort{Details: Dict{}, Reason: "r"},
		&Challenge{AuthMethod: "ticket", Extra: Dict{}},
		&Goodbye{Details: Dict{}, Reason: "r"},
		&Error{RequestType: CALL, Request: 1, Details: Dict{}, URI: "e"},
		&Published{Request: 1, Publication: 1},
		&Subscribed{Request: 1, Subscription: 1},
		&Unsubscribed{Request: 1},
		&Event{Subscription: 1, Publication: 1, Details: Dict{}},
		&Result{Request: 1, Details: Dict{}},
		&Registered{Request: 1, Registration: 1},
		&Unregistered{Request: 1},
		&Invocation{Request: 1, Registration: 1, Details: Dict{}},
	}
	for _, m := range inbound {
		if _, err := DecodeInbound(ToList(m)); err != nil {
			t.Errorf("DecodeInbound rejected legal inbound type %v: %v", m.Type(), err)
		}
	}
}

func TestDecode_UnknownType(t *testing.T) {
	if _, err := Decode([]any{999}); err == nil {
		t.Fatal("expected error for unknown type code")
	}
}

func TestDecode_EmptyArray(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Fatal("expected error for empty array")
	}
}

func TestDecode_TooShort(t *testing.T) {
	if _, err := Decode([]any{int(typeWelcome), int64(1)}); err == nil {
		t.Fatal("expected error for WELCOME missing details")
	}
}

// Numbers decoded by a JSON serializer arrive as float64; the codec must
// still parse them.
func TestDecode_FloatTypeCodeAndIDs(t *testing.T) {
	raw := []any{float64(33), float64(2), float64(777)}
	m, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	sub, ok := m.(*Subscribed)
	if !ok {
		t.Fatalf("got %T, want *Subscribed", m)
	}
	if sub.Request != 2 || sub.Subscription != 777 {
		t.Errorf("got %+v", sub)
	}
}
