package wampmsg

import (
	"fmt"
)

// outboundOnly lists message types a client never legally receives.
// A Transport frame decoding to one of these is logged and dropped by
// the dispatcher rather than treated as a protocol message.
var outboundOnly = map[MessageType]bool{
	typeHello:        true,
	typeAuthenticate: true,
	typePublish:      true,
	typeSubscribe:    true,
	typeUnsubscribe:  true,
	typeRegister:     true,
	typeUnregister:   true,
	typeCall:         true,
	typeYield:        true,
}

// IsOutboundOnly reports whether a message type is never legal as an
// inbound (router-to-client) frame.
func IsOutboundOnly(t MessageType) bool {
	return outboundOnly[t]
}

// ToList serializes a Message to the ordered heterogeneous array WAMP
// puts on the wire, applying the trailing args/kwargs elision rule:
// omit kwargs if empty and args is non-empty; omit both if both are
// empty.
func ToList(m Message) []any {
	switch v := m.(type) {
	case *Hello:
		return []any{int(typeHello), string(v.Realm), dictOrEmpty(v.Details)}
	case *Welcome:
		return []any{int(typeWelcome), int64(v.Session), dictOrEmpty(v.Details)}
	case *Abort:
		return []any{int(typeAbort), dictOrEmpty(v.Details), string(v.Reason)}
	case *Challenge:
		return []any{int(typeChallenge), v.AuthMethod, dictOrEmpty(v.Extra)}
	case *Authenticate:
		return []any{int(typeAuthenticate), v.Signature, dictOrEmpty(v.Extra)}
	case *Goodbye:
		return []any{int(typeGoodbye), dictOrEmpty(v.Details), string(v.Reason)}
	case *Error:
		out := []any{int(typeError), int(v.RequestType), int64(v.Request), dictOrEmpty(v.Details), string(v.URI)}
		return appendArgsKwArgs(out, v.Args, v.KwArgs)
	case *Publish:
		out := []any{int(typePublish), int64(v.Request), dictOrEmpty(v.Options), string(v.Topic)}
		return appendArgsKwArgs(out, v.Args, v.KwArgs)
	case *Published:
		return []any{int(typePublished), int64(v.Request), int64(v.Publication)}
	case *Subscribe:
		return []any{int(typeSubscribe), int64(v.Request), dictOrEmpty(v.Options), string(v.Topic)}
	case *Subscribed:
		return []any{int(typeSubscribed), int64(v.Request), int64(v.Subscription)}
	case *Unsubscribe:
		return []any{int(typeUnsubscribe), int64(v.Request), int64(v.Subscription)}
	case *Unsubscribed:
		return []any{int(typeUnsubscribed), int64(v.Request)}
	case *Event:
		out := []any{int(typeEvent), int64(v.Subscription), int64(v.Publication), dictOrEmpty(v.Details)}
		return appendArgsKwArgs(out, v.Args, v.KwArgs)
	case *Call:
		out := []any{int(typeCall), int64(v.Request), dictOrEmpty(v.Options), string(v.Procedure)}
		return appendArgsKwArgs(out, v.Args, v.KwArgs)
	case *Result:
		out := []any{int(typeResult), int64(v.Request), dictOrEmpty(v.Details)}
		return appendArgsKwArgs(out, v.Args, v.KwArgs)
	case *Register:
		return []any{int(typeRegister), int64(v.Request), dictOrEmpty(v.Options), string(v.Procedure)}
	case *Registered:
		return []any{int(typeRegistered), int64(v.Request), int64(v.Registration)}
	case *Unregister:
		return []any{int(typeUnregister), int64(v.Request), int64(v.Registration)}
	case *Unregistered:
		return []any{int(typeUnregistered), int64(v.Request)}
	case *Invocation:
		out := []any{int(typeInvocation), int64(v.Request), int64(v.Registration), dictOrEmpty(v.Details)}
		return appendArgsKwArgs(out, v.Args, v.KwArgs)
	case *Yield:
		out := []any{int(typeYield), int64(v.Request), dictOrEmpty(v.Options)}
		return appendArgsKwArgs(out, v.Args, v.KwArgs)
	default:
		panic(fmt.Sprintf("wampmsg: ToList: unhandled message type %T", m))
	}
}

func dictOrEmpty(d Dict) Dict {
	if d == nil {
		return Dict{}
	}
	return d
}

// appendArgsKwArgs applies WAMP's trailing-elision rule: kwargs is
// omitted when empty (regardless of args); args and kwargs are both
// omitted when both are empty.
func appendArgsKwArgs(out []any, args List, kwargs Dict) []any {
	if len(kwargs) == 0 {
		if len(args) == 0 {
			return out
		}
		return append(out, toAnyList(args))
	}
	if args == nil {
		args = List{}
	}
	return append(out, toAnyList(args), map[string]any(kwargs))
}

func toAnyList(l List) []any {
	out := make([]any, len(l))
	copy(out, l)
	return out
}

// Decode parses a raw heterogeneous array (as produced by a Serializer's
// Unpack) into the matching Message. It validates the array's shape
// against the variant's grammar but does not enforce inbound/outbound
// direction — callers that need that check should use DecodeInbound.
func Decode(raw []any) (Message, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("wampmsg: empty message array")
	}
	code, err := asInt(raw[0])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: decode type code: %w", err)
	}
	t := MessageType(code)

	switch t {
	case typeHello:
		return decodeHello(raw)
	case typeWelcome:
		return decodeWelcome(raw)
	case typeAbort:
		return decodeAbort(raw)
	case typeChallenge:
		return decodeChallenge(raw)
	case typeAuthenticate:
		return decodeAuthenticate(raw)
	case typeGoodbye:
		return decodeGoodbye(raw)
	case typeError:
		return decodeError(raw)
	case typePublish:
		return decodePublish(raw)
	case typePublished:
		return decodePublished(raw)
	case typeSubscribe:
		return decodeSubscribe(raw)
	case typeSubscribed:
		return decodeSubscribed(raw)
	case typeUnsubscribe:
		return decodeUnsubscribe(raw)
	case typeUnsubscribed:
		return decodeUnsubscribed(raw)
	case typeEvent:
		return decodeEvent(raw)
	case typeCall:
		return decodeCall(raw)
	case typeResult:
		return decodeResult(raw)
	case typeRegister:
		return decodeRegister(raw)
	case typeRegistered:
		return decodeRegistered(raw)
	case typeUnregister:
		return decodeUnregister(raw)
	case typeUnregistered:
		return decodeUnregistered(raw)
	case typeInvocation:
		return decodeInvocation(raw)
	case typeYield:
		return decodeYield(raw)
	default:
		return nil, fmt.Errorf("wampmsg: unknown message type code %d", code)
	}
}

// DecodeInbound is like Decode but rejects message types a client never
// legally receives.
func DecodeInbound(raw []any) (Message, error) {
	m, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if IsOutboundOnly(m.Type()) {
		return nil, fmt.Errorf("wampmsg: %s is not a legal inbound message", m.Type())
	}
	return m, nil
}

func need(raw []any, n int, name string) error {
	if len(raw) < n {
		return fmt.Errorf("wampmsg: %s: expected at least %d elements, got %d", name, n, len(raw))
	}
	return nil
}

func decodeHello(raw []any) (Message, error) {
	if err := need(raw, 3, "HELLO"); err != nil {
		return nil, err
	}
	realm, err := asString(raw[1])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: HELLO realm: %w", err)
	}
	details, err := asDict(raw[2])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: HELLO details: %w", err)
	}
	return &Hello{Realm: URI(realm), Details: details}, nil
}

func decodeWelcome(raw []any) (Message, error) {
	if err := need(raw, 3, "WELCOME"); err != nil {
		return nil, err
	}
	sid, err := asID(raw[1])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: WELCOME session: %w", err)
	}
	details, err := asDict(raw[2])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: WELCOME details: %w", err)
	}
	return &Welcome{Session: sid, Details: details}, nil
}

func decodeAbort(raw []any) (Message, error) {
	if err := need(raw, 3, "ABORT"); err != nil {
		return nil, err
	}
	details, err := asDict(raw[1])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: ABORT details: %w", err)
	}
	reason, err := asString(raw[2])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: ABORT reason: %w", err)
	}
	return &Abort{Details: details, Reason: URI(reason)}, nil
}

func decodeChallenge(raw []any) (Message, error) {
	if err := need(raw, 3, "CHALLENGE"); err != nil {
		return nil, err
	}
	method, err := asString(raw[1])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: CHALLENGE authmethod: %w", err)
	}
	extra, err := asDict(raw[2])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: CHALLENGE extra: %w", err)
	}
	return &Challenge{AuthMethod: method, Extra: extra}, nil
}

func decodeAuthenticate(raw []any) (Message, error) {
	if err := need(raw, 3, "AUTHENTICATE"); err != nil {
		return nil, err
	}
	sig, err := asString(raw[1])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: AUTHENTICATE signature: %w", err)
	}
	extra, err := asDict(raw[2])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: AUTHENTICATE extra: %w", err)
	}
	return &Authenticate{Signature: sig, Extra: extra}, nil
}

func decodeGoodbye(raw []any) (Message, error) {
	if err := need(raw, 3, "GOODBYE"); err != nil {
		return nil, err
	}
	details, err := asDict(raw[1])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: GOODBYE details: %w", err)
	}
	reason, err := asString(raw[2])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: GOODBYE reason: %w", err)
	}
	return &Goodbye{Details: details, Reason: URI(reason)}, nil
}

func decodeError(raw []any) (Message, error) {
	if err := need(raw, 5, "ERROR"); err != nil {
		return nil, err
	}
	reqType, err := asInt(raw[1])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: ERROR request type: %w", err)
	}
	reqID, err := asID(raw[2])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: ERROR request id: %w", err)
	}
	details, err := asDict(raw[3])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: ERROR details: %w", err)
	}
	uri, err := asString(raw[4])
	if err != nil {
		return nil, fmt.Errorf("wampmsg: ERROR uri: %w", err)
	}
	args, kwargs, err := decodeArgsKwArgs(raw, 5)
	if err != nil {
		return nil, fmt.Errorf("wampmsg: ERROR: %w", err)
	}
	return &Error{RequestType: MessageType(reqType), Request: reqID, Details: details, URI: URI(uri), Args: args, KwArgs: kwargs}, nil
}

func decodePublish(raw []any) (Message, error) {
	if err := need(raw, 4, "PUBLISH"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	opts, err := asDict(raw[2])
	if err != nil {
		return nil, err
	}
	topic, err := asString(raw[3])
	if err != nil {
		return nil, err
	}
	args, kwargs, err := decodeArgsKwArgs(raw, 4)
	if err != nil {
		return nil, fmt.Errorf("wampmsg: PUBLISH: %w", err)
	}
	return &Publish{Request: req, Options: opts, Topic: URI(topic), Args: args, KwArgs: kwargs}, nil
}

func decodePublished(raw []any) (Message, error) {
	if err := need(raw, 3, "PUBLISHED"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	pub, err := asID(raw[2])
	if err != nil {
		return nil, err
	}
	return &Published{Request: req, Publication: pub}, nil
}

func decodeSubscribe(raw []any) (Message, error) {
	if err := need(raw, 4, "SUBSCRIBE"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	opts, err := asDict(raw[2])
	if err != nil {
		return nil, err
	}
	topic, err := asString(raw[3])
	if err != nil {
		return nil, err
	}
	return &Subscribe{Request: req, Options: opts, Topic: URI(topic)}, nil
}

func decodeSubscribed(raw []any) (Message, error) {
	if err := need(raw, 3, "SUBSCRIBED"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	sub, err := asID(raw[2])
	if err != nil {
		return nil, err
	}
	return &Subscribed{Request: req, Subscription: sub}, nil
}

func decodeUnsubscribe(raw []any) (Message, error) {
	if err := need(raw, 3, "UNSUBSCRIBE"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	sub, err := asID(raw[2])
	if err != nil {
		return nil, err
	}
	return &Unsubscribe{Request: req, Subscription: sub}, nil
}

func decodeUnsubscribed(raw []any) (Message, error) {
	if err := need(raw, 2, "UNSUBSCRIBED"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	return &Unsubscribed{Request: req}, nil
}

func decodeEvent(raw []any) (Message, error) {
	if err := need(raw, 4, "EVENT"); err != nil {
		return nil, err
	}
	sub, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	pub, err := asID(raw[2])
	if err != nil {
		return nil, err
	}
	details, err := asDict(raw[3])
	if err != nil {
		return nil, err
	}
	args, kwargs, err := decodeArgsKwArgs(raw, 4)
	if err != nil {
		return nil, fmt.Errorf("wampmsg: EVENT: %w", err)
	}
	return &Event{Subscription: sub, Publication: pub, Details: details, Args: args, KwArgs: kwargs}, nil
}

func decodeCall(raw []any) (Message, error) {
	if err := need(raw, 4, "CALL"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	opts, err := asDict(raw[2])
	if err != nil {
		return nil, err
	}
	proc, err := asString(raw[3])
	if err != nil {
		return nil, err
	}
	args, kwargs, err := decodeArgsKwArgs(raw, 4)
	if err != nil {
		return nil, fmt.Errorf("wampmsg: CALL: %w", err)
	}
	return &Call{Request: req, Options: opts, Procedure: URI(proc), Args: args, KwArgs: kwargs}, nil
}

func decodeResult(raw []any) (Message, error) {
	if err := need(raw, 3, "RESULT"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	details, err := asDict(raw[2])
	if err != nil {
		return nil, err
	}
	args, kwargs, err := decodeArgsKwArgs(raw, 3)
	if err != nil {
		return nil, fmt.Errorf("wampmsg: RESULT: %w", err)
	}
	return &Result{Request: req, Details: details, Args: args, KwArgs: kwargs}, nil
}

func decodeRegister(raw []any) (Message, error) {
	if err := need(raw, 4, "REGISTER"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	opts, err := asDict(raw[2])
	if err != nil {
		return nil, err
	}
	proc, err := asString(raw[3])
	if err != nil {
		return nil, err
	}
	return &Register{Request: req, Options: opts, Procedure: URI(proc)}, nil
}

func decodeRegistered(raw []any) (Message, error) {
	if err := need(raw, 3, "REGISTERED"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	reg, err := asID(raw[2])
	if err != nil {
		return nil, err
	}
	return &Registered{Request: req, Registration: reg}, nil
}

func decodeUnregister(raw []any) (Message, error) {
	if err := need(raw, 3, "UNREGISTER"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	reg, err := asID(raw[2])
	if err != nil {
		return nil, err
	}
	return &Unregister{Request: req, Registration: reg}, nil
}

func decodeUnregistered(raw []any) (Message, error) {
	if err := need(raw, 2, "UNREGISTERED"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	return &Unregistered{Request: req}, nil
}

func decodeInvocation(raw []any) (Message, error) {
	if err := need(raw, 4, "INVOCATION"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	reg, err := asID(raw[2])
	if err != nil {
		return nil, err
	}
	details, err := asDict(raw[3])
	if err != nil {
		return nil, err
	}
	args, kwargs, err := decodeArgsKwArgs(raw, 4)
	if err != nil {
		return nil, fmt.Errorf("wampmsg: INVOCATION: %w", err)
	}
	return &Invocation{Request: req, Registration: reg, Details: details, Args: args, KwArgs: kwargs}, nil
}

func decodeYield(raw []any) (Message, error) {
	if err := need(raw, 3, "YIELD"); err != nil {
		return nil, err
	}
	req, err := asID(raw[1])
	if err != nil {
		return nil, err
	}
	opts, err := asDict(raw[2])
	if err != nil {
		return nil, err
	}
	args, kwargs, err := decodeArgsKwArgs(raw, 3)
	if err != nil {
		return nil, fmt.Errorf("wampmsg: YIELD: %w", err)
	}
	return &Yield{Request: req, Options: opts, Args: args, KwArgs: kwargs}, nil
}

// decodeArgsKwArgs decodes the optional trailing args/kwargs slots
// starting at index from in raw, applying WAMP's elision rule in reverse.
func decodeArgsKwArgs(raw []any, from int) (List, Dict, error) {
	var args List
	var kwargs Dict

	if len(raw) > from {
		l, err := asList(raw[from])
		if err != nil {
			return nil, nil, fmt.Errorf("args: %w", err)
		}
		args = l
	}
	if len(raw) > from+1 {
		d, err := asDict(raw[from+1])
		if err != nil {
			return nil, nil, fmt.Errorf("kwargs: %w", err)
		}
		kwargs = d
	}
	return args, kwargs, nil
}
