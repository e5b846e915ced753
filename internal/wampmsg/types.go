// Package wampmsg translates WAMP protocol messages to and from the
// ordered heterogeneous arrays carried on the wire. It owns the message
// grammar only — turning those arrays into bytes is the job of a
// Serializer (see internal/wampserialize), and putting bytes on a socket
// is the job of a Transport (see internal/wamptransport).
package wampmsg

import "fmt"

// ID is a WAMP identifier: a session ID, request ID, registration ID,
// subscription ID, or publication ID. All share the same wire
// representation (a non-negative integer).
type ID int64

// URI is a WAMP URI: a realm, topic, procedure, or error identifier.
type URI string

// Dict is a WAMP "dictionary": a string-keyed option or detail map.
type Dict map[string]any

// List is a WAMP "list": positional call/result/event arguments.
type List []any

// MessageType is the integer wire type code leading every WAMP message.
type MessageType int

const (
	typeHello        MessageType = 1
	typeWelcome      MessageType = 2
	typeAbort        MessageType = 3
	typeChallenge    MessageType = 4
	typeAuthenticate MessageType = 5
	typeGoodbye      MessageType = 6
	typeError        MessageType = 8
	typePublish      MessageType = 16
	typePublished    MessageType = 17
	typeSubscribe    MessageType = 32
	typeSubscribed   MessageType = 33
	typeUnsubscribe  MessageType = 34
	typeUnsubscribed MessageType = 35
	typeEvent        MessageType = 36
	typeCall         MessageType = 48
	typeResult       MessageType = 50
	typeRegister     MessageType = 64
	typeRegistered   MessageType = 65
	typeUnregister   MessageType = 66
	typeUnregistered MessageType = 67
	typeInvocation   MessageType = 68
	typeYield        MessageType = 70
)

// Exported aliases for callers that need to name a type code directly,
// e.g. constructing an ERROR's RequestType field.
const (
	HELLO        = typeHello
	WELCOME      = typeWelcome
	ABORT        = typeAbort
	CHALLENGE    = typeChallenge
	AUTHENTICATE = typeAuthenticate
	GOODBYE      = typeGoodbye
	ERROR        = typeError
	PUBLISH      = typePublish
	PUBLISHED    = typePublished
	SUBSCRIBE    = typeSubscribe
	SUBSCRIBED   = typeSubscribed
	UNSUBSCRIBE  = typeUnsubscribe
	UNSUBSCRIBED = typeUnsubscribed
	EVENT        = typeEvent
	CALL         = typeCall
	RESULT       = typeResult
	REGISTER     = typeRegister
	REGISTERED   = typeRegistered
	UNREGISTER   = typeUnregister
	UNREGISTERED = typeUnregistered
	INVOCATION   = typeInvocation
	YIELD        = typeYield
)

func (t MessageType) String() string {
	switch t {
	case typeHello:
		return "HELLO"
	case typeWelcome:
		return "WELCOME"
	case typeAbort:
		return "ABORT"
	case typeChallenge:
		return "CHALLENGE"
	case typeAuthenticate:
		return "AUTHENTICATE"
	case typeGoodbye:
		return "GOODBYE"
	case typeError:
		return "ERROR"
	case typePublish:
		return "PUBLISH"
	case typePublished:
		return "PUBLISHED"
	case typeSubscribe:
		return "SUBSCRIBE"
	case typeSubscribed:
		return "SUBSCRIBED"
	case typeUnsubscribe:
		return "UNSUBSCRIBE"
	case typeUnsubscribed:
		return "UNSUBSCRIBED"
	case typeEvent:
		return "EVENT"
	case typeCall:
		return "CALL"
	case typeResult:
		return "RESULT"
	case typeRegister:
		return "REGISTER"
	case typeRegistered:
		return "REGISTERED"
	case typeUnregister:
		return "UNREGISTER"
	case typeUnregistered:
		return "UNREGISTERED"
	case typeInvocation:
		return "INVOCATION"
	case typeYield:
		return "YIELD"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(t))
	}
}

// Message is any WAMP protocol message.
type Message interface {
	Type() MessageType
}

// Hello is sent client-to-router to open a session on a realm.
type Hello struct {
	Realm   URI
	Details Dict
}

func (Hello) Type() MessageType { return typeHello }

// Welcome is sent router-to-client to confirm session establishment.
type Welcome struct {
	Session ID
	Details Dict
}

func (Welcome) Type() MessageType { return typeWelcome }

// Abort is sent by either peer to abort session establishment.
type Abort struct {
	Details Dict
	Reason  URI
}

func (Abort) Type() MessageType { return typeAbort }

// Challenge is sent router-to-client to request an authentication signature.
type Challenge struct {
	AuthMethod string
	Extra      Dict
}

func (Challenge) Type() MessageType { return typeChallenge }

// Authenticate is sent client-to-router with the computed signature.
type Authenticate struct {
	Signature string
	Extra     Dict
}

func (Authenticate) Type() MessageType { return typeAuthenticate }

// Goodbye is sent by either peer to close a session.
type Goodbye struct {
	Details Dict
	Reason  URI
}

func (Goodbye) Type() MessageType { return typeGoodbye }

// Error is sent router-to-client when a request fails. RequestType names
// the request variant this error answers (CALL, SUBSCRIBE, and so on).
type Error struct {
	RequestType MessageType
	Request     ID
	Details     Dict
	URI         URI
	Args        List
	KwArgs      Dict
}

func (Error) Type() MessageType { return typeError }

// Error implements the error interface so a decoded Error can be
// returned directly from an API that surfaces protocol failures.
func (e *Error) Error() string {
	return fmt.Sprintf("wamp: %s error for %s request %d: %s", e.URI, e.RequestType, e.Request, e.URI)
}

// Publish is sent client-to-router to publish an event to a topic.
type Publish struct {
	Request ID
	Options Dict
	Topic   URI
	Args    List
	KwArgs  Dict
}

func (Publish) Type() MessageType { return typePublish }

// Published acknowledges a Publish sent with options["acknowledge"] = true.
type Published struct {
	Request     ID
	Publication ID
}

func (Published) Type() MessageType { return typePublished }

// Subscribe is sent client-to-router to subscribe to a topic.
type Subscribe struct {
	Request ID
	Options Dict
	Topic   URI
}

func (Subscribe) Type() MessageType { return typeSubscribe }

// Subscribed acknowledges a Subscribe.
type Subscribed struct {
	Request      ID
	Subscription ID
}

func (Subscribed) Type() MessageType { return typeSubscribed }

// Unsubscribe is sent client-to-router to cancel a subscription.
type Unsubscribe struct {
	Request      ID
	Subscription ID
}

func (Unsubscribe) Type() MessageType { return typeUnsubscribe }

// Unsubscribed acknowledges an Unsubscribe.
type Unsubscribed struct {
	Request ID
}

func (Unsubscribed) Type() MessageType { return typeUnsubscribed }

// Event delivers a published event to a subscriber.
type Event struct {
	Subscription ID
	Publication  ID
	Details      Dict
	Args         List
	KwArgs       Dict
}

func (Event) Type() MessageType { return typeEvent }

// Call is sent client-to-router to invoke a remote procedure.
type Call struct {
	Request   ID
	Options   Dict
	Procedure URI
	Args      List
	KwArgs    Dict
}

func (Call) Type() MessageType { return typeCall }

// Result delivers the outcome of a Call.
type Result struct {
	Request ID
	Details Dict
	Args    List
	KwArgs  Dict
}

func (Result) Type() MessageType { return typeResult }

// Register is sent client-to-router to register as callee for a procedure.
type Register struct {
	Request   ID
	Options   Dict
	Procedure URI
}

func (Register) Type() MessageType { return typeRegister }

// Registered acknowledges a Register.
type Registered struct {
	Request      ID
	Registration ID
}

func (Registered) Type() MessageType { return typeRegistered }

// Unregister is sent client-to-router to cancel a registration.
type Unregister struct {
	Request      ID
	Registration ID
}

func (Unregister) Type() MessageType { return typeUnregister }

// Unregistered acknowledges an Unregister.
type Unregistered struct {
	Request ID
}

func (Unregistered) Type() MessageType { return typeUnregistered }

// Invocation delivers a call to the registered callee.
type Invocation struct {
	Request      ID
	Registration ID
	Details      Dict
	Args         List
	KwArgs       Dict
}

func (Invocation) Type() MessageType { return typeInvocation }

// Yield returns a callee's result for an Invocation.
type Yield struct {
	Request ID
	Options Dict
	Args    List
	KwArgs  Dict
}

func (Yield) Type() MessageType { return typeYield }
