// Package wampclient implements the WAMP basic profile session layer:
// the state machine that opens a realm, demultiplexes inbound router
// frames onto per-request continuations, tracks live registrations and
// subscriptions, and releases all outstanding continuations on
// disconnect. Package wamptransport and wampserialize supply the byte
// transport and wire codec it drives; package wampmsg supplies the
// message types it speaks.
package wampclient

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/wampio/gowamp-client/internal/buildinfo"
	"github.com/wampio/gowamp-client/internal/wampmsg"
	"github.com/wampio/gowamp-client/internal/wampserialize"
	"github.com/wampio/gowamp-client/internal/wamptransport"
)

// State is one of the session's finite states.
type State int

const (
	StateDisconnected State = iota
	StateHelloSent
	StateChallenged
	StateEstablished
	StateClosing
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateHelloSent:
		return "hello-sent"
	case StateChallenged:
		return "challenged"
	case StateEstablished:
		return "established"
	case StateClosing:
		return "closing"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Delegate receives session lifecycle notifications. Both methods are
// optional in the sense that a nil Delegate is legal; Session simply
// skips the call.
type Delegate interface {
	// Connected fires once WELCOME establishes the session.
	Connected(sessionID wampmsg.ID)
	// SessionEnded fires exactly once per connection, whether ended by
	// GOODBYE, ABORT, or transport loss.
	SessionEnded(reason string)
}

// ChallengeDelegate computes a signature for a router-issued CHALLENGE.
// If none is configured and the router challenges, the session aborts
// with wamp.error.system_shutdown.
type ChallengeDelegate interface {
	HandleChallenge(authMethod string, extra wampmsg.Dict) (signature string, err error)
}

// Roles controls which roles this session advertises in HELLO beyond
// the always-on Caller, Subscriber, Publisher trio.
type Roles struct {
	Callee bool
}

// Config parameterizes a Session. Realm is required; an empty Agent
// defaults to buildinfo.Agent(); the rest are optional.
type Config struct {
	Realm string
	Agent string
	Roles Roles

	AuthMethods []string
	AuthID      string
	AuthRole    string
	AuthExtra   wampmsg.Dict

	AutoReconnect bool

	Delegate          Delegate
	ChallengeDelegate ChallengeDelegate

	// LaneDepth is not read by Session. The session creates no lanes of
	// its own; every callback runs on the Lane the caller passes to
	// Call/Register/Subscribe/Publish.
	LaneDepth int

	Logger *slog.Logger
}

// Session is the WAMP basic-profile session state machine. All mutable
// state is guarded by one mutex; no operation holds that mutex while
// performing I/O.
type Session struct {
	cfg       Config
	transport wamptransport.Transport
	logger    *slog.Logger

	mu          sync.Mutex
	state       State
	sessionID   wampmsg.ID
	serializer  wampserialize.Serializer
	routerRoles map[string]bool
	ids         *idAllocator

	callPending        map[wampmsg.ID]*callContinuation
	registerPending    map[wampmsg.ID]*registerContinuation
	unregisterPending  map[wampmsg.ID]*unregisterContinuation
	subscribePending   map[wampmsg.ID]*subscribeContinuation
	unsubscribePending map[wampmsg.ID]*unsubscribeContinuation
	publishPending     map[wampmsg.ID]*publishContinuation

	registrations map[wampmsg.ID]*registrationRecord
	subscriptions map[wampmsg.ID]*subscriptionRecord
}

// NewSession creates a Session bound to transport. The session installs
// itself as the transport's connected/received/disconnected delegate;
// transport must not already have those callbacks claimed elsewhere.
func NewSession(transport wamptransport.Transport, cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Agent == "" {
		cfg.Agent = buildinfo.Agent()
	}

	s := &Session{
		cfg:                cfg,
		transport:          transport,
		logger:             logger,
		state:              StateDisconnected,
		ids:                newIDAllocator(),
		callPending:        make(map[wampmsg.ID]*callContinuation),
		registerPending:    make(map[wampmsg.ID]*registerContinuation),
		unregisterPending:  make(map[wampmsg.ID]*unregisterContinuation),
		subscribePending:   make(map[wampmsg.ID]*subscribeContinuation),
		unsubscribePending: make(map[wampmsg.ID]*unsubscribeContinuation),
		publishPending:     make(map[wampmsg.ID]*publishContinuation),
		registrations:      make(map[wampmsg.ID]*registrationRecord),
		subscriptions:      make(map[wampmsg.ID]*subscriptionRecord),
	}

	transport.OnConnected(s.onTransportConnected)
	transport.OnReceived(s.onTransportReceived)
	transport.OnDisconnected(s.onTransportDisconnected)

	return s
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionID returns the router-assigned session identifier, or 0 if the
// session is not established. Presence of a non-zero session-id is the
// sole definition of "connected".
func (s *Session) SessionID() wampmsg.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// RouterRoles returns the set of roles the router advertised in WELCOME
// (e.g. "dealer", "broker"), or nil before the session is established.
func (s *Session) RouterRoles() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routerRoles
}

// Connect dials the transport. HELLO is emitted once the transport
// reports connected-with-serializer.
func (s *Session) Connect() error {
	s.mu.Lock()
	if s.state != StateDisconnected {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("wampclient: Connect called in state %s", st)
	}
	s.mu.Unlock()

	return s.transport.Connect()
}

// Disconnect leaves an established realm gracefully by emitting GOODBYE
// with the given reason and moving to CLOSING. The client does not wait
// synchronously for the router's reciprocal GOODBYE; see
// onTransportDisconnected / handleGoodbye for final teardown.
func (s *Session) Disconnect(reason wampmsg.URI) {
	if reason == "" {
		reason = "wamp.error.close_realm"
	}

	s.mu.Lock()
	if s.state != StateEstablished {
		s.mu.Unlock()
		return
	}
	s.state = StateClosing
	s.mu.Unlock()

	s.sendMessage(&wampmsg.Goodbye{Details: wampmsg.Dict{}, Reason: reason})
}

func (s *Session) roleDict() wampmsg.Dict {
	roles := wampmsg.Dict{
		"caller":     wampmsg.Dict{},
		"subscriber": wampmsg.Dict{},
		"publisher":  wampmsg.Dict{},
	}
	if s.cfg.Roles.Callee {
		roles["callee"] = wampmsg.Dict{}
	}
	return roles
}

func rolesFromDetails(details wampmsg.Dict) map[string]bool {
	roles := map[string]bool{}
	raw, ok := details["roles"]
	if !ok {
		return roles
	}
	switch m := raw.(type) {
	case wampmsg.Dict:
		for k := range m {
			roles[k] = true
		}
	case map[string]any:
		for k := range m {
			roles[k] = true
		}
	}
	return roles
}

func (s *Session) onTransportConnected(ser wampserialize.Serializer) {
	s.mu.Lock()
	s.serializer = ser
	s.state = StateHelloSent
	s.mu.Unlock()

	details := wampmsg.Dict{
		"agent": s.cfg.Agent,
		"roles": s.roleDict(),
	}
	if len(s.cfg.AuthMethods) > 0 {
		methods := make([]any, len(s.cfg.AuthMethods))
		for i, m := range s.cfg.AuthMethods {
			methods[i] = m
		}
		details["authmethods"] = methods
	}
	if s.cfg.AuthID != "" {
		details["authid"] = s.cfg.AuthID
	}
	if s.cfg.AuthRole != "" {
		details["authrole"] = s.cfg.AuthRole
	}
	if len(s.cfg.AuthExtra) > 0 {
		details["authextra"] = s.cfg.AuthExtra
	}

	s.sendMessage(&wampmsg.Hello{Realm: wampmsg.URI(s.cfg.Realm), Details: details})
}

func (s *Session) onTransportReceived(data []byte) {
	s.mu.Lock()
	ser := s.serializer
	s.mu.Unlock()
	if ser == nil {
		s.logger.Error("wampclient: frame received with no serializer bound")
		return
	}

	raw, err := ser.Unpack(data)
	if err != nil {
		s.logger.Warn("wampclient: unpack failed", "error", err)
		return
	}
	msg, err := wampmsg.DecodeInbound(raw)
	if err != nil {
		s.logger.Warn("wampclient: decode failed", "error", err)
		return
	}
	s.dispatch(msg)
}

func (s *Session) dispatch(msg wampmsg.Message) {
	switch m := msg.(type) {
	case *wampmsg.Welcome:
		s.handleWelcome(m)
	case *wampmsg.Abort:
		s.handleAbort(m)
	case *wampmsg.Challenge:
		s.handleChallenge(m)
	case *wampmsg.Goodbye:
		s.handleGoodbye(m)
	case *wampmsg.Result:
		s.handleResult(m)
	case *wampmsg.Error:
		s.handleError(m)
	case *wampmsg.Subscribed:
		s.handleSubscribed(m)
	case *wampmsg.Unsubscribed:
		s.handleUnsubscribed(m)
	case *wampmsg.Published:
		s.handlePublished(m)
	case *wampmsg.Event:
		s.handleEvent(m)
	case *wampmsg.Registered:
		s.handleRegistered(m)
	case *wampmsg.Unregistered:
		s.handleUnregistered(m)
	case *wampmsg.Invocation:
		s.handleInvocation(m)
	default:
		s.logger.Debug("wampclient: unhandled inbound message", "type", msg.Type())
	}
}

func (s *Session) sendMessage(m wampmsg.Message) {
	s.mu.Lock()
	ser := s.serializer
	s.mu.Unlock()
	if ser == nil {
		s.logger.Error("wampclient: send attempted with no serializer bound", "type", m.Type())
		return
	}

	data, err := ser.Pack(wampmsg.ToList(m))
	if err != nil {
		s.logger.Error("wampclient: pack failed", "type", m.Type(), "error", err)
		return
	}
	if err := s.transport.Send(data); err != nil {
		s.logger.Error("wampclient: send failed", "type", m.Type(), "error", err)
	}
}

func (s *Session) nextRequestID() wampmsg.ID {
	return s.ids.next()
}

func mergeDict(base wampmsg.Dict, extra ...func(wampmsg.Dict)) wampmsg.Dict {
	out := wampmsg.Dict{}
	for k, v := range base {
		out[k] = v
	}
	for _, fn := range extra {
		fn(out)
	}
	return out
}
