// Package wamptransport supplies the byte-stream collaborator the session
// layer drives: connect/disconnect/send, with connected/received/disconnected
// callbacks delivered back into the session. internal/wampclient treats
// Transport as an interface; WebSocketTransport is the concrete
// implementation this repo ships.
package wamptransport

import "github.com/wampio/gowamp-client/internal/wampserialize"

// Transport moves serialized WAMP frames to and from a router. Connect and
// Disconnect are synchronous from the caller's perspective. OnConnected
// is invoked from within Connect; OnReceived and OnDisconnected are
// invoked from the transport's own read goroutine. All three must be
// installed before Connect is called.
type Transport interface {
	// Connect dials the router and, on success, arranges for the
	// OnConnected callback to fire with the negotiated Serializer.
	Connect() error

	// Disconnect closes the connection. reason is advisory and may be
	// empty; it has no wire effect for WebSocketTransport beyond the
	// close frame's informational text.
	Disconnect(reason string)

	// Send writes one already-serialized frame.
	Send(data []byte) error

	// OnConnected installs the callback fired once the transport is
	// ready to send and has determined which Serializer governs the
	// connection.
	OnConnected(fn func(wampserialize.Serializer))

	// OnReceived installs the callback fired once per inbound frame.
	OnReceived(fn func(data []byte))

	// OnDisconnected installs the callback fired exactly once when the
	// connection ends, whether by local Disconnect, remote close, or
	// read error. err is non-nil for abnormal closes; reason carries a
	// close-frame reason string when the peer supplied one.
	OnDisconnected(fn func(err error, reason string))
}
