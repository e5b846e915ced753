package wampclient

import "errors"

// ErrNotConnected is surfaced through a request's error callback when an
// API call is issued while the session is not ESTABLISHED, rather than
// silently dropping the call.
var ErrNotConnected = errors.New("wampclient: not connected")

// ErrCancelled is the synthetic cancellation reason given to every
// pending continuation drained on transport disconnect.
var ErrCancelled = errors.New("wampclient: cancelled: transport closed")

// ErrNoChallengeDelegate is logged (and drives a self-abort) when the
// router sends CHALLENGE but no ChallengeDelegate was configured.
var ErrNoChallengeDelegate = errors.New("wampclient: no challenge delegate installed")

// uriNotConnected and uriCancelled are the synthetic error URIs attached
// to drained/rejected continuations. They are not WAMP-reserved URIs —
// no router ever sends them — they exist purely so a caller's error
// callback always receives a (details, uri) pair regardless of whether
// the failure originated locally or from the wire.
const (
	uriNotConnected = "wampclient.error.not_connected"
	uriCancelled    = "wampclient.error.cancelled"
)
