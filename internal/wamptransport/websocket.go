package wamptransport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/proxy"

	"github.com/wampio/gowamp-client/internal/wampserialize"
)

const (
	// WAMP's WebSocket subprotocol names, one per serializer. The router
	// advertises these in the handshake so both ends agree on wire
	// format without a separate negotiation message.
	subprotocolJSON    = "wamp.2.json"
	subprotocolMsgPack = "wamp.2.msgpack"

	defaultReadBufferSize  = 64 * 1024
	defaultWriteBufferSize = 64 * 1024
	defaultReadLimit       = 16 * 1024 * 1024
	defaultHandshakeTimeout = 10 * time.Second
)

// WebSocketTransport implements Transport over a WAMP WebSocket
// subprotocol connection.
type WebSocketTransport struct {
	url        string
	serializer wampserialize.Serializer
	proxyURL   string

	conn   *websocket.Conn
	connMu sync.Mutex

	onConnected    func(wampserialize.Serializer)
	onReceived     func([]byte)
	onDisconnected func(err error, reason string)

	logger *slog.Logger
}

// NewWebSocketTransport creates a transport that dials routerURL using the
// given serializer's wire format. logger may be nil, in which case
// slog.Default() is used.
func NewWebSocketTransport(routerURL string, serializer wampserialize.Serializer, logger *slog.Logger) *WebSocketTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketTransport{
		url:        routerURL,
		serializer: serializer,
		logger:     logger,
	}
}

// SetProxy routes the dial through a SOCKS5 proxy, e.g.
// "socks5://127.0.0.1:1080". Must be called before Connect.
func (t *WebSocketTransport) SetProxy(proxyURL string) {
	t.proxyURL = proxyURL
}

// proxyDialContext builds a DialContext that tunnels through t.proxyURL
// via golang.org/x/net/proxy, or nil if no proxy is configured.
func (t *WebSocketTransport) proxyDialContext() (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	if t.proxyURL == "" {
		return nil, nil
	}
	u, err := url.Parse(t.proxyURL)
	if err != nil {
		return nil, fmt.Errorf("wamptransport: parse proxy url: %w", err)
	}
	dialer, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("wamptransport: build proxy dialer: %w", err)
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if ctxDialer, ok := dialer.(proxy.ContextDialer); ok {
			return ctxDialer.DialContext(ctx, network, addr)
		}
		return dialer.Dial(network, addr)
	}, nil
}

func (t *WebSocketTransport) OnConnected(fn func(wampserialize.Serializer)) { t.onConnected = fn }
func (t *WebSocketTransport) OnReceived(fn func([]byte))                   { t.onReceived = fn }
func (t *WebSocketTransport) OnDisconnected(fn func(err error, reason string)) {
	t.onDisconnected = fn
}

// Connect dials the router. The WAMP subprotocol is negotiated from the
// configured serializer so the router and client agree on wire format
// without an extra round trip.
func (t *WebSocketTransport) Connect() error {
	if _, err := url.Parse(t.url); err != nil {
		return fmt.Errorf("wamptransport: parse router url: %w", err)
	}

	subprotocol := subprotocolJSON
	if t.serializer.Binary() {
		subprotocol = subprotocolMsgPack
	}

	netDial, err := t.proxyDialContext()
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{
		ReadBufferSize:   defaultReadBufferSize,
		WriteBufferSize:  defaultWriteBufferSize,
		Subprotocols:     []string{subprotocol},
		HandshakeTimeout: defaultHandshakeTimeout,
		NetDialContext:   netDial,
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultHandshakeTimeout)
	defer cancel()

	t.logger.Debug("dialing wamp router", "url", t.url, "subprotocol", subprotocol)

	conn, _, err := dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return fmt.Errorf("wamptransport: dial: %w", err)
	}
	conn.SetReadLimit(defaultReadLimit)

	t.connMu.Lock()
	t.conn = conn
	t.connMu.Unlock()

	go t.readLoop()

	if t.onConnected != nil {
		t.onConnected(t.serializer)
	}
	return nil
}

// Disconnect closes the connection with a normal-closure control frame
// carrying reason as its informational text.
func (t *WebSocketTransport) Disconnect(reason string) {
	t.connMu.Lock()
	conn := t.conn
	t.connMu.Unlock()
	if conn == nil {
		return
	}

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason), deadline)
	_ = conn.Close()
}

// Send writes one frame using the binary or text opcode per the
// serializer's wire format.
func (t *WebSocketTransport) Send(data []byte) error {
	t.connMu.Lock()
	conn := t.conn
	t.connMu.Unlock()
	if conn == nil {
		return fmt.Errorf("wamptransport: not connected")
	}

	msgType := websocket.TextMessage
	if t.serializer.Binary() {
		msgType = websocket.BinaryMessage
	}

	t.connMu.Lock()
	err := conn.WriteMessage(msgType, data)
	t.connMu.Unlock()
	if err != nil {
		return fmt.Errorf("wamptransport: send: %w", err)
	}
	return nil
}

// readLoop reads frames until the connection closes, then fires
// onDisconnected. Each Connect starts one readLoop, so onDisconnected
// fires exactly once per connection, whether the close was local or
// remote.
func (t *WebSocketTransport) readLoop() {
	var closeErr error
	var closeReason string

	for {
		t.connMu.Lock()
		conn := t.conn
		t.connMu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if ce, ok := err.(*websocket.CloseError); ok {
				closeReason = ce.Text
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.logger.Debug("wamp transport closed normally")
			} else {
				t.logger.Debug("wamp transport read error", "error", err)
				closeErr = err
			}
			break
		}

		if t.onReceived != nil {
			t.onReceived(data)
		}
	}

	t.connMu.Lock()
	t.conn = nil
	t.connMu.Unlock()

	if t.onDisconnected != nil {
		t.onDisconnected(closeErr, closeReason)
	}
}
