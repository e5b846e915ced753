package wamptransport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wampio/gowamp-client/internal/wampserialize"
)

var upgrader = websocket.Upgrader{}

// echoServer starts a WebSocket test server that echoes every frame it
// receives back to the client, and records the negotiated subprotocol.
func echoServer(t *testing.T) (addr string, gotSubprotocol *string) {
	t.Helper()
	var proto string
	gotSubprotocol = &proto

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		proto = conn.Subprotocol()
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), gotSubprotocol
}

func TestWebSocketTransport_ConnectSendReceive(t *testing.T) {
	addr, gotSubprotocol := echoServer(t)

	tr := NewWebSocketTransport(addr, wampserialize.NewJSONSerializer(), nil)

	received := make(chan []byte, 1)
	tr.OnReceived(func(data []byte) { received <- data })

	connected := make(chan wampserialize.Serializer, 1)
	tr.OnConnected(func(s wampserialize.Serializer) { connected <- s })

	if err := tr.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer tr.Disconnect("test done")

	select {
	case <-connected:
	case <-time.After(time.Second):
		t.Fatal("OnConnected not called")
	}

	if *gotSubprotocol != subprotocolJSON {
		t.Errorf("subprotocol = %q, want %q", *gotSubprotocol, subprotocolJSON)
	}

	if err := tr.Send([]byte("hello")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case data := <-received:
		if string(data) != "hello" {
			t.Errorf("received %q, want hello", data)
		}
	case <-time.After(time.Second):
		t.Fatal("OnReceived not called")
	}
}

func TestWebSocketTransport_MsgPackSubprotocol(t *testing.T) {
	addr, gotSubprotocol := echoServer(t)

	tr := NewWebSocketTransport(addr, wampserialize.NewMsgPackSerializer(), nil)
	var wg sync.WaitGroup
	wg.Add(1)
	tr.OnConnected(func(wampserialize.Serializer) { wg.Done() })

	if err := tr.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer tr.Disconnect("")
	wg.Wait()

	if *gotSubprotocol != subprotocolMsgPack {
		t.Errorf("subprotocol = %q, want %q", *gotSubprotocol, subprotocolMsgPack)
	}
}

func TestWebSocketTransport_DisconnectFiresOnDisconnected(t *testing.T) {
	addr, _ := echoServer(t)

	tr := NewWebSocketTransport(addr, wampserialize.NewJSONSerializer(), nil)
	done := make(chan struct{})
	tr.OnDisconnected(func(err error, reason string) { close(done) })

	if err := tr.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	tr.Disconnect("bye")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnDisconnected not called after Disconnect")
	}
}

func TestWebSocketTransport_SendWithoutConnectErrors(t *testing.T) {
	tr := NewWebSocketTransport("ws://127.0.0.1:0", wampserialize.NewJSONSerializer(), nil)
	if err := tr.Send([]byte("x")); err == nil {
		t.Error("expected error sending before Connect")
	}
}
