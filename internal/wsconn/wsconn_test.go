package wsconn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
)

// feedServer accepts one websocket connection at a time and runs serve on it,
// mimicking the push-only liquidity feed the client exists for.
func feedServer(t *testing.T, serve func(ctx context.Context, conn *websocket.Conn)) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		serve(r.Context(), conn)
	}))
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func quietConfig(url string) Config {
	cfg := DefaultConfig(url, "test")
	cfg.PingInterval = 0
	cfg.InitialBackoff = 10 * time.Millisecond
	cfg.MaxBackoff = 50 * time.Millisecond
	return cfg
}

func TestConnectAndReceivePushes(t *testing.T) {
	srv, url := feedServer(t, func(ctx context.Context, conn *websocket.Conn) {
		for _, msg := range []string{`{"seq":1}`, `{"seq":2}`, `{"seq":3}`} {
			if err := conn.Write(ctx, websocket.MessageText, []byte(msg)); err != nil {
				return
			}
		}
		time.Sleep(200 * time.Millisecond)
	})
	defer srv.Close()

	client, err := New(quietConfig(url))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	var mu sync.Mutex
	var got []string
	received := make(chan struct{}, 8)
	client.OnMessage(func(_ context.Context, msg []byte) {
		mu.Lock()
		got = append(got, string(msg))
		mu.Unlock()
		received <- struct{}{}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !client.IsConnected() {
		t.Error("client should report connected")
	}

	for i := 0; i < 3; i++ {
		select {
		case <-received:
		case <-ctx.Done():
			t.Fatalf("received %d of 3 messages", i)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0] != `{"seq":1}` || got[2] != `{"seq":3}` {
		t.Errorf("messages = %v", got)
	}
}

func TestReconnectAfterServerDrop(t *testing.T) {
	var conns atomic.Int32
	srv, url := feedServer(t, func(ctx context.Context, conn *websocket.Conn) {
		n := conns.Add(1)
		if n == 1 {
			// First connection dies immediately; the client must dial again.
			conn.Close(websocket.StatusInternalError, "going away")
			return
		}
		conn.Write(ctx, websocket.MessageText, []byte(`{"after":"reconnect"}`))
		time.Sleep(200 * time.Millisecond)
	})
	defer srv.Close()

	client, err := New(quietConfig(url))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	received := make(chan string, 1)
	client.OnMessage(func(_ context.Context, msg []byte) {
		select {
		case received <- string(msg):
		default:
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	select {
	case msg := <-received:
		if msg != `{"after":"reconnect"}` {
			t.Errorf("message = %q", msg)
		}
	case <-ctx.Done():
		t.Fatal("no message after reconnect")
	}

	if client.Reconnects() < 1 {
		t.Errorf("reconnects = %d, want >= 1", client.Reconnects())
	}
}

func TestReconnectBudgetExhausted(t *testing.T) {
	srv, url := feedServer(t, func(_ context.Context, conn *websocket.Conn) {
		conn.Close(websocket.StatusInternalError, "going away")
	})
	defer srv.Close()

	cfg := quietConfig(url)
	cfg.MaxReconnects = 2

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	gaveUp := make(chan struct{})
	var once sync.Once
	client.OnStateChange(func(state State, _ error) {
		if state == StateDisconnected {
			once.Do(func() { close(gaveUp) })
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	select {
	case <-gaveUp:
	case <-ctx.Done():
		t.Fatal("client never gave up after exhausting reconnects")
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	srv, url := feedServer(t, func(ctx context.Context, conn *websocket.Conn) {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.Write(ctx, websocket.MessageText, []byte(`{}`)); err != nil {
					return
				}
			}
		}
	})
	defer srv.Close()

	client, err := New(quietConfig(url))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var count atomic.Int32
	client.OnMessage(func(_ context.Context, _ []byte) {
		count.Add(1)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	deadline := time.After(time.Second)
	for count.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no messages before close")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if client.State() != StateClosed {
		t.Errorf("state = %s, want closed", client.State())
	}

	// Let any dispatch already in flight finish before sampling.
	time.Sleep(50 * time.Millisecond)
	settled := count.Load()
	time.Sleep(100 * time.Millisecond)
	if count.Load() != settled {
		t.Error("messages still delivered after Close")
	}
}

func TestConnectInvalidURL(t *testing.T) {
	cfg := quietConfig("ws://127.0.0.1:1")
	cfg.MaxReconnects = 1

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Connect(ctx); err == nil {
		t.Error("Connect should fail against a closed port")
	}
}
