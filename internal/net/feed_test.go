package net

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/feed", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 2s")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastReachesSpectator(t *testing.T) {
	fs, err := NewFeedServer("", 8, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(fs.Handler())
	defer ts.Close()
	defer fs.Shutdown(context.Background())

	conn := dial(t, ts.URL)
	waitFor(t, func() bool { return fs.Clients() == 1 })

	want := Snapshot{Frame: 12, Phase: "recruiting_waves", Section: 2, Live: 3, PlayerX: 210.5}
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	fs.Broadcast(data)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if mt != websocket.TextMessage {
		t.Fatalf("message type = %d, want text", mt)
	}
	var got Snapshot
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != want {
		t.Fatalf("snapshot = %+v, want %+v", got, want)
	}
}

func TestSlowClientDropped(t *testing.T) {
	conns := make(chan *websocket.Conn, 1)
	up := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		conns <- c
	}))
	defer ts.Close()
	dial(t, ts.URL)

	var serverSide *websocket.Conn
	select {
	case serverSide = <-conns:
	case <-time.After(2 * time.Second):
		t.Fatal("no server connection")
	}

	// writer never started: the queue fills and the next frame drops the client
	c := newClient(serverSide, 1, 2, zap.NewNop())
	c.Send([]byte("a"))
	c.Send([]byte("b"))
	if c.IsClosed() {
		t.Fatal("closed before the queue was full")
	}
	c.Send([]byte("c"))
	if !c.IsClosed() {
		t.Fatal("slow client not dropped")
	}
	c.Send([]byte("d")) // no-op after close
}

func TestBroadcastForgetsClosedClients(t *testing.T) {
	fs, err := NewFeedServer("", 8, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(fs.Handler())
	defer ts.Close()

	conn := dial(t, ts.URL)
	waitFor(t, func() bool { return fs.Clients() == 1 })
	conn.Close()

	// the reader notices the peer going away and closes the client
	waitFor(t, func() bool {
		fs.Broadcast([]byte("{}"))
		return fs.Clients() == 0
	})
	if err := fs.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
