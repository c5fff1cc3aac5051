package wssink

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walksim/pkg/geo"
	"walksim/pkg/sink"
	"walksim/pkg/tracker"
)

type receiver struct {
	mu       sync.Mutex
	messages []Message
	done     chan struct{}
}

func newReceiver(t *testing.T) (*receiver, string, int) {
	t.Helper()
	r := &receiver{done: make(chan struct{})}
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/location" {
			http.NotFound(w, req)
			return
		}
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		defer close(r.done)
		for {
			var m Message
			if err := conn.ReadJSON(&m); err != nil {
				return
			}
			r.mu.Lock()
			r.messages = append(r.messages, m)
			r.mu.Unlock()
		}
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return r, host, port
}

func (r *receiver) snapshot() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]Message, len(r.messages))
	copy(cp, r.messages)
	return cp
}

func TestClient_RoundTrip(t *testing.T) {
	recv, host, port := newReceiver(t)
	tr := tracker.New()
	client := NewClient(Config{}, tr)
	ctx := context.Background()

	require.NoError(t, client.Connect(ctx, host, port))
	assert.Equal(t, sink.StateConnected, client.GetState())
	assert.NotEmpty(t, client.SessionID())

	points := []geo.Coordinate{
		{Lat: 37.555946, Lon: 126.972317},
		{Lat: 37.559911, Lon: 126.977103},
	}
	for _, p := range points {
		require.NoError(t, client.Set(ctx, p))
	}
	require.NoError(t, client.Clear(ctx))
	require.NoError(t, client.Close())
	assert.Equal(t, sink.StateClosed, client.GetState())

	select {
	case <-recv.done:
	case <-time.After(2 * time.Second):
		t.Fatal("receiver did not observe close")
	}

	msgs := recv.snapshot()
	require.Len(t, msgs, 4)
	assert.Equal(t, TypeHello, msgs[0].Type)
	assert.Equal(t, TypeSet, msgs[1].Type)
	assert.Equal(t, points[0].Lat, msgs[1].Lat)
	assert.Equal(t, points[1].Lon, msgs[2].Lon)
	assert.Equal(t, TypeClear, msgs[3].Type)
	for i, m := range msgs {
		assert.Equal(t, uint64(i+1), m.Seq, "sequence numbers are contiguous")
		assert.Equal(t, client.SessionID(), m.Session)
	}

	stats := tr.Snapshot()[Name]
	assert.Equal(t, int64(2), stats.Sent)
	assert.Equal(t, int64(1), stats.Connects)
}

func TestClient_ConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	client := NewClient(Config{DialTimeout: time.Second}, nil)
	err = client.Connect(context.Background(), "127.0.0.1", port)
	assert.True(t, errors.Is(err, sink.ErrConnection), "got %v", err)
	assert.Equal(t, sink.StateDisconnected, client.GetState())
}

func TestClient_SetBeforeConnect(t *testing.T) {
	client := NewClient(Config{}, nil)
	err := client.Set(context.Background(), geo.Coordinate{})
	assert.ErrorIs(t, err, sink.ErrTransport)
	assert.ErrorIs(t, err, sink.ErrNotConnected)

	// Close on a never-connected client is harmless
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}

func TestMessage_EquatorAndPrimeMeridian(t *testing.T) {
	b, err := json.Marshal(Message{Type: TypeSet, Session: "s1", Seq: 1, Lat: 0, Lon: 0})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Contains(t, raw, "lat", "0 degrees latitude is a real position")
	assert.Contains(t, raw, "lon", "0 degrees longitude is a real position")
	assert.Equal(t, 0.0, raw["lat"])
}
