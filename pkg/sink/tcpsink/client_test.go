package tcpsink

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walksim/pkg/geo"
	"walksim/pkg/sink"
	"walksim/pkg/tracker"
)

type received struct {
	device string
	frames []Frame
	err    error
}

func listen(t *testing.T) (int, <-chan received) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	out := make(chan received, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			out <- received{err: err}
			return
		}
		defer conn.Close()

		var r received
		r.device, r.err = ReadLogin(conn)
		for r.err == nil {
			f, err := ReadFrame(conn)
			if err != nil {
				break
			}
			r.frames = append(r.frames, f)
		}
		out <- r
	}()
	return ln.Addr().(*net.TCPAddr).Port, out
}

func TestClient_Session(t *testing.T) {
	port, out := listen(t)
	tr := tracker.New()
	c := NewClient(Config{DeviceID: "dev-1"}, tr)
	ctx := context.Background()

	require.NoError(t, c.Connect(ctx, "127.0.0.1", port))
	assert.Equal(t, sink.StateConnected, c.GetState())

	start := geo.Coordinate{Lat: 37.555946, Lon: 126.972317}
	end := geo.Coordinate{Lat: 37.559911, Lon: 126.977103}
	require.NoError(t, c.Set(ctx, start))
	require.NoError(t, c.Set(ctx, end))
	require.NoError(t, c.Clear(ctx))
	require.NoError(t, c.Close())
	assert.NoError(t, c.Close())

	var r received
	select {
	case r = <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("receiver timed out")
	}
	require.NoError(t, r.err)
	assert.Equal(t, "dev-1", r.device)
	require.Len(t, r.frames, 3)
	assert.InDelta(t, start.Lat, r.frames[0].Coordinate.Lat, 1e-7)
	assert.InDelta(t, end.Lon, r.frames[1].Coordinate.Lon, 1e-7)
	assert.Equal(t, KindClear, r.frames[2].Kind)

	stats := tr.Snapshot()[Name]
	assert.Equal(t, int64(2), stats.Sent)
	assert.Equal(t, int64(1), stats.Clears)
}

func TestClient_NotConnected(t *testing.T) {
	c := NewClient(Config{}, nil)
	err := c.Set(context.Background(), geo.Coordinate{})
	assert.ErrorIs(t, err, sink.ErrTransport)
	assert.ErrorIs(t, err, sink.ErrNotConnected)
	assert.ErrorIs(t, c.Clear(context.Background()), sink.ErrNotConnected)
}

func TestClient_ConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	tr := tracker.New()
	c := NewClient(Config{DialTimeout: time.Second}, tr)
	err = c.Connect(context.Background(), "127.0.0.1", port)
	assert.ErrorIs(t, err, sink.ErrConnection)
	assert.Equal(t, int64(1), tr.Snapshot()[Name].ConnectFail)
}
