package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"walksim/pkg/geo"
	"walksim/pkg/sink/tcpsink"
	"walksim/pkg/sink/wssink"
)

// receiver records the last position per session and logs every update.
type receiver struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	last     map[string]geo.Coordinate
	received int
	clears   int
}

func newReceiver() *receiver {
	return &receiver{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		last:     make(map[string]geo.Coordinate),
	}
}

func (r *receiver) record(session string, c geo.Coordinate) {
	r.mu.Lock()
	r.last[session] = c
	r.received++
	n := r.received
	r.mu.Unlock()
	slog.Info("Position", "session", session, "coord", c.String(), "total", n)
}

func (r *receiver) clear(session string) {
	r.mu.Lock()
	delete(r.last, session)
	r.clears++
	r.mu.Unlock()
	slog.Info("Simulation cleared", "session", session)
}

// Stats returns received positions and clears.
func (r *receiver) Stats() (received, clears int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.received, r.clears
}

// ServeHTTP accepts one WebSocket session.
func (r *receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		slog.Warn("Upgrade failed", "remote", req.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	var lastSeq uint64
	for {
		var m wssink.Message
		if err := conn.ReadJSON(&m); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("WebSocket session ended", "remote", req.RemoteAddr, "error", err)
			}
			return
		}
		if lastSeq != 0 && m.Seq != lastSeq+1 {
			slog.Warn("Sequence gap", "session", m.Session, "expected", lastSeq+1, "got", m.Seq)
		}
		lastSeq = m.Seq

		switch m.Type {
		case wssink.TypeHello:
			slog.Info("Session opened", "session", m.Session, "remote", req.RemoteAddr)
		case wssink.TypeSet:
			r.record(m.Session, geo.Coordinate{Lat: m.Lat, Lon: m.Lon})
		case wssink.TypeClear:
			r.clear(m.Session)
		default:
			slog.Warn("Unknown message", "type", m.Type)
		}
	}
}

// serveTCP accepts binary-framed sessions until ctx is done.
func (r *receiver) serveTCP(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go r.handleTCP(conn)
	}
}

func (r *receiver) handleTCP(conn net.Conn) {
	defer conn.Close()
	br := bufio.NewReader(conn)

	device, err := tcpsink.ReadLogin(br)
	if err != nil {
		slog.Warn("TCP login failed", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	slog.Info("Session opened", "session", device, "remote", conn.RemoteAddr())

	for {
		f, err := tcpsink.ReadFrame(br)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			slog.Warn("TCP session ended", "session", device, "error", err)
			return
		}
		switch f.Kind {
		case tcpsink.KindPosition:
			r.record(device, f.Coordinate)
		case tcpsink.KindClear:
			r.clear(device)
		}
	}
}
