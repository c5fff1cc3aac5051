package tracker

import (
	"errors"
	"testing"
)

func TestTracker(t *testing.T) {
	tr := New()
	transport := "websocket"

	// Test Initial State
	stats := tr.Snapshot()
	if len(stats) != 0 {
		t.Errorf("Expected empty stats, got %d", len(stats))
	}

	tr.TrackConnect(transport, nil)
	tr.TrackConnect(transport, errors.New("refused"))
	tr.TrackSent(transport)
	tr.TrackSent(transport)
	tr.TrackFailure(transport)
	tr.TrackClear(transport)

	stats = tr.Snapshot()
	s, ok := stats[transport]
	if !ok {
		t.Fatalf("Expected stats for transport %s", transport)
	}

	if s.Sent != 2 {
		t.Errorf("Expected 2 Sent, got %d", s.Sent)
	}
	if s.Failures != 1 {
		t.Errorf("Expected 1 Failure, got %d", s.Failures)
	}
	if s.Connects != 1 || s.ConnectFail != 1 {
		t.Errorf("Expected 1 connect and 1 connect failure, got %d/%d", s.Connects, s.ConnectFail)
	}
	if s.Clears != 1 {
		t.Errorf("Expected 1 Clear, got %d", s.Clears)
	}
	if s.LastSend().IsZero() {
		t.Error("Expected LastSend to be set")
	}
}

func TestReset(t *testing.T) {
	tr := New()
	tr.TrackSent("tcp")

	tr.Reset()

	stats := tr.Snapshot()
	s, ok := stats["tcp"]
	if !ok {
		t.Fatal("Post-Reset: transport should still exist in map")
	}
	if s.Sent != 0 {
		t.Errorf("Post-Reset: Sent should be 0, got %d", s.Sent)
	}
	if !s.LastSend().IsZero() {
		t.Error("Post-Reset: LastSend should be zero")
	}
}
