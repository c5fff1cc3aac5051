// Package wssink delivers simulated positions to a receiver over a WebSocket.
package wssink

import "time"

// Message types exchanged with the receiver.
const (
	TypeHello = "hello"
	TypeSet   = "set"
	TypeClear = "clear"
)

// Message is one JSON frame on the wire.
type Message struct {
	Type      string    `json:"type"`
	Session   string    `json:"session"`
	Seq       uint64    `json:"seq"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timestamp time.Time `json:"ts"`
}
