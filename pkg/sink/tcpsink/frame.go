package tcpsink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"walksim/pkg/geo"
)

// Frame kinds carried in the first byte of a data frame.
const (
	KindPosition byte = 0x01
	KindClear    byte = 0x02
)

const (
	headerLen   = 8 // 4 zero bytes + 4-byte data length
	trailerLen  = 4 // CRC-16 widened to 32 bits
	positionLen = 1 + 8 + 4 + 4
	clearLen    = 1 + 8
	coordScale  = 1e7
	maxDeviceID = math.MaxUint16
)

var (
	// ErrBadFrame is returned when a frame fails to decode.
	ErrBadFrame = errors.New("malformed frame")
	// ErrChecksum is returned when the trailer does not match the payload.
	ErrChecksum = errors.New("checksum mismatch")
)

// Frame is a decoded data frame.
type Frame struct {
	Kind       byte
	Timestamp  time.Time
	Coordinate geo.Coordinate
}

// LoginFrame encodes the device id behind a 2-byte big-endian length.
func LoginFrame(deviceID string) ([]byte, error) {
	if deviceID == "" || len(deviceID) > maxDeviceID {
		return nil, fmt.Errorf("device id must be 1..%d bytes, got %d", maxDeviceID, len(deviceID))
	}
	b := make([]byte, 2+len(deviceID))
	binary.BigEndian.PutUint16(b[0:2], uint16(len(deviceID)))
	copy(b[2:], deviceID)
	return b, nil
}

// PositionFrame encodes a position update. Coordinates are fixed point, degrees × 1e7, lon first.
func PositionFrame(c geo.Coordinate, ts time.Time) []byte {
	data := make([]byte, positionLen)
	data[0] = KindPosition
	binary.BigEndian.PutUint64(data[1:9], uint64(ts.UnixMilli()))
	binary.BigEndian.PutUint32(data[9:13], uint32(int32(math.Round(c.Lon*coordScale))))
	binary.BigEndian.PutUint32(data[13:17], uint32(int32(math.Round(c.Lat*coordScale))))
	return wrap(data)
}

// ClearFrame encodes the request to stop location simulation.
func ClearFrame(ts time.Time) []byte {
	data := make([]byte, clearLen)
	data[0] = KindClear
	binary.BigEndian.PutUint64(data[1:9], uint64(ts.UnixMilli()))
	return wrap(data)
}

func wrap(data []byte) []byte {
	pkt := make([]byte, headerLen+len(data)+trailerLen)
	binary.BigEndian.PutUint32(pkt[4:8], uint32(len(data)))
	copy(pkt[headerLen:], data)
	binary.BigEndian.PutUint32(pkt[len(pkt)-trailerLen:], uint32(CRC16(data)))
	return pkt
}

// ReadLogin reads a login frame and returns the device id.
func ReadLogin(r io.Reader) (string, error) {
	var n [2]byte
	if _, err := io.ReadFull(r, n[:]); err != nil {
		return "", err
	}
	id := make([]byte, binary.BigEndian.Uint16(n[:]))
	if _, err := io.ReadFull(r, id); err != nil {
		return "", err
	}
	return string(id), nil
}

// ReadFrame reads and verifies one data frame.
func ReadFrame(r io.Reader) (Frame, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Frame{}, err
	}
	if binary.BigEndian.Uint32(hdr[0:4]) != 0 {
		return Frame{}, fmt.Errorf("%w: bad preamble", ErrBadFrame)
	}
	n := binary.BigEndian.Uint32(hdr[4:8])
	if n != positionLen && n != clearLen {
		return Frame{}, fmt.Errorf("%w: data length %d", ErrBadFrame, n)
	}

	body := make([]byte, int(n)+trailerLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return Frame{}, err
	}
	data := body[:n]
	if got := binary.BigEndian.Uint32(body[n:]); got != uint32(CRC16(data)) {
		return Frame{}, fmt.Errorf("%w: got %04X want %04X", ErrChecksum, got, CRC16(data))
	}

	f := Frame{
		Kind:      data[0],
		Timestamp: time.UnixMilli(int64(binary.BigEndian.Uint64(data[1:9]))).UTC(),
	}
	switch f.Kind {
	case KindPosition:
		if n != positionLen {
			return Frame{}, fmt.Errorf("%w: short position frame", ErrBadFrame)
		}
		f.Coordinate = geo.Coordinate{
			Lon: float64(int32(binary.BigEndian.Uint32(data[9:13]))) / coordScale,
			Lat: float64(int32(binary.BigEndian.Uint32(data[13:17]))) / coordScale,
		}
	case KindClear:
	default:
		return Frame{}, fmt.Errorf("%w: unknown kind 0x%02X", ErrBadFrame, f.Kind)
	}
	return f, nil
}

// CRC16 computes CRC-16/IBM (reflected poly 0xA001, init 0).
func CRC16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b)
		for range 8 {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
