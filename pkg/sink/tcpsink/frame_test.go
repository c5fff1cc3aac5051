package tcpsink

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walksim/pkg/geo"
)

func TestCRC16(t *testing.T) {
	// CRC-16/ARC check value
	assert.Equal(t, uint16(0xBB3D), CRC16([]byte("123456789")))
	assert.Equal(t, uint16(0), CRC16(nil))
}

func TestLoginFrame(t *testing.T) {
	b, err := LoginFrame("356307042441013")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x0F}, b[:2])

	id, err := ReadLogin(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, "356307042441013", id)

	_, err = LoginFrame("")
	assert.Error(t, err)
}

func TestPositionFrame_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 123e6, time.UTC)
	tests := []geo.Coordinate{
		{Lat: 37.555946, Lon: 126.972317},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 40.7128, Lon: -74.0060},
		{Lat: -90, Lon: -180},
	}
	for _, c := range tests {
		t.Run(c.String(), func(t *testing.T) {
			f, err := ReadFrame(bytes.NewReader(PositionFrame(c, ts)))
			require.NoError(t, err)
			assert.Equal(t, KindPosition, f.Kind)
			assert.True(t, ts.Equal(f.Timestamp))
			assert.InDelta(t, c.Lat, f.Coordinate.Lat, 1e-7)
			assert.InDelta(t, c.Lon, f.Coordinate.Lon, 1e-7)
		})
	}
}

func TestReadFrame_Rejects(t *testing.T) {
	good := PositionFrame(geo.Coordinate{Lat: 1, Lon: 2}, time.Now())

	corrupt := bytes.Clone(good)
	corrupt[12] ^= 0xFF
	_, err := ReadFrame(bytes.NewReader(corrupt))
	assert.ErrorIs(t, err, ErrChecksum)

	badPreamble := bytes.Clone(good)
	badPreamble[0] = 1
	_, err = ReadFrame(bytes.NewReader(badPreamble))
	assert.ErrorIs(t, err, ErrBadFrame)

	_, err = ReadFrame(bytes.NewReader(good[:10]))
	assert.Error(t, err)

	f, err := ReadFrame(bytes.NewReader(ClearFrame(time.Now())))
	require.NoError(t, err)
	assert.Equal(t, KindClear, f.Kind)
}
