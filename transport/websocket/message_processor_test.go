package websocket

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConn(buf *bytes.Buffer) *connection {
	return &connection{
		bufrw: bufio.NewReadWriter(bufio.NewReader(buf), bufio.NewWriter(buf)),
	}
}

func TestWriteFrame_ReadRequestRoundTrip(t *testing.T) {
	roundTrip := func(t *testing.T, payload []byte) {
		t.Helper()

		// Given: a connection over an in-memory buffer
		var buf bytes.Buffer
		conn := newTestConn(&buf)

		// When: writing a final text frame and reading it back
		err := writeFrame(conn.bufrw, frame{
			isFin:   true,
			opCode:  opText,
			length:  uint64(len(payload)),
			payload: payload,
		})
		require.NoError(t, err)

		got, err := readRequest(conn.bufrw)

		// Then: the payload survives unchanged
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	}

	t.Run("Short frame", func(t *testing.T) {
		roundTrip(t, []byte(`{"action":"game:new"}`))
	})

	t.Run("16-bit extended length", func(t *testing.T) {
		roundTrip(t, bytes.Repeat([]byte("a"), 300))
	})

	t.Run("64-bit extended length", func(t *testing.T) {
		roundTrip(t, bytes.Repeat([]byte("b"), 70_000))
	})
}

func TestReadRequest_MaskedClientFrame(t *testing.T) {
	// Given: a masked client frame built by hand per RFC 6455
	payload := []byte(`{"action":"connect"}`)
	mask := []byte{0x1f, 0x2e, 0x3d, 0x4c}

	raw := []byte{finBit | opText, maskBit | byte(len(payload))}
	raw = append(raw, mask...)
	for i, b := range payload {
		raw = append(raw, b^mask[i%4])
	}

	conn := newTestConn(bytes.NewBuffer(raw))

	// When: reading the frame
	got, err := readRequest(conn.bufrw)

	// Then: the payload is unmasked
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadRequest_CloseFrame(t *testing.T) {
	// Given: a close frame
	conn := newTestConn(bytes.NewBuffer([]byte{finBit | opClose, 0}))

	// When: reading it
	_, err := readRequest(conn.bufrw)

	// Then: the connection counts as closed
	assert.ErrorIs(t, err, errConnectionClosed)
}

func TestReadRequest_SkipsControlFrames(t *testing.T) {
	// Given: a ping frame
	conn := newTestConn(bytes.NewBuffer([]byte{finBit | 0x9, 0}))

	// When: reading it
	got, err := readRequest(conn.bufrw)

	// Then: the frame is skipped without error
	require.NoError(t, err)
	assert.Nil(t, got)
}
