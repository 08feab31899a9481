package websocket

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gridlockgames/tictactoe-backend/internal/entity"
)

// Opcodes and layout follow RFC 6455 section 5.2.
const (
	opText  byte = 0x1
	opClose byte = 0x8

	finBit  byte = 0x80
	maskBit byte = 0x80
)

var errConnectionClosed = errors.New("connection closed by client")

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	opCode  byte
	length  uint64
	payload []byte
}

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload carries the request and response fields shared by all actions.
type Payload struct {
	GameID string       `json:"game_id,omitempty"`
	Cell   *int         `json:"cell,omitempty"`
	Game   *entity.Game `json:"game,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func (that *Server) sendMessage(conn *connection, action string, payload Payload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	responseBytes, err := json.Marshal(Message{Action: action, Payload: payloadBytes})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()

	err = writeFrame(conn.bufrw, frame{
		isFin:   true,
		opCode:  opText,
		length:  uint64(len(responseBytes)),
		payload: responseBytes,
	})
	if err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(conn *connection, action, errorMsg string) error {
	if err := that.sendMessage(conn, action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

func writeFrame(bufrw *bufio.ReadWriter, frameData frame) error {
	header := make([]byte, 2, 10)
	header[0] = frameData.opCode
	if frameData.isFin {
		header[0] |= finBit
	}

	switch {
	case frameData.length < 126:
		header[1] = byte(frameData.length)
	case frameData.length < 1<<16:
		header[1] = 126
		header = binary.BigEndian.AppendUint16(header, uint16(frameData.length))
	default:
		header[1] = 127
		header = binary.BigEndian.AppendUint64(header, frameData.length)
	}

	if _, err := bufrw.Write(header); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}

	if _, err := bufrw.Write(frameData.payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}

	if err := bufrw.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

// readRequest returns the next text payload from the client. A nil
// payload with a nil error marks a frame to skip.
func readRequest(bufrw *bufio.ReadWriter) ([]byte, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(bufrw, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	isFin := header[0]&finBit != 0
	opCode := header[0] & 0x0f
	masked := header[1]&maskBit != 0
	payloadLen := header[1] & 0x7f

	size, err := readPayloadLength(bufrw, payloadLen)
	if err != nil {
		return nil, err
	}

	mask, err := readMask(bufrw, masked)
	if err != nil {
		return nil, err
	}

	payload, err := readData(bufrw, size, mask)
	if err != nil {
		return nil, err
	}

	if opCode == opClose {
		return nil, errConnectionClosed
	}

	if !isFin || opCode != opText {
		return nil, nil
	}

	return payload, nil
}

func readPayloadLength(bufrw *bufio.ReadWriter, payloadLen byte) (uint64, error) {
	switch payloadLen {
	case 126:
		length := make([]byte, 2)
		if _, err := io.ReadFull(bufrw, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return uint64(binary.BigEndian.Uint16(length)), nil
	case 127:
		length := make([]byte, 8)
		if _, err := io.ReadFull(bufrw, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return binary.BigEndian.Uint64(length), nil
	default:
		return uint64(payloadLen), nil
	}
}

func readMask(bufrw *bufio.ReadWriter, masked bool) ([]byte, error) {
	if !masked {
		return nil, nil
	}

	mask := make([]byte, 4)
	if _, err := io.ReadFull(bufrw, mask); err != nil {
		return nil, fmt.Errorf("failed to read mask: %w", err)
	}

	return mask, nil
}

func readData(bufrw *bufio.ReadWriter, size uint64, mask []byte) ([]byte, error) {
	payload := make([]byte, size)
	if _, err := io.ReadFull(bufrw, payload); err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	if mask != nil {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}

	return payload, nil
}
