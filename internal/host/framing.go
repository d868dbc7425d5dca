package host

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Browser native messaging limits, in bytes.
const (
	MaxOutboundBytes = 1 << 20
	MaxInboundBytes  = 64 << 20
)

// ErrMessageTooLarge is returned when a frame exceeds its direction's limit.
var ErrMessageTooLarge = errors.New("native message too large")

// ReadMessage reads one length-prefixed JSON frame from r and decodes it
// into v. It returns io.EOF when r is exhausted before a new frame starts.
func ReadMessage(r io.Reader, v any) error {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("read frame header: %w", err)
		}
		return err
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > MaxInboundBytes {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("read frame body: %w", err)
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// WriteMessage encodes v as JSON and writes it as one frame.
func WriteMessage(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if len(payload) > MaxOutboundBytes {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(payload))
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// DecodeError reports a well-framed message whose payload is not valid JSON
// for the expected type. The stream stays usable after it.
type DecodeError struct{ Err error }

func (e *DecodeError) Error() string { return "decode message: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }
