package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// LengthSize is the size of every length prefix and count on the wire.
	LengthSize = 4

	// DefaultChunkSize bounds the number of bytes requested by one read.
	DefaultChunkSize = 4096

	// InvalidAlgorithm is the plain-text reply, without a length prefix, to
	// an algorithm name the server does not accept.
	InvalidAlgorithm = "Invalid hashing algorithm\n"
)

var (
	// ErrTruncated is returned when fewer than LengthSize bytes are
	// available for a length prefix.
	ErrTruncated = errors.New("wire: truncated length prefix")

	// ErrConnectionClosed is returned when the peer stops sending before a
	// payload of the announced size has been received.
	ErrConnectionClosed = errors.New("wire: connection closed before payload complete")
)

// ReadUint32 reads exactly LengthSize bytes and decodes them as a
// little-endian uint32.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [LengthSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, ErrTruncated
		}
		return 0, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// CopyPayload copies exactly n bytes from src to dst using reads of at most
// chunk bytes. It returns the number of bytes written to dst.
//
// A read that yields no data, or io.EOF before n bytes arrived, is reported
// as ErrConnectionClosed. Any other read error is wrapped and returned as is
// so callers can tell a deadline from a hang-up.
func CopyPayload(dst io.Writer, src io.Reader, n uint64, chunk int) (int64, error) {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	bufSize := uint64(chunk)
	if n < bufSize {
		bufSize = n
	}
	buf := make([]byte, bufSize)

	var copied int64
	for remaining := n; remaining > 0; {
		want := bufSize
		if remaining < want {
			want = remaining
		}
		got, err := src.Read(buf[:want])
		if got > 0 {
			if _, werr := dst.Write(buf[:got]); werr != nil {
				return copied, fmt.Errorf("write payload: %w", werr)
			}
			copied += int64(got)
			remaining -= uint64(got)
		}
		if remaining == 0 {
			break
		}
		switch {
		case err == nil && got == 0:
			return copied, ErrConnectionClosed
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return copied, ErrConnectionClosed
		case err != nil:
			return copied, fmt.Errorf("read payload: %w", err)
		}
	}
	return copied, nil
}

// ReadFrame reads a length prefix followed by exactly that many bytes.
// The whole payload is buffered, so it suits small frames read by tools
// and peers. The server never buffers a frame: sessions stream file
// payloads through CopyPayload and bound the algorithm name themselves.
func ReadFrame(r io.Reader, chunk int) ([]byte, error) {
	n, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := CopyPayload(&buf, r, uint64(n), chunk); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteUint32 writes v as a little-endian uint32.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [LengthSize]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteFrame writes payload preceded by its length.
func WriteFrame(w io.Writer, payload []byte) error {
	if uint64(len(payload)) > uint64(^uint32(0)) {
		return fmt.Errorf("wire: payload of %d bytes exceeds frame limit", len(payload))
	}
	if err := WriteUint32(w, uint32(len(payload))); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// WritePayload writes n as a length prefix and then streams exactly n bytes
// from r. A source shorter than n is an error; the frame is then corrupt
// and the connection must not be reused.
func WritePayload(w io.Writer, r io.Reader, n int64) error {
	if n < 0 || uint64(n) > uint64(^uint32(0)) {
		return fmt.Errorf("wire: payload of %d bytes exceeds frame limit", n)
	}
	if err := WriteUint32(w, uint32(n)); err != nil {
		return err
	}
	if _, err := io.CopyN(w, r, n); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}
