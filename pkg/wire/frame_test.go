package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// recordingReader tracks the largest buffer handed to Read.
type recordingReader struct {
	r       io.Reader
	maxRead int
	calls   int
}

func (r *recordingReader) Read(p []byte) (int, error) {
	r.calls++
	if len(p) > r.maxRead {
		r.maxRead = len(p)
	}
	return r.r.Read(p)
}

// stallingReader returns its data and then zero bytes with no error forever.
type stallingReader struct {
	data  []byte
	calls int
}

func (s *stallingReader) Read(p []byte) (int, error) {
	s.calls++
	if len(s.data) == 0 {
		return 0, nil
	}
	n := copy(p, s.data)
	s.data = s.data[n:]
	return n, nil
}

func TestReadUint32(t *testing.T) {
	got, err := ReadUint32(bytes.NewReader([]byte{0x01, 0x02, 0x00, 0x00}))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0201), got)
}

func TestReadUint32Truncated(t *testing.T) {
	for _, in := range [][]byte{nil, {0x01}, {0x01, 0x02, 0x03}} {
		_, err := ReadUint32(bytes.NewReader(in))
		assert.ErrorIs(t, err, ErrTruncated, "input %v", in)
	}
}

func TestReadUint32SplitAcrossReads(t *testing.T) {
	r := iotest.OneByteReader(bytes.NewReader(le32(7)))
	got, err := ReadUint32(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), got)
}

func TestReadFrame(t *testing.T) {
	payload := []byte("sha256")
	in := append(le32(uint32(len(payload))), payload...)
	in = append(in, []byte("trailing")...)

	r := bytes.NewReader(in)
	got, err := ReadFrame(r, DefaultChunkSize)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, len("trailing"), r.Len(), "frame reader must not consume past the payload")
}

func TestReadFrameEmpty(t *testing.T) {
	got, err := ReadFrame(bytes.NewReader(le32(0)), DefaultChunkSize)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	in := append(le32(10), []byte("short")...)
	_, err := ReadFrame(bytes.NewReader(in), DefaultChunkSize)
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestCopyPayloadBoundedReads(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 10_000)
	rec := &recordingReader{r: bytes.NewReader(payload)}

	var out bytes.Buffer
	n, err := CopyPayload(&out, rec, uint64(len(payload)), 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, out.Bytes())
	assert.LessOrEqual(t, rec.maxRead, 1024)
	assert.GreaterOrEqual(t, rec.calls, 10)
}

func TestCopyPayloadZeroByteReadFailsFast(t *testing.T) {
	s := &stallingReader{data: []byte("abc")}
	_, err := CopyPayload(io.Discard, s, 10, DefaultChunkSize)
	assert.ErrorIs(t, err, ErrConnectionClosed)
	assert.LessOrEqual(t, s.calls, 2)
}

func TestCopyPayloadDataWithEOF(t *testing.T) {
	r := iotest.DataErrReader(bytes.NewReader([]byte("hello")))
	var out bytes.Buffer
	n, err := CopyPayload(&out, r, 5, DefaultChunkSize)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "hello", out.String())
}

func TestCopyPayloadPropagatesReadError(t *testing.T) {
	boom := errors.New("i/o timeout")
	_, err := CopyPayload(io.Discard, iotest.ErrReader(boom), 4, DefaultChunkSize)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrConnectionClosed)
}

func TestCopyPayloadZeroLength(t *testing.T) {
	n, err := CopyPayload(io.Discard, iotest.ErrReader(io.EOF), 0, DefaultChunkSize)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWriteFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("md5\n")))
	require.NoError(t, WriteUint32(&buf, 3))

	assert.Equal(t, append(le32(4), []byte("md5\n")...), buf.Bytes()[:8])

	name, err := ReadFrame(&buf, DefaultChunkSize)
	require.NoError(t, err)
	assert.Equal(t, "md5\n", string(name))

	count, err := ReadUint32(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), count)
}

func TestWritePayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePayload(&buf, bytes.NewReader([]byte("hello world")), 5))
	assert.Equal(t, append(le32(5), "hello"...), buf.Bytes())
}

func TestWritePayloadShortSource(t *testing.T) {
	var buf bytes.Buffer
	err := WritePayload(&buf, bytes.NewReader([]byte("hi")), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
}

func TestWritePayloadNegative(t *testing.T) {
	assert.Error(t, WritePayload(io.Discard, bytes.NewReader(nil), -1))
}
