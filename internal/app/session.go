package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bft-labs/hashd/internal/domain"
	"github.com/bft-labs/hashd/internal/ports"
	"github.com/bft-labs/hashd/pkg/digest"
	"github.com/bft-labs/hashd/pkg/wire"
)

const (
	// MaxAlgorithmNameSize is the number of algorithm frame bytes kept in
	// memory. Bytes past it are drained and only checked for being
	// whitespace, so a padded token still matches.
	MaxAlgorithmNameSize = 128

	// InvalidAlgorithmResponse is sent before closing a session that asked
	// for an unknown algorithm.
	InvalidAlgorithmResponse = wire.InvalidAlgorithm

	// Unread input is drained for at most rejectLinger and rejectDrain
	// bytes after the diagnostic, before the socket is closed.
	rejectLinger = 250 * time.Millisecond
	rejectDrain  = 256 << 10
)

// SessionConfig is the settings snapshot a session runs with.
type SessionConfig struct {
	// ChunkSize bounds the bytes requested by a single socket read.
	ChunkSize int

	// ReadTimeout is refreshed before every read. Zero disables it, which
	// lets a silent client hold the server indefinitely.
	ReadTimeout time.Duration

	// WriteTimeout is refreshed before every write. Zero disables it.
	WriteTimeout time.Duration

	// Digester resolves algorithm tokens and builds hash states.
	Digester ports.Digester
}

// SessionEmitter receives per-session notifications.
type SessionEmitter interface {
	OnSessionStart(id, remote string)
	OnFileDigest(id string, index uint32, algorithm string, size int64, digest string)
	OnSessionEnd(summary domain.SessionSummary)
}

// Session runs the hashing protocol over one accepted connection.
// A Session is used once and is not safe for concurrent use.
type Session struct {
	id      string
	conn    net.Conn
	rw      io.ReadWriter
	cfg     SessionConfig
	logger  ports.Logger
	emitter SessionEmitter

	algorithm digest.Algorithm
	fileCount uint32
	remaining uint32
	processed uint32
	bytes     int64
	started   time.Time
	err       error
	ended     bool
}

// NewSession wraps conn. The session owns conn from here on and closes it
// when Run returns.
func NewSession(id string, conn net.Conn, cfg SessionConfig, logger ports.Logger, emitter SessionEmitter) *Session {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = wire.DefaultChunkSize
	}
	if cfg.Digester == nil {
		cfg.Digester = digest.NewRegistry(false)
	}
	return &Session{
		id:      id,
		conn:    conn,
		rw:      &deadlineConn{Conn: conn, read: cfg.ReadTimeout, write: cfg.WriteTimeout},
		cfg:     cfg,
		logger:  logger,
		emitter: emitter,
	}
}

// Run negotiates the algorithm, answers every declared file, and closes the
// connection. Cancelling ctx closes the connection, which unblocks any
// pending read.
func (s *Session) Run(ctx context.Context) error {
	s.started = time.Now()
	stop := context.AfterFunc(ctx, func() { _ = s.conn.Close() })
	defer stop()
	defer s.conn.Close()

	if s.emitter != nil {
		s.emitter.OnSessionStart(s.id, s.remote())
	}

	s.err = s.serve()
	s.end()
	return s.err
}

// end reports the session end once.
func (s *Session) end() {
	if s.ended {
		return
	}
	s.ended = true
	if s.emitter != nil {
		s.emitter.OnSessionEnd(s.Summary())
	}
}

// abort records err as the outcome of a session whose Run did not return
// and reports the end if Run had not already done so.
func (s *Session) abort(err error) {
	s.err = err
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session end handler panicked", ports.Any("panic", r))
		}
	}()
	s.end()
}

// Summary reports what the session did so far.
func (s *Session) Summary() domain.SessionSummary {
	summary := domain.SessionSummary{
		ID:             s.id,
		Remote:         s.remote(),
		FilesDeclared:  s.fileCount,
		FilesProcessed: s.processed,
		Bytes:          s.bytes,
		Err:            s.err,
	}
	if s.algorithm != digest.Unknown {
		summary.Algorithm = s.algorithm.String()
	}
	if !s.started.IsZero() {
		summary.Duration = time.Since(s.started)
	}
	return summary
}

func (s *Session) serve() error {
	if err := s.negotiate(); err != nil {
		return err
	}
	for index := uint32(1); s.remaining > 0; index++ {
		if err := s.receiveFile(index); err != nil {
			return err
		}
		s.remaining--
		s.processed++
	}
	return nil
}

// negotiate reads the algorithm frame and the file count.
func (s *Session) negotiate() error {
	size, err := wire.ReadUint32(s.rw)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBadAlgorithmFrame, err)
	}
	name := &cappedBuffer{max: MaxAlgorithmNameSize}
	if _, err := wire.CopyPayload(name, s.rw, uint64(size), s.cfg.ChunkSize); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBadAlgorithmFrame, err)
	}
	if size == 0 {
		return fmt.Errorf("%w: empty algorithm name", domain.ErrBadAlgorithmFrame)
	}
	if !name.valid() {
		return fmt.Errorf("%w: algorithm name is not UTF-8", domain.ErrBadAlgorithmFrame)
	}

	token, whole := name.token()
	algorithm, ok := digest.Unknown, false
	if whole {
		algorithm, ok = s.cfg.Digester.Lookup(token)
	}
	if !ok {
		s.logger.Warn("unsupported algorithm requested",
			ports.String("algorithm", token),
			ports.Uint32("frame_bytes", size))
		if _, err := io.WriteString(s.rw, InvalidAlgorithmResponse); err != nil {
			return fmt.Errorf("%w: send diagnostic: %w", domain.ErrUnsupportedAlgorithm, err)
		}
		s.closeWriteAndDrain()
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedAlgorithm, token)
	}
	s.algorithm = algorithm

	count, err := wire.ReadUint32(s.rw)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBadFileCount, err)
	}
	s.fileCount = count
	s.remaining = count

	s.logger.Info("algorithm negotiated",
		ports.String("algorithm", algorithm.String()),
		ports.Uint32("files", count))
	return nil
}

// receiveFile streams one length-prefixed payload into the hash and writes
// the hex digest back.
func (s *Session) receiveFile(index uint32) error {
	size, err := wire.ReadUint32(s.rw)
	if err != nil {
		return fmt.Errorf("%w: file %d of %d: %w", domain.ErrFileReceive, index, s.fileCount, err)
	}

	h, err := s.cfg.Digester.New(s.algorithm)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrFileReceive, err)
	}
	n, err := wire.CopyPayload(h, s.rw, uint64(size), s.cfg.ChunkSize)
	if err != nil {
		return fmt.Errorf("%w: file %d of %d after %d/%d bytes: %w",
			domain.ErrFileReceive, index, s.fileCount, n, size, err)
	}

	sum := digest.Hex(h)
	if _, err := io.WriteString(s.rw, sum); err != nil {
		return fmt.Errorf("%w: send digest for file %d: %w", domain.ErrFileReceive, index, err)
	}
	s.bytes += n

	s.logger.Debug("file digested",
		ports.Uint32("index", index),
		ports.Int64("bytes", n),
		ports.String("digest", sum))
	if s.emitter != nil {
		s.emitter.OnFileDigest(s.id, index, s.algorithm.String(), n, sum)
	}
	return nil
}

// closeWriteAndDrain half-closes the connection and discards pending input
// for a short while. Connections without CloseWrite are left alone.
func (s *Session) closeWriteAndDrain() {
	cw, ok := s.conn.(interface{ CloseWrite() error })
	if !ok {
		return
	}
	if err := cw.CloseWrite(); err != nil {
		return
	}
	_ = s.conn.SetReadDeadline(time.Now().Add(rejectLinger))
	_, _ = io.CopyN(io.Discard, s.conn, rejectDrain)
}

func (s *Session) remote() string {
	if addr := s.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// cappedBuffer keeps the first max bytes written to it. Later bytes are
// decoded as UTF-8 and only remembered as "all whitespace or not". A rune
// split across writes, or across the cap, is carried in pending.
type cappedBuffer struct {
	buf     []byte
	max     int
	pending []byte
	past    bool
	text    bool
	invalid bool
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if room := c.max - len(c.buf); room > 0 && !c.past {
		if room > len(p) {
			room = len(p)
		}
		c.buf = append(c.buf, p[:room]...)
		p = p[room:]
	}
	if len(p) == 0 {
		return n, nil
	}
	if !c.past {
		c.past = true
		c.splitAtCap()
	}

	data := append(c.pending, p...)
	for len(data) > 0 && utf8.FullRune(data) {
		r, size := utf8.DecodeRune(data)
		switch {
		case r == utf8.RuneError && size == 1:
			c.invalid = true
		case !unicode.IsSpace(r):
			c.text = true
		}
		data = data[size:]
	}
	c.pending = append([]byte(nil), data...)
	return n, nil
}

// splitAtCap moves an incomplete trailing rune out of buf so it is decoded
// together with the bytes that follow the cap.
func (c *cappedBuffer) splitAtCap() {
	for i := len(c.buf) - 1; i >= 0 && i >= len(c.buf)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(c.buf[i]) {
			continue
		}
		if !utf8.FullRune(c.buf[i:]) {
			c.pending = append(c.pending, c.buf[i:]...)
			c.buf = c.buf[:i]
		}
		return
	}
}

// valid reports whether every byte written so far formed UTF-8 text.
func (c *cappedBuffer) valid() bool {
	return utf8.Valid(c.buf) && !c.invalid && len(c.pending) == 0
}

// token returns the kept name without trailing whitespace. whole is false
// when non-whitespace text followed the cap.
func (c *cappedBuffer) token() (name string, whole bool) {
	return strings.TrimRightFunc(string(c.buf), unicode.IsSpace), !c.text
}

// deadlineConn refreshes per-operation deadlines before each read and write.
type deadlineConn struct {
	net.Conn
	read  time.Duration
	write time.Duration
}

func (d *deadlineConn) Read(p []byte) (int, error) {
	if d.read > 0 {
		if err := d.Conn.SetReadDeadline(time.Now().Add(d.read)); err != nil {
			return 0, err
		}
	}
	return d.Conn.Read(p)
}

func (d *deadlineConn) Write(p []byte) (int, error) {
	if d.write > 0 {
		if err := d.Conn.SetWriteDeadline(time.Now().Add(d.write)); err != nil {
			return 0, err
		}
	}
	return d.Conn.Write(p)
}
