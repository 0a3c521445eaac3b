package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/hashd/internal/domain"
	"github.com/bft-labs/hashd/pkg/digest"
	"github.com/bft-labs/hashd/pkg/log"
	"github.com/bft-labs/hashd/pkg/wire"
)

var (
	// ErrUnsupportedAlgorithm is returned when the server replies with its
	// invalid-algorithm diagnostic.
	ErrUnsupportedAlgorithm = domain.ErrUnsupportedAlgorithm

	// ErrUnexpectedResponse is returned when the server sends bytes that
	// are neither a digest nor the diagnostic.
	ErrUnexpectedResponse = errors.New("client: unexpected response")
)

// DefaultTimeout bounds dialing and each socket read or write.
const DefaultTimeout = 30 * time.Second

// File is one payload to hash. Open is called once, when the file's turn
// comes, and must yield at least Size bytes.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// Bytes returns a File backed by b.
func Bytes(name string, b []byte) File {
	return File{
		Name: name,
		Size: int64(len(b)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		},
	}
}

// Path returns a File for the regular file at path.
func Path(path string) (File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if !fi.Mode().IsRegular() {
		return File{}, fmt.Errorf("%s: not a regular file", path)
	}
	return File{
		Name: path,
		Size: fi.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// Result is the digest of one File.
type Result struct {
	Name   string
	Size   int64
	Digest string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the dial and per-operation I/O timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to one hashd server address.
type Client struct {
	addr    string
	timeout time.Duration
	logger  log.Logger
}

// New returns a Client for addr (host:port).
func New(addr string, opts ...Option) *Client {
	c := &Client{
		addr:    addr,
		timeout: DefaultTimeout,
		logger:  log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HashPaths hashes the named regular files in order.
func (c *Client) HashPaths(ctx context.Context, algorithm string, paths []string) ([]Result, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		f, err := Path(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return c.Hash(ctx, algorithm, files)
}

// Hash runs one session: it sends algorithm and files and returns one
// Result per file, in order. On error the results received so far are
// returned alongside it.
func (c *Client) Hash(ctx context.Context, algorithm string, files []File) ([]Result, error) {
	if uint64(len(files)) > math.MaxUint32 {
		return nil, fmt.Errorf("client: %d files exceed the protocol limit", len(files))
	}

	// An algorithm unknown here is still sent; the server's answer decides.
	hexLen := 0
	if a, ok := digest.Parse(algorithm); ok {
		hexLen = a.HexLen()
	}

	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	logger := c.logger.With(log.String("addr", c.addr), log.String("algorithm", algorithm))
	logger.Debug("session started", log.Int("files", len(files)))

	rw := &timeoutConn{Conn: conn, timeout: c.timeout}

	var g errgroup.Group
	g.Go(func() error {
		err := send(rw, algorithm, files)
		if err != nil {
			_ = conn.Close()
		}
		return err
	})

	results, recvErr := receive(rw, hexLen, files)
	if recvErr != nil {
		_ = conn.Close()
		sendErr := g.Wait()
		switch {
		case ctx.Err() != nil:
			return results, ctx.Err()
		case errors.Is(recvErr, ErrUnsupportedAlgorithm):
			return results, recvErr
		case sendErr != nil:
			return results, sendErr
		}
		return results, recvErr
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	logger.Debug("session complete", log.Int("digests", len(results)))
	return results, nil
}

func send(conn *timeoutConn, algorithm string, files []File) error {
	if err := wire.WriteFrame(conn, []byte(algorithm)); err != nil {
		return fmt.Errorf("send algorithm: %w", err)
	}
	if err := wire.WriteUint32(conn, uint32(len(files))); err != nil {
		return fmt.Errorf("send file count: %w", err)
	}
	for i, f := range files {
		if err := sendFile(conn, f); err != nil {
			return fmt.Errorf("send file %d (%s): %w", i, f.Name, err)
		}
	}
	if cw, ok := conn.Conn.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
	return nil
}

func sendFile(w io.Writer, f File) error {
	body, err := f.Open()
	if err != nil {
		return err
	}
	defer body.Close()
	return wire.WritePayload(w, body, f.Size)
}

// receive reads one digest per file. Every digest is longer than the
// diagnostic, so the first len(diagnostic) bytes tell the two apart.
func receive(r io.Reader, hexLen int, files []File) ([]Result, error) {
	diag := len(wire.InvalidAlgorithm)

	if len(files) == 0 || hexLen == 0 {
		got, err := io.ReadAll(io.LimitReader(r, int64(diag)))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		switch {
		case string(got) == wire.InvalidAlgorithm:
			return nil, ErrUnsupportedAlgorithm
		case len(got) == 0 && len(files) == 0:
			return nil, nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnexpectedResponse, got)
		}
	}

	results := make([]Result, 0, len(files))
	buf := make([]byte, hexLen)
	for i, f := range files {
		if _, err := io.ReadFull(r, buf); err != nil {
			if i == 0 && string(buf[:diag]) == wire.InvalidAlgorithm {
				return nil, ErrUnsupportedAlgorithm
			}
			return results, fmt.Errorf("read digest %d (%s): %w", i, f.Name, err)
		}
		results = append(results, Result{Name: f.Name, Size: f.Size, Digest: string(buf)})
	}
	return results, nil
}

// timeoutConn refreshes the deadline before every read and write.
type timeoutConn struct {
	net.Conn
	timeout time.Duration
}

func (c *timeoutConn) Read(p []byte) (int, error) {
	if c.timeout > 0 {
		_ = c.Conn.SetReadDeadline(time.Now().Add(c.timeout))
	}
	return c.Conn.Read(p)
}

func (c *timeoutConn) Write(p []byte) (int, error) {
	if c.timeout > 0 {
		_ = c.Conn.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	return c.Conn.Write(p)
}
