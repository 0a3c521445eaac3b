package app

import (
	"bytes"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/hashd/internal/domain"
	"github.com/bft-labs/hashd/internal/ports"
	"github.com/bft-labs/hashd/pkg/wire"
)

// nopLogger implements ports.Logger for testing.
type nopLogger struct{}

func (nopLogger) Debug(msg string, fields ...ports.Field) {}
func (nopLogger) Info(msg string, fields ...ports.Field)  {}
func (nopLogger) Warn(msg string, fields ...ports.Field)  {}
func (nopLogger) Error(msg string, fields ...ports.Field) {}
func (n nopLogger) With(fields ...ports.Field) ports.Logger {
	return n
}

// sessionRecorder implements SessionEmitter and keeps an ordered event log.
type sessionRecorder struct {
	mu        sync.Mutex
	log       []string
	summaries []domain.SessionSummary
	digests   []string
	ended     chan domain.SessionSummary
}

func newSessionRecorder() *sessionRecorder {
	return &sessionRecorder{ended: make(chan domain.SessionSummary, 16)}
}

func (r *sessionRecorder) OnSessionStart(id, remote string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, "start:"+id)
}

func (r *sessionRecorder) OnFileDigest(id string, index uint32, algorithm string, size int64, digest string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.digests = append(r.digests, digest)
}

func (r *sessionRecorder) OnSessionEnd(summary domain.SessionSummary) {
	r.mu.Lock()
	r.log = append(r.log, "end:"+summary.ID)
	r.summaries = append(r.summaries, summary)
	r.mu.Unlock()
	r.ended <- summary
}

func (r *sessionRecorder) Log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.log...)
}

func (r *sessionRecorder) waitEnd(t *testing.T) domain.SessionSummary {
	t.Helper()
	select {
	case s := <-r.ended:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end")
		return domain.SessionSummary{}
	}
}

// buildRequest encodes a complete client request.
func buildRequest(t *testing.T, algorithm string, files ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := wire.WriteFrame(&buf, []byte(algorithm)); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := wire.WriteUint32(&buf, uint32(len(files))); err != nil {
		t.Fatalf("WriteUint32: %v", err)
	}
	for _, f := range files {
		if err := wire.WriteFrame(&buf, f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	return buf.Bytes()
}

// tcpPair returns a connected client and server TCP connection.
func tcpPair(t *testing.T) (client, server *net.TCPConn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- c
	}()

	c, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	s, ok := <-accepted
	if !ok {
		t.Fatal("Accept failed")
	}
	t.Cleanup(func() {
		c.Close()
		s.Close()
	})
	return c.(*net.TCPConn), s.(*net.TCPConn)
}
