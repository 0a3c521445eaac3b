package hashd

import (
	"time"

	"github.com/bft-labs/hashd/internal/app"
	"github.com/bft-labs/hashd/internal/domain"
)

// State is the lifecycle state of a Server.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	return app.State(s).String()
}

// StateChangeEvent reports a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SessionStartEvent reports an accepted connection.
type SessionStartEvent struct {
	ID     string
	Remote string
}

// FileDigestEvent reports one digest written back to a client.
type FileDigestEvent struct {
	SessionID string
	Index     uint32
	Algorithm string
	Size      int64
	Digest    string
}

// SessionEndEvent reports a closed connection. Err is nil when every
// declared file was answered.
type SessionEndEvent struct {
	ID             string
	Remote         string
	Algorithm      string
	FilesDeclared  uint32
	FilesProcessed uint32
	Bytes          int64
	Duration       time.Duration
	Err            error
}

// EventHandler receives server notifications.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnSessionStart(SessionStartEvent)
	OnFileDigest(FileDigestEvent)
	OnSessionEnd(SessionEndEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to
// override only the events you need.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)   {}
func (BaseEventHandler) OnSessionStart(SessionStartEvent) {}
func (BaseEventHandler) OnFileDigest(FileDigestEvent)     {}
func (BaseEventHandler) OnSessionEnd(SessionEndEvent)     {}

// eventEmitter adapts EventHandler to the internal emitter interfaces.
type eventEmitter struct {
	handler EventHandler
}

func (e *eventEmitter) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: State(previous),
		Current:  State(current),
		Reason:   reason,
	})
}

func (e *eventEmitter) OnSessionStart(id, remote string) {
	if e.handler == nil {
		return
	}
	e.handler.OnSessionStart(SessionStartEvent{ID: id, Remote: remote})
}

func (e *eventEmitter) OnFileDigest(id string, index uint32, algorithm string, size int64, digest string) {
	if e.handler == nil {
		return
	}
	e.handler.OnFileDigest(FileDigestEvent{
		SessionID: id,
		Index:     index,
		Algorithm: algorithm,
		Size:      size,
		Digest:    digest,
	})
}

func (e *eventEmitter) OnSessionEnd(s domain.SessionSummary) {
	if e.handler == nil {
		return
	}
	e.handler.OnSessionEnd(SessionEndEvent{
		ID:             s.ID,
		Remote:         s.Remote,
		Algorithm:      s.Algorithm,
		FilesDeclared:  s.FilesDeclared,
		FilesProcessed: s.FilesProcessed,
		Bytes:          s.Bytes,
		Duration:       s.Duration,
		Err:            s.Err,
	})
}
