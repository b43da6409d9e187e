// Package realtime holds the live connection a document editor keeps while
// a document is open. The session speaks STOMP over a WebSocket: it
// announces the opened document, subscribes to that document's broadcast
// topic, and mirrors pushed content into its buffer. Convergence is
// last-writer-wins gated by a server-assigned sequence number; there is no
// merge and no reconnect policy.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/moimhq/moim/internal/report"
)

const (
	// openDestination receives the document-opened announcement.
	openDestination = "/app/chat.showDocs"
	// editDestination receives a session's buffer pushes.
	editDestination = "/app/docs.edit"
	// topicPrefix scopes broadcasts per document.
	topicPrefix = "/topic/docs."

	writeWait      = 10 * time.Second
	connectTimeout = 10 * time.Second
)

// State is the session's connection state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// openEvent announces which document this session is editing.
type openEvent struct {
	DocumentIdx string `json:"documentIdx"`
}

// DocumentUpdate is the broadcast payload. Seq is the broker's logical
// clock for the document; a session applies an update only when Seq is
// newer than the last one it applied.
type DocumentUpdate struct {
	DocumentIdx string `json:"documentIdx,omitempty"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Seq         int64  `json:"seq"`
}

// Session is one live editing connection scoped to a single document.
type Session struct {
	conn     *websocket.Conn
	docID    string
	reporter *report.Reporter
	onUpdate func(DocumentUpdate)

	state atomic.Int32
	done  chan struct{}

	mu      sync.Mutex
	writeMu sync.Mutex
	title   string
	content string
	lastSeq int64
}

// Open dials the broker and brings the session to Connected: it sends the
// STOMP CONNECT, waits for CONNECTED, announces the opened document and
// subscribes to the document's topic. onUpdate, when non-nil, runs after
// each applied broadcast.
func Open(ctx context.Context, brokerURL, docID string, reporter *report.Reporter, onUpdate func(DocumentUpdate)) (*Session, error) {
	s := &Session{
		docID:    docID,
		reporter: reporter,
		onUpdate: onUpdate,
		done:     make(chan struct{}),
	}
	s.state.Store(int32(Connecting))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, brokerURL, nil)
	if err != nil {
		s.state.Store(int32(Disconnected))
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	s.conn = conn

	if err := s.writeFrame(NewFrame(CmdConnect, "accept-version", "1.2", "host", "moim")); err != nil {
		conn.Close()
		s.state.Store(int32(Disconnected))
		return nil, err
	}

	conn.SetReadDeadline(time.Now().Add(connectTimeout))
	frame, err := s.readFrame()
	if err != nil {
		conn.Close()
		s.state.Store(int32(Disconnected))
		return nil, fmt.Errorf("await connect ack: %w", err)
	}
	if frame.Command != CmdConnected {
		conn.Close()
		s.state.Store(int32(Disconnected))
		return nil, fmt.Errorf("broker refused connection: %s", frame.Command)
	}
	conn.SetReadDeadline(time.Time{})
	s.state.Store(int32(Connected))

	// Subscribe before announcing the open so the broker's rebroadcast of
	// the document's current state is not lost.
	if err := s.writeFrame(NewFrame(CmdSubscribe, "id", "0", "destination", s.Topic())); err != nil {
		conn.Close()
		s.state.Store(int32(Disconnected))
		return nil, err
	}
	body, _ := json.Marshal(openEvent{DocumentIdx: docID})
	open := NewFrame(CmdSend, "destination", openDestination)
	open.Body = body
	if err := s.writeFrame(open); err != nil {
		conn.Close()
		s.state.Store(int32(Disconnected))
		return nil, err
	}

	go s.readPump()
	return s, nil
}

// Topic is the per-document broadcast destination this session listens on.
func (s *Session) Topic() string { return topicPrefix + s.docID }

// State reports the session's connection state.
func (s *Session) State() State { return State(s.state.Load()) }

// Snapshot returns the current buffer and the sequence number it reflects.
func (s *Session) Snapshot() (title, content string, seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title, s.content, s.lastSeq
}

// Publish pushes the session's buffer to the broker, which stamps a
// sequence number and broadcasts it to every session on the document,
// this one included. Delivery is not guaranteed to flush on teardown.
func (s *Session) Publish(title, content string) error {
	body, err := json.Marshal(DocumentUpdate{DocumentIdx: s.docID, Title: title, Content: content})
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}
	frame := NewFrame(CmdSend, "destination", editDestination)
	frame.Body = body
	return s.writeFrame(frame)
}

// Deactivate tears the session down. In-flight publishes are abandoned.
func (s *Session) Deactivate() error {
	if s.State() == Disconnected {
		return nil
	}
	close(s.done)
	s.writeFrame(NewFrame(CmdDisconnect))
	s.state.Store(int32(Disconnected))
	return s.conn.Close()
}

func (s *Session) writeFrame(f *Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, f.Marshal()); err != nil {
		return fmt.Errorf("write %s frame: %w", f.Command, err)
	}
	return nil
}

func (s *Session) readFrame() (*Frame, error) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return ParseFrame(data)
}

// readPump applies broadcast messages until the connection goes away. A
// broker-reported protocol error is logged and the session stays connected.
func (s *Session) readPump() {
	for {
		frame, err := s.readFrame()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.reporter.Silent("realtime read", err)
				s.state.Store(int32(Disconnected))
			}
			return
		}
		switch frame.Command {
		case CmdMessage:
			var update DocumentUpdate
			if err := json.Unmarshal(frame.Body, &update); err != nil {
				s.reporter.Silent("decode broadcast", err)
				continue
			}
			if !s.apply(update) {
				continue
			}
			if s.onUpdate != nil {
				s.onUpdate(update)
			}
		case CmdError:
			s.reporter.Silent("broker error", fmt.Errorf("%s", frame.Headers["message"]))
		}
	}
}

// apply replaces the buffer with the update, discarding any uncommitted
// local edits. Updates at or behind the last applied sequence are dropped.
func (s *Session) apply(update DocumentUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if update.Seq <= s.lastSeq {
		return false
	}
	s.title = update.Title
	s.content = update.Content
	s.lastSeq = update.Seq
	return true
}
