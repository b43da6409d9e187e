package moimtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/moimhq/moim/internal/realtime"
)

// broker is a minimal in-process STOMP broker. It understands just enough
// of the protocol for document sessions: CONNECT, SUBSCRIBE, SEND and
// DISCONNECT. Broadcasts are scoped per document topic and every payload
// carries a monotonically increasing sequence number.
type broker struct {
	server   *Server
	upgrader websocket.Upgrader

	mu    sync.Mutex
	subs  map[string][]*subscriber
	seq   map[string]int64
	conns map[*subscriber]struct{}
}

type subscriber struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (b *subscriber) send(f *realtime.Frame) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return b.conn.WriteMessage(websocket.TextMessage, f.Marshal())
}

func newBroker(server *Server) *broker {
	return &broker{
		server:   server,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		subs:     make(map[string][]*subscriber),
		seq:      make(map[string]int64),
		conns:    make(map[*subscriber]struct{}),
	}
}

func (b *broker) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sub := &subscriber{conn: conn}
	b.mu.Lock()
	b.conns[sub] = struct{}{}
	b.mu.Unlock()

	defer func() {
		b.drop(sub)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err := realtime.ParseFrame(data)
		if err != nil {
			sub.send(realtime.NewFrame(realtime.CmdError, "message", err.Error()))
			continue
		}
		switch frame.Command {
		case realtime.CmdConnect:
			sub.send(realtime.NewFrame(realtime.CmdConnected, "version", "1.2"))
		case realtime.CmdSubscribe:
			b.subscribe(sub, frame.Headers["destination"])
		case realtime.CmdSend:
			b.handleSend(sub, frame)
		case realtime.CmdDisconnect:
			return
		default:
			sub.send(realtime.NewFrame(realtime.CmdError, "message", "unsupported command "+frame.Command))
		}
	}
}

func (b *broker) subscribe(sub *subscriber, topic string) {
	if topic == "" {
		sub.send(realtime.NewFrame(realtime.CmdError, "message", "subscribe without destination"))
		return
	}
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()
}

func (b *broker) handleSend(sub *subscriber, frame *realtime.Frame) {
	var update realtime.DocumentUpdate
	if err := json.Unmarshal(frame.Body, &update); err != nil {
		sub.send(realtime.NewFrame(realtime.CmdError, "message", "bad payload: "+err.Error()))
		return
	}
	if update.DocumentIdx == "" {
		sub.send(realtime.NewFrame(realtime.CmdError, "message", "payload missing documentIdx"))
		return
	}

	switch frame.Headers["destination"] {
	case "/app/chat.showDocs":
		// Opening a document rebroadcasts its stored state so every
		// session converges on what the backend has.
		doc, ok := b.server.Document(update.DocumentIdx)
		if !ok {
			sub.send(realtime.NewFrame(realtime.CmdError, "message", fmt.Sprintf("unknown document %s", update.DocumentIdx)))
			return
		}
		b.broadcast(update.DocumentIdx, doc.Title, doc.Content)

	case "/app/docs.edit":
		b.server.mu.Lock()
		for teamID, docs := range b.server.documents {
			for i := range docs {
				if docs[i].ID == update.DocumentIdx {
					docs[i].Title = update.Title
					docs[i].Content = update.Content
					b.server.documents[teamID] = docs
				}
			}
		}
		b.server.mu.Unlock()
		b.broadcast(update.DocumentIdx, update.Title, update.Content)

	default:
		sub.send(realtime.NewFrame(realtime.CmdError, "message", "unsupported destination "+frame.Headers["destination"]))
	}
}

// broadcast stamps the document's next sequence number and fans the update
// out to every subscriber of that document's topic.
func (b *broker) broadcast(docID, title, content string) error {
	topic := "/topic/docs." + docID

	b.mu.Lock()
	b.seq[docID]++
	payload := realtime.DocumentUpdate{DocumentIdx: docID, Title: title, Content: content, Seq: b.seq[docID]}
	subs := append([]*subscriber(nil), b.subs[topic]...)
	b.mu.Unlock()

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame := realtime.NewFrame(realtime.CmdMessage, "destination", topic, "subscription", "0", "message-id", fmt.Sprintf("%s-%d", docID, payload.Seq))
	frame.Body = body
	for _, sub := range subs {
		sub.send(frame)
	}
	return nil
}

func (b *broker) drop(sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conns, sub)
	for topic, subs := range b.subs {
		kept := subs[:0]
		for _, s := range subs {
			if s != sub {
				kept = append(kept, s)
			}
		}
		b.subs[topic] = kept
	}
}

func (b *broker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.conns {
		sub.conn.Close()
	}
	b.conns = make(map[*subscriber]struct{})
	b.subs = make(map[string][]*subscriber)
}
