package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ChicagoDave/citadel/pkg/export"
	"github.com/ChicagoDave/citadel/pkg/scene"
)

// Stream message types.
const (
	MsgSubscribe = "SUBSCRIBE"
	MsgHeader    = "HEADER"
	MsgEntities  = "ENTITIES"
	MsgDone      = "DONE"
	MsgError     = "ERROR"
)

const (
	defaultBatch = 256
	maxBatch     = 4096
)

// SubscribeMsg is the first frame a stream client sends. Owner limits
// the stream to one owner; empty means every entity.
type SubscribeMsg struct {
	Type  string `json:"type"`
	Owner string `json:"owner,omitempty"`
	Batch int    `json:"batch,omitempty"`
}

// HeaderMsg opens a stream.
type HeaderMsg struct {
	Type   string        `json:"type"`
	Header export.Header `json:"header"`
}

// EntitiesMsg carries one batch of entities.
type EntitiesMsg struct {
	Type     string         `json:"type"`
	Seq      int            `json:"seq"`
	Entities []scene.Entity `json:"entities"`
}

// DoneMsg closes a stream.
type DoneMsg struct {
	Type     string `json:"type"`
	Entities int    `json:"entities"`
	Batches  int    `json:"batches"`
}

// ErrorMsg reports a failed subscription.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func normalizeSubscribe(sub *SubscribeMsg) {
	if sub.Batch <= 0 {
		sub.Batch = defaultBatch
	}
	if sub.Batch > maxBatch {
		sub.Batch = maxBatch
	}
}

// handleStream sends the current scene over a websocket in batches.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return
	}
	var sub SubscribeMsg
	if err := json.Unmarshal(msg, &sub); err != nil {
		closeWith(conn, websocket.ClosePolicyViolation, "bad subscribe")
		return
	}
	if sub.Type != MsgSubscribe {
		closeWith(conn, websocket.ClosePolicyViolation, "expected SUBSCRIBE")
		return
	}
	normalizeSubscribe(&sub)

	_, g, _ := s.snapshot()
	if g == nil {
		_ = writeFrame(conn, ErrorMsg{Type: MsgError, Message: "no scene"})
		closeWith(conn, websocket.CloseTryAgainLater, "no scene")
		return
	}

	entities := g.Entities
	if sub.Owner != "" {
		entities = g.Owner(sub.Owner)
	}

	header := export.Header{
		Format:     export.Format,
		Metadata:   g.Metadata,
		Entities:   len(entities),
		Footprints: g.Footprints,
	}
	if err := writeFrame(conn, HeaderMsg{Type: MsgHeader, Header: header}); err != nil {
		s.log.Printf("stream: %v", err)
		return
	}

	batches := 0
	for start := 0; start < len(entities); start += sub.Batch {
		end := min(start+sub.Batch, len(entities))
		if err := writeFrame(conn, EntitiesMsg{Type: MsgEntities, Seq: batches, Entities: entities[start:end]}); err != nil {
			s.log.Printf("stream: %v", err)
			return
		}
		batches++
	}

	if err := writeFrame(conn, DoneMsg{Type: MsgDone, Entities: len(entities), Batches: batches}); err != nil {
		s.log.Printf("stream: %v", err)
		return
	}
	closeWith(conn, websocket.CloseNormalClosure, "bye")
}

func writeFrame(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func closeWith(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
}
