package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"articleqa/pkg/rag"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is the JSON envelope in both directions.
//
// Inbound types: "ingest" (Content holds whitespace-separated URLs) and
// "ask" (Content holds the question).
// Outbound types: "status", "warning", "error" for pipeline events,
// "failed"/"complete" for terminal outcomes, and "answer" with the source
// list in Data.
type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

type Server struct {
	pipeline *rag.Pipeline
	engine   *rag.Engine

	// One ingestion run at a time; reset+upsert from two runs would race.
	ingestMu sync.Mutex
}

func New(pipeline *rag.Pipeline, engine *rag.Engine) *Server {
	return &Server{
		pipeline: pipeline,
		engine:   engine,
	}
}

// Handler serves the WebSocket endpoint at /ws and a health check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

func (s *Server) ListenAndServe(addr string) error {
	log.Printf("Starting WebSocket server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Writes are serialized; pipeline events and answers may interleave
	// otherwise.
	var writeMu sync.Mutex
	send := func(msgType, content string, data interface{}) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(Message{Type: msgType, Content: content, Data: data}); err != nil {
			log.Printf("Error sending message: %v", err)
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Error reading message: %v", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			send("error", "invalid message: "+err.Error(), nil)
			continue
		}

		switch msg.Type {
		case "ingest":
			s.handleIngest(r.Context(), msg, send)
		case "ask":
			s.handleAsk(r.Context(), msg, send)
		default:
			send("error", "unknown message type: "+msg.Type, nil)
		}
	}
}

func (s *Server) handleIngest(ctx context.Context, msg Message, send func(string, string, interface{})) {
	urls := strings.Fields(msg.Content)
	if len(urls) == 0 {
		send("error", "no URLs provided", nil)
		return
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	for event := range s.pipeline.Ingest(ctx, urls) {
		switch event.Kind {
		case rag.EventWarn:
			send("warning", event.Message, nil)
		case rag.EventError:
			send("error", event.Message, nil)
		case rag.EventFatal:
			send("failed", event.Message, nil)
		case rag.EventComplete:
			send("complete", event.Message, nil)
		default:
			send("status", event.Message, nil)
		}
	}
}

func (s *Server) handleAsk(ctx context.Context, msg Message, send func(string, string, interface{})) {
	question := strings.TrimSpace(msg.Content)
	if question == "" {
		send("error", "no question provided", nil)
		return
	}

	answer, err := s.engine.Answer(ctx, question)
	if err != nil {
		send("error", err.Error(), nil)
		return
	}

	send("answer", answer.Text, answer.Sources)
}
