package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"articleqa/internal/models"
	"articleqa/pkg/extractor"
	"articleqa/pkg/fetcher"
	"articleqa/pkg/processor"
	"articleqa/pkg/rag"
	"articleqa/server"
)

// memIndex is a minimal in-memory VectorIndex for exercising the server.
type memIndex struct {
	chunks []models.Chunk
}

func (m *memIndex) Reset(context.Context) error { m.chunks = nil; return nil }

func (m *memIndex) Upsert(_ context.Context, chunks []models.Chunk) error {
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memIndex) Query(_ context.Context, _ string, k int) ([]models.Chunk, error) {
	if k > len(m.chunks) {
		k = len(m.chunks)
	}
	return m.chunks[:k], nil
}

func (m *memIndex) Count(context.Context) (int64, error) { return int64(len(m.chunks)), nil }

func (m *memIndex) Close() {}

type cannedChat struct{ response string }

func (c cannedChat) Generate(context.Context, string) (string, error) { return c.response, nil }

// dialTestServer stands up an article page server and the WebSocket server,
// returning a connected client and the article URL to ingest.
func dialTestServer(t *testing.T, index *memIndex) (*websocket.Conn, string) {
	t.Helper()

	articles := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><title>Meeting Notes</title></head><body><article>" +
			strings.Repeat("The meeting is on March 5th. ", 20) + "</article></body></html>"))
	}))
	t.Cleanup(articles.Close)

	f := fetcher.NewWithConfig(fetcher.FetcherConfig{RateLimit: 100})
	proc := processor.NewWithConfig(processor.ProcessorConfig{})
	pipeline := rag.NewPipeline(f, extractor.New(), proc, index)
	engine := rag.NewEngine(index, cannedChat{response: "March 5th."}, 5)

	ts := httptest.NewServer(server.New(pipeline, engine).Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	return conn, articles.URL
}

// readUntil collects messages until one of the terminal types arrives.
func readUntil(t *testing.T, conn *websocket.Conn, terminal ...string) []server.Message {
	t.Helper()

	var messages []server.Message
	for {
		var msg server.Message
		require.NoError(t, conn.ReadJSON(&msg))
		messages = append(messages, msg)
		for _, want := range terminal {
			if msg.Type == want {
				return messages
			}
		}
	}
}

func TestServerIngestAndAsk(t *testing.T) {
	index := &memIndex{}
	conn, articleURL := dialTestServer(t, index)

	require.NoError(t, conn.WriteJSON(server.Message{Type: "ingest", Content: articleURL}))
	messages := readUntil(t, conn, "complete", "failed")
	assert.Equal(t, "complete", messages[len(messages)-1].Type)
	assert.NotEmpty(t, index.chunks)

	require.NoError(t, conn.WriteJSON(server.Message{Type: "ask", Content: "When is the meeting?"}))
	replies := readUntil(t, conn, "answer", "error")
	answer := replies[len(replies)-1]
	require.Equal(t, "answer", answer.Type)
	assert.Equal(t, "March 5th.", answer.Content)

	sources, ok := answer.Data.([]interface{})
	require.True(t, ok)
	assert.Contains(t, sources, articleURL)
}

func TestServerAskBeforeIngest(t *testing.T) {
	conn, _ := dialTestServer(t, &memIndex{})

	require.NoError(t, conn.WriteJSON(server.Message{Type: "ask", Content: "anything"}))
	replies := readUntil(t, conn, "answer", "error")
	last := replies[len(replies)-1]
	assert.Equal(t, "error", last.Type)
	assert.Contains(t, last.Content, "not initialized")
}

func TestServerRejectsUnknownType(t *testing.T) {
	conn, _ := dialTestServer(t, &memIndex{})

	require.NoError(t, conn.WriteJSON(server.Message{Type: "bogus"}))
	replies := readUntil(t, conn, "error")
	assert.Contains(t, replies[len(replies)-1].Content, "unknown message type")
}

func TestServerHealthEndpoint(t *testing.T) {
	index := &memIndex{}
	proc := processor.NewWithConfig(processor.ProcessorConfig{})
	pipeline := rag.NewPipeline(fetcher.New(), extractor.New(), proc, index)
	engine := rag.NewEngine(index, cannedChat{}, 5)

	ts := httptest.NewServer(server.New(pipeline, engine).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
