package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"articleqa/internal/models"
	"articleqa/internal/types"
)

// ErrNotReady means no ingestion has populated the index yet.
var ErrNotReady = errors.New("vector index is not initialized: process URLs first")

// DefaultTopK is how many chunks ground an answer unless configured
// otherwise.
const DefaultTopK = 5

const answerTemplate = `You are a helpful assistant that answers questions based on the provided article content.

Use the following pieces of context from the articles to answer the question at the end.
If you don't know the answer based on the context, just say that you don't have enough information to answer.
Do not make up information that is not in the context.

IMPORTANT: Provide a DIRECT and CONCISE answer. Do not start with "According to the context" or "Based on the articles". Just give the answer directly.
If the answer is a specific number, date, or fact, provide just that with minimal context.

Context from articles:
%s

Question: %s

Helpful Answer:`

// Engine answers questions grounded in retrieved article chunks. It
// guarantees the context was supplied to the model, not that the answer is
// correct.
type Engine struct {
	index types.VectorIndex
	model types.ChatModel
	topK  int
}

func NewEngine(index types.VectorIndex, model types.ChatModel, topK int) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Engine{
		index: index,
		model: model,
		topK:  topK,
	}
}

// Answer retrieves the chunks most similar to the query, asks the model to
// answer from them alone, and returns the response verbatim together with
// the deduplicated source URLs of the retrieved chunks.
func (e *Engine) Answer(ctx context.Context, query string) (*models.Answer, error) {
	count, err := e.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check index: %w", err)
	}
	if count == 0 {
		return nil, ErrNotReady
	}

	chunks, err := e.index.Query(ctx, query, e.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}

	prompt := fmt.Sprintf(answerTemplate, buildContext(chunks), query)

	text, err := e.model.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &models.Answer{
		Text:    text,
		Sources: collectSources(chunks),
	}, nil
}

func buildContext(chunks []models.Chunk) string {
	var b strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(chunk.Text)
	}
	return b.String()
}

// collectSources deduplicates chunk sources, keeping the order of first
// appearance in the retrieval ranking.
func collectSources(chunks []models.Chunk) []string {
	var sources []string
	seen := make(map[string]bool)

	for _, chunk := range chunks {
		if chunk.Source == "" || seen[chunk.Source] {
			continue
		}
		seen[chunk.Source] = true
		sources = append(sources, chunk.Source)
	}

	return sources
}
