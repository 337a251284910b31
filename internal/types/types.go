package types

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"articleqa/internal/models"
)

// Page is a fetched article page: the parsed HTML and the resolved title.
type Page struct {
	URL   string
	Title string
	HTML  *goquery.Document
}

// PageFetcher retrieves a rendered page for a URL. Fetch errors are
// recoverable from the pipeline's point of view; it moves on to the next
// URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// VectorIndex is the capability surface of the vector database. A single
// named collection is active at a time; Reset empties it wholesale.
type VectorIndex interface {
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, chunks []models.Chunk) error
	Query(ctx context.Context, text string, k int) ([]models.Chunk, error)
	Count(ctx context.Context) (int64, error)
	Close()
}

// Embedder turns texts into fixed-dimension vectors, one per input, in
// input order.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel generates a completion for a fully-assembled prompt.
type ChatModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
