package processor

import (
	"strings"

	"articleqa/internal/models"
)

type ProcessorConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// Processor splits documents into overlapping fixed-size chunks.
// Deterministic: the same documents and config always produce the same
// chunks.
type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 200
	}
	if config.ChunkOverlap >= config.ChunkSize {
		config.ChunkOverlap = config.ChunkSize / 5
	}

	return Processor{config: config}
}

// Process chunks each document's content in order. Every chunk inherits the
// parent document's source and title.
func (p *Processor) Process(docs []models.Document) ([]models.Chunk, error) {
	var chunks []models.Chunk

	for _, doc := range docs {
		for _, text := range p.splitText(doc.Content) {
			chunks = append(chunks, models.Chunk{
				Text:   text,
				Source: doc.Source,
				Title:  doc.Title,
			})
		}
	}

	return chunks, nil
}

// Split-point candidates in preference order: paragraph, newline, sentence,
// word. A hard character cut is the last resort.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// splitText walks the text with a window of ChunkSize runes. Consecutive
// chunks share ChunkOverlap runes. Within each window it prefers the latest
// natural boundary over a mid-word cut, as long as the boundary is past the
// overlap region (otherwise the walk would not advance).
func (p *Processor) splitText(text string) []string {
	runes := []rune(text)
	size := p.config.ChunkSize
	overlap := p.config.ChunkOverlap

	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, strings.TrimSpace(string(runes[start:])))
			break
		}

		cut := p.boundaryBefore(runes, start, end)
		chunks = append(chunks, strings.TrimSpace(string(runes[start:cut])))

		next := cut - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	// Drop empties left by trimming boundary whitespace.
	out := chunks[:0]
	for _, c := range chunks {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// boundaryBefore finds the latest natural split point in runes[start:end],
// falling back to end itself. The returned cut always leaves room for the
// overlap so the next window starts after this one.
func (p *Processor) boundaryBefore(runes []rune, start, end int) int {
	window := string(runes[start:end])
	floor := p.config.ChunkOverlap + 1

	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := len([]rune(window[:idx+len(sep)]))
		if cut >= floor {
			return start + cut
		}
	}
	return end
}
