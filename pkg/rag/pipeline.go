package rag

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"articleqa/internal/models"
	"articleqa/internal/types"
	"articleqa/pkg/extractor"
	"articleqa/pkg/processor"
)

// previewLength bounds the content excerpt shown in progress messages.
const previewLength = 200

// Pipeline runs one ingestion: fetch each URL, extract the article, chunk
// it, and replace the vector index contents with the result. Only one run
// should execute at a time against a given index.
type Pipeline struct {
	fetcher   types.PageFetcher
	extractor *extractor.Extractor
	processor processor.Processor
	index     types.VectorIndex
}

func NewPipeline(fetcher types.PageFetcher, ex *extractor.Extractor, proc processor.Processor, index types.VectorIndex) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: ex,
		processor: proc,
		index:     index,
	}
}

// Ingest processes the URLs in order and streams progress events. The
// channel closes after a terminal event (EventComplete or EventFatal).
// Per-URL fetch and extraction failures are reported and skipped; reset and
// upsert failures end the run.
func (p *Pipeline) Ingest(ctx context.Context, urls []string) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)
		p.run(ctx, urls, events)
	}()

	return events
}

func (p *Pipeline) run(ctx context.Context, urls []string, events chan<- Event) {
	emit := func(kind EventKind, format string, args ...interface{}) {
		events <- Event{Kind: kind, Message: fmt.Sprintf(format, args...)}
	}

	emit(EventInfo, "🔄 Resetting vector index...")
	if err := p.index.Reset(ctx); err != nil {
		emit(EventFatal, "❌ Failed to reset vector index: %v", err)
		return
	}

	divider := strings.Repeat("─", 50)

	var docs []models.Document
	for i, url := range urls {
		emit(EventInfo, "📄 Processing article %d/%d: %s", i+1, len(urls), url)

		page, err := p.fetcher.Fetch(ctx, url)
		if err != nil {
			emit(EventError, "❌ Error processing article %d: %v", i+1, err)
			emit(EventInfo, divider)
			continue
		}
		emit(EventInfo, "✅ Page loaded: '%s'", page.Title)

		text, err := p.extractor.Extract(page.HTML, url)
		if err != nil {
			emit(EventWarn, "⚠️ Could not extract meaningful content from article %d", i+1)
			emit(EventInfo, divider)
			continue
		}

		emit(EventInfo, "✅ Content extracted (%d chars): %s...", utf8.RuneCountInString(text), preview(text))
		docs = append(docs, models.Document{
			Source:  url,
			Title:   page.Title,
			Content: text,
		})
		emit(EventInfo, divider)
	}

	if len(docs) == 0 {
		emit(EventFatal, "❌ No content was extracted from any URL. Please check the URLs and try again.")
		return
	}

	emit(EventInfo, "📝 Splitting %d article(s) into chunks...", len(docs))
	chunks, err := p.processor.Process(docs)
	if err != nil {
		emit(EventFatal, "❌ Failed to split articles: %v", err)
		return
	}

	emit(EventInfo, "💾 Adding %d chunks to vector index...", len(chunks))
	if err := p.index.Upsert(ctx, chunks); err != nil {
		emit(EventFatal, "❌ Failed to store chunks: %v", err)
		return
	}

	emit(EventComplete, "✅ Complete! Vector index is ready for questions.")
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return strings.ReplaceAll(string(runes), "\n", " ")
}
