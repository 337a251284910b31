package models

import "strings"

// Document is one article after successful extraction. Source is the URL it
// was fetched from and is unique within an ingestion run; Title is
// best-effort and may be empty.
type Document struct {
	Source  string
	Title   string
	Content string
}

// Chunk is a bounded-length passage of a document, carrying the parent
// document's metadata verbatim. Chunks are the unit of embedding and
// retrieval.
type Chunk struct {
	Text   string
	Source string
	Title  string
}

// Answer holds the model's verbatim response to one question and the
// deduplicated list of article URLs that grounded it.
type Answer struct {
	Text    string
	Sources []string
}

// SourcesList renders the sources for display, one URL per line.
func (a Answer) SourcesList() string {
	return strings.Join(a.Sources, "\n")
}
