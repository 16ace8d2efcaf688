package elastic

import (
	"encoding/json"
	"fmt"
	"io"
)

// Page is the decoded result of one search or scroll round-trip: the batch
// of matched documents plus the continuation cursor needed to fetch the
// next batch. A page with zero documents is always the final page for its
// worker.
type Page struct {
	// Docs holds the raw hit objects in engine order. Each hit may carry
	// transient ranking fields (sort key, relevance score) that callers
	// strip before emission.
	Docs []map[string]any

	cursor    string
	hasCursor bool
}

// Cursor returns the continuation token for the next request. The token is
// only valid for the engine's scroll window since this page was fetched.
func (p *Page) Cursor() (string, error) {
	if !p.hasCursor {
		return "", &ProtocolError{Field: "_scroll_id", Reason: "missing or not a string"}
	}
	return p.cursor, nil
}

// decodePage parses a search/scroll response envelope. The documents array
// is validated eagerly; the cursor is validated lazily via Cursor, since a
// terminal empty page needs no cursor.
func decodePage(r io.Reader) (*Page, error) {
	var envelope map[string]any
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, &ProtocolError{Field: "body", Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}

	outer, ok := envelope["hits"].(map[string]any)
	if !ok {
		return nil, &ProtocolError{Field: "hits", Reason: "missing or not an object"}
	}
	rawHits, ok := outer["hits"].([]any)
	if !ok {
		return nil, &ProtocolError{Field: "hits.hits", Reason: "missing or not an array"}
	}

	docs := make([]map[string]any, 0, len(rawHits))
	for i, h := range rawHits {
		doc, ok := h.(map[string]any)
		if !ok {
			return nil, &ProtocolError{Field: "hits.hits", Reason: fmt.Sprintf("element %d is not an object", i)}
		}
		docs = append(docs, doc)
	}

	page := &Page{Docs: docs}
	if cursor, ok := envelope["_scroll_id"].(string); ok {
		page.cursor = cursor
		page.hasCursor = true
	}

	return page, nil
}
