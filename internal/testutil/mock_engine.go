// Package testutil provides testing utilities for the export engine.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// ScriptedPage defines one response in a worker slice's page sequence.
// Zero-value fields produce a well-formed page; the override fields inject
// protocol and transport failures.
type ScriptedPage struct {
	// Docs are the hit objects returned on this page.
	Docs []map[string]any

	// OmitScrollID drops the _scroll_id field from the envelope.
	OmitScrollID bool

	// StatusCode, when non-zero, makes the server answer with this HTTP
	// status and no envelope.
	StatusCode int

	// RawBody, when non-empty, replaces the whole response body.
	RawBody string

	// Delay is slept before answering.
	Delay time.Duration
}

// MockEngine is a scripted mock of the engine's scroll API. Each slice id
// gets its own page sequence; cursors encode the slice and next page index
// so continuation requests resume the right script. Requests past the end
// of a script are answered with an empty terminal page.
type MockEngine struct {
	server *httptest.Server

	mu      sync.Mutex
	scripts map[int][]ScriptedPage

	// Tracking
	SearchCount  int
	ScrollCount  int
	ClearCount   int
	LastIndex    string
	SeenSliceIDs []int
}

// NewMockEngine creates a started mock engine with no scripts. Unscripted
// slices return an empty terminal page immediately.
func NewMockEngine() *MockEngine {
	m := &MockEngine{
		scripts: make(map[int][]ScriptedPage),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// Script registers the page sequence for one slice id. Single-worker
// exports (no slice clause) read slice 0.
func (m *MockEngine) Script(slice int, pages ...ScriptedPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[slice] = pages
}

// URL returns the mock engine's base URL.
func (m *MockEngine) URL() string {
	return m.server.URL
}

// Requests returns the total number of search and scroll requests served.
func (m *MockEngine) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SearchCount + m.ScrollCount
}

// Close shuts the mock engine down.
func (m *MockEngine) Close() {
	m.server.Close()
}

func (m *MockEngine) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/_search/scroll" {
		if r.Method == http.MethodDelete {
			m.mu.Lock()
			m.ClearCount++
			m.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"succeeded": true}`)
			return
		}
		m.handleScroll(w, r)
		return
	}

	if strings.HasSuffix(r.URL.Path, "/_search") {
		m.handleSearch(w, r)
		return
	}

	http.NotFound(w, r)
}

func (m *MockEngine) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Slice *struct {
			ID int `json:"id"`
		} `json:"slice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	slice := 0
	if body.Slice != nil {
		slice = body.Slice.ID
	}

	m.mu.Lock()
	m.SearchCount++
	m.LastIndex = strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/_search")
	m.SeenSliceIDs = append(m.SeenSliceIDs, slice)
	m.mu.Unlock()

	m.servePage(w, slice, 0)
}

func (m *MockEngine) handleScroll(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScrollID string `json:"scroll_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	var slice, page int
	if _, err := fmt.Sscanf(body.ScrollID, "w%d:%d", &slice, &page); err != nil {
		http.Error(w, "unknown scroll id", http.StatusNotFound)
		return
	}

	m.mu.Lock()
	m.ScrollCount++
	m.mu.Unlock()

	m.servePage(w, slice, page)
}

func (m *MockEngine) servePage(w http.ResponseWriter, slice, page int) {
	m.mu.Lock()
	script := m.scripts[slice]
	m.mu.Unlock()

	var scripted ScriptedPage
	if page < len(script) {
		scripted = script[page]
	}

	if scripted.Delay > 0 {
		time.Sleep(scripted.Delay)
	}

	if scripted.StatusCode != 0 {
		http.Error(w, `{"error": "scripted failure"}`, scripted.StatusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if scripted.RawBody != "" {
		fmt.Fprint(w, scripted.RawBody)
		return
	}

	envelope := map[string]any{
		"hits": map[string]any{
			"hits": docsOrEmpty(scripted.Docs),
		},
	}
	if !scripted.OmitScrollID {
		envelope["_scroll_id"] = fmt.Sprintf("w%d:%d", slice, page+1)
	}

	json.NewEncoder(w).Encode(envelope)
}

func docsOrEmpty(docs []map[string]any) []map[string]any {
	if docs == nil {
		return []map[string]any{}
	}
	return docs
}
