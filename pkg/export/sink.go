package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// transientKeys are the ranking fields the engine attaches to each hit for
// pagination and scoring. They are not part of the document's persistent
// content and never appear in output. Absence is not an error.
var transientKeys = [...]string{"sort", "_score"}

// Sink writes exported documents to the output stream, one self-contained
// JSON record per line. A single sink is shared by all workers; the mutex
// keeps each record's bytes contiguous on the stream. Every document is a
// single Write call so a downstream consumer sees records as they are
// produced, not only at session end.
type Sink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewSink creates a sink writing to out, defaulting to stdout.
func NewSink(out io.Writer) *Sink {
	if out == nil {
		out = os.Stdout
	}
	return &Sink{out: out}
}

// Emit strips the transient ranking fields from doc and writes it as one
// newline-terminated record.
func (s *Sink) Emit(doc map[string]any) error {
	for _, key := range transientKeys {
		delete(doc, key)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	documentsExportedTotal.Inc()
	return nil
}
