package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// countingWriter records how many Write calls it receives.
type countingWriter struct {
	buf    bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.buf.Write(p)
}

// failingWriter fails every write.
type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("pipe closed")
}

func TestSink_StripsTransientFields(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := NewSink(buf)

	doc := map[string]any{
		"_id":     "a",
		"_source": map[string]any{"msg": "hello"},
		"sort":    []any{float64(17)},
		"_score":  1.3,
	}

	if err := sink.Emit(doc); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if _, ok := record["sort"]; ok {
		t.Error("Emitted record must not contain the sort key")
	}
	if _, ok := record["_score"]; ok {
		t.Error("Emitted record must not contain the relevance score")
	}
	if record["_id"] != "a" {
		t.Errorf("Expected _id to survive, got %v", record["_id"])
	}
}

func TestSink_TransientFieldsAbsentIsFine(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := NewSink(buf)

	if err := sink.Emit(map[string]any{"_id": "b"}); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
}

func TestSink_OneWritePerDocument(t *testing.T) {
	w := &countingWriter{}
	sink := NewSink(w)

	for i := 0; i < 3; i++ {
		if err := sink.Emit(map[string]any{"_id": i}); err != nil {
			t.Fatalf("Emit failed: %v", err)
		}
	}

	if w.writes != 3 {
		t.Errorf("Expected 3 writes (one per document), got %d", w.writes)
	}

	lines := strings.Split(strings.TrimRight(w.buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(lines))
	}
	for i, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Errorf("Record %d is not self-contained JSON: %q", i, line)
		}
	}
}

func TestSink_WriteError(t *testing.T) {
	sink := NewSink(failingWriter{})

	if err := sink.Emit(map[string]any{"_id": "a"}); err == nil {
		t.Fatal("Expected error from failing writer")
	}
}
