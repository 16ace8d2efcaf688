package query

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBuild_Defaults(t *testing.T) {
	q, err := Build("", DefaultSize, 0, 1)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if string(q.Filter) != MatchAll {
		t.Errorf("Expected match-all filter, got %s", q.Filter)
	}
	if q.Size != 100 {
		t.Errorf("Expected size 100, got %d", q.Size)
	}
	if len(q.Sort) != 1 || q.Sort[0] != "_doc" {
		t.Errorf("Expected sort by _doc, got %v", q.Sort)
	}
	if q.Slice != nil {
		t.Errorf("Expected no slice clause for a single worker, got %+v", q.Slice)
	}
}

func TestBuild_CustomFilter(t *testing.T) {
	filter := `{"term":{"level":"error"}}`

	q, err := Build(filter, 50, 0, 1)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if string(q.Filter) != filter {
		t.Errorf("Expected filter %s, got %s", filter, q.Filter)
	}
	if q.Size != 50 {
		t.Errorf("Expected size 50, got %d", q.Size)
	}
}

func TestBuild_InvalidFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
	}{
		{"unclosed_brace", `{"match_all":{}`},
		{"plain_text", `not json at all`},
		{"trailing_garbage", `{"match_all":{}} extra`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.filter, DefaultSize, 0, 1)
			if err == nil {
				t.Fatal("Expected error for invalid filter")
			}

			var qerr *QueryError
			if !errors.As(err, &qerr) {
				t.Errorf("Expected *QueryError, got %T", err)
			}
		})
	}
}

func TestBuild_NegativeSize(t *testing.T) {
	_, err := Build("", -1, 0, 1)
	if err == nil {
		t.Fatal("Expected error for negative size")
	}

	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Errorf("Expected *QueryError, got %T", err)
	}
}

func TestBuild_SliceClause(t *testing.T) {
	const workers = 4

	for id := 0; id < workers; id++ {
		q, err := Build("", DefaultSize, id, workers)
		if err != nil {
			t.Fatalf("Build failed for worker %d: %v", id, err)
		}

		if q.Slice == nil {
			t.Fatalf("Expected slice clause for worker %d", id)
		}
		if q.Slice.ID != id {
			t.Errorf("Expected slice id %d, got %d", id, q.Slice.ID)
		}
		if q.Slice.Max != workers {
			t.Errorf("Expected slice max %d, got %d", workers, q.Slice.Max)
		}
	}
}

func TestQuery_MarshalShape(t *testing.T) {
	q, err := Build("", 2, 1, 2)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	for _, key := range []string{"query", "size", "sort", "slice"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected marshalled query to contain %q", key)
		}
	}
}

func TestQuery_MarshalOmitsSliceForSingleWorker(t *testing.T) {
	q, err := Build("", 2, 0, 1)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if _, ok := decoded["slice"]; ok {
		t.Error("Expected no slice key for a single worker")
	}
}
