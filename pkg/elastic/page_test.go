package elastic

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodePage(t *testing.T) {
	body := `{
		"_scroll_id": "cursor-1",
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_id": "a", "_source": {"msg": "one"}},
				{"_id": "b", "_source": {"msg": "two"}}
			]
		}
	}`

	page, err := decodePage(strings.NewReader(body))
	if err != nil {
		t.Fatalf("decodePage failed: %v", err)
	}

	if len(page.Docs) != 2 {
		t.Fatalf("Expected 2 docs, got %d", len(page.Docs))
	}

	cursor, err := page.Cursor()
	if err != nil {
		t.Fatalf("Cursor failed: %v", err)
	}
	if cursor != "cursor-1" {
		t.Errorf("Expected cursor-1, got %q", cursor)
	}
}

func TestDecodePage_EmptyHits(t *testing.T) {
	body := `{"_scroll_id": "cursor-2", "hits": {"hits": []}}`

	page, err := decodePage(strings.NewReader(body))
	if err != nil {
		t.Fatalf("decodePage failed: %v", err)
	}
	if len(page.Docs) != 0 {
		t.Errorf("Expected 0 docs, got %d", len(page.Docs))
	}
}

func TestDecodePage_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not_json", `not json`},
		{"missing_hits", `{"_scroll_id": "c"}`},
		{"hits_not_object", `{"hits": 42}`},
		{"missing_inner_hits", `{"hits": {"total": 5}}`},
		{"inner_hits_not_array", `{"hits": {"hits": "nope"}}`},
		{"hit_not_object", `{"hits": {"hits": [1, 2]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodePage(strings.NewReader(tt.body))
			if err == nil {
				t.Fatal("Expected error")
			}

			var perr *ProtocolError
			if !errors.As(err, &perr) {
				t.Errorf("Expected *ProtocolError, got %T", err)
			}
		})
	}
}

func TestPage_MissingCursor(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"absent", `{"hits": {"hits": [{"_id": "a"}]}}`},
		{"not_a_string", `{"_scroll_id": 7, "hits": {"hits": [{"_id": "a"}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := decodePage(strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("decodePage failed: %v", err)
			}

			_, err = page.Cursor()
			if err == nil {
				t.Fatal("Expected error from Cursor")
			}

			var perr *ProtocolError
			if !errors.As(err, &perr) {
				t.Errorf("Expected *ProtocolError, got %T", err)
			}
		})
	}
}
