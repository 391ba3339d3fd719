package generator

import (
	"errors"
	"strings"
	"testing"
)

func TestParseQuizItems_ValidArray(t *testing.T) {
	input := `[
		{"question":"What is 2+2?","options":["3","4","5","6"],"answer":"4"},
		{"question":"Capital of France?","options":["Lyon","Nice","Paris","Lille"],"answer":"Paris"}
	]`

	items, err := ParseQuizItems(input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Answer != "4" {
		t.Errorf("expected answer %q, got %q", "4", items[0].Answer)
	}
	if len(items[1].Options) != 4 {
		t.Errorf("expected 4 options, got %d", len(items[1].Options))
	}
	if items[0].Selected() {
		t.Error("freshly parsed item should have no selection")
	}
}

func TestParseQuizItems_UnknownFieldsIgnored(t *testing.T) {
	input := `[{"question":"q","options":["a","b","c","d"],"answer":"a","difficulty":"easy","hint":"x"}]`

	items, err := ParseQuizItems(input)
	if err != nil {
		t.Fatalf("expected lenient decode, got: %v", err)
	}
	if len(items) != 1 || items[0].Question != "q" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestParseQuizItems_EmptyArray(t *testing.T) {
	items, err := ParseQuizItems("[]")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if items == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(items) != 0 {
		t.Errorf("expected 0 items, got %d", len(items))
	}
}

func TestParseQuizItems_NotJSON(t *testing.T) {
	_, err := ParseQuizItems("not json at all")
	if err == nil {
		t.Fatal("expected parse error")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if !strings.HasPrefix(err.Error(), "failed to parse quiz response: ") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestParseQuizItems_FallbackTextFails(t *testing.T) {
	_, err := ParseQuizItems(ExtractJSONArray(FallbackText))
	if err == nil {
		t.Fatal("expected fallback text to fail parsing")
	}
}

func TestParseQuizItems_ObjectInsteadOfArray(t *testing.T) {
	_, err := ParseQuizItems(`{"question":"q"}`)
	if err == nil {
		t.Fatal("expected error for non-array input")
	}
}
