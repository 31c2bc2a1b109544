package transcript_test

import (
	"testing"

	"ytscribe/internal/transcript"
)

func TestTextJoinsSegments(t *testing.T) {
	result := transcript.Result{Segments: []transcript.Segment{
		{Start: 0, End: 2, Text: "hello"},
		{Start: 2, End: 3, Text: "  "},
		{Start: 3, End: 5, Text: "world "},
	}}
	if got := result.Text(); got != "hello world" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestEmpty(t *testing.T) {
	if !(transcript.Result{}).Empty() {
		t.Fatal("zero result should be empty")
	}
	blank := transcript.Result{Segments: []transcript.Segment{{Text: "   "}}}
	if !blank.Empty() {
		t.Fatal("whitespace-only segments should be empty")
	}
	filled := transcript.Result{Segments: []transcript.Segment{{Text: "hi"}}}
	if filled.Empty() {
		t.Fatal("result with text should not be empty")
	}
}
