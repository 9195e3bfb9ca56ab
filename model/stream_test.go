package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(events []StreamEvent) (kinds []EventKind, texts []string) {
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
		texts = append(texts, ev.Text)
	}
	return kinds, texts
}

func TestTagScannerSingleChunk(t *testing.T) {
	tests := []struct {
		name  string
		chunk string
		kinds []EventKind
		texts []string
	}{
		{
			name:  "no tags",
			chunk: "hello",
			kinds: []EventKind{EventText},
			texts: []string{"hello"},
		},
		{
			name:  "full block",
			chunk: "<think>plan</think>answer",
			kinds: []EventKind{EventThinkOpen, EventText, EventThinkClose, EventText},
			texts: []string{"", "plan", "", "answer"},
		},
		{
			name:  "other angle brackets are text",
			chunk: "a <b> c",
			kinds: []EventKind{EventText},
			texts: []string{"a <b> c"},
		},
		{
			name:  "trailing partial tag flushed as text",
			chunk: "x <thi",
			kinds: []EventKind{EventText, EventText},
			texts: []string{"x ", "<thi"},
		},
		{
			name:  "empty",
			chunk: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s TagScanner
			kinds, texts := collect(append(s.Feed(tt.chunk), s.Flush()...))
			assert.Equal(t, tt.kinds, kinds)
			assert.Equal(t, tt.texts, texts)
		})
	}
}

func TestTagScannerAcrossChunks(t *testing.T) {
	var s TagScanner
	var events []StreamEvent
	for _, chunk := range []string{"<th", "ink>pl", "an</", "think", ">done"} {
		events = append(events, s.Feed(chunk)...)
	}
	events = append(events, s.Flush()...)

	splitter := NewSplitter()
	for _, ev := range events {
		splitter.Feed(ev)
	}
	turn := splitter.Finish()

	assert.Equal(t, "plan", turn.Thinking)
	assert.Equal(t, "done", turn.Content)
}
