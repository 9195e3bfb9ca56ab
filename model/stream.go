package model

import "strings"

const (
	ThinkOpenTag  = "<think>"
	ThinkCloseTag = "</think>"
)

type EventKind int

const (
	EventText EventKind = iota
	EventToolCalls
	EventThinkOpen
	EventThinkClose
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventToolCalls:
		return "tool_calls"
	case EventThinkOpen:
		return "think_open"
	case EventThinkClose:
		return "think_close"
	default:
		return "unknown"
	}
}

// StreamEvent is one item of a streamed model response.
type StreamEvent struct {
	Kind      EventKind
	Text      string
	ToolCalls []ToolCall
}

func TextEvent(text string) StreamEvent {
	return StreamEvent{Kind: EventText, Text: text}
}

func ToolCallsEvent(calls []ToolCall) StreamEvent {
	return StreamEvent{Kind: EventToolCalls, ToolCalls: calls}
}

func ThinkOpenEvent() StreamEvent {
	return StreamEvent{Kind: EventThinkOpen}
}

func ThinkCloseEvent() StreamEvent {
	return StreamEvent{Kind: EventThinkClose}
}

// StreamCallback receives streamed events in order. Returning an error stops
// the stream.
type StreamCallback func(ev StreamEvent) error

// TagScanner finds think tags in streamed text, including tags split across
// chunks. Text that could be the start of a tag is held back until the next
// chunk decides it.
type TagScanner struct {
	pending string
}

func (s *TagScanner) Feed(chunk string) []StreamEvent {
	buf := s.pending + chunk
	s.pending = ""

	var events []StreamEvent
	for len(buf) > 0 {
		idx := strings.IndexByte(buf, '<')
		if idx < 0 {
			events = appendText(events, buf)
			break
		}

		events = appendText(events, buf[:idx])
		buf = buf[idx:]

		switch {
		case strings.HasPrefix(buf, ThinkOpenTag):
			events = append(events, ThinkOpenEvent())
			buf = buf[len(ThinkOpenTag):]
		case strings.HasPrefix(buf, ThinkCloseTag):
			events = append(events, ThinkCloseEvent())
			buf = buf[len(ThinkCloseTag):]
		case strings.HasPrefix(ThinkOpenTag, buf) || strings.HasPrefix(ThinkCloseTag, buf):
			s.pending = buf
			buf = ""
		default:
			events = appendText(events, buf[:1])
			buf = buf[1:]
		}
	}

	return events
}

// Flush returns any held-back text at the end of the stream.
func (s *TagScanner) Flush() []StreamEvent {
	if s.pending == "" {
		return nil
	}
	text := s.pending
	s.pending = ""
	return []StreamEvent{TextEvent(text)}
}

func appendText(events []StreamEvent, text string) []StreamEvent {
	if text == "" {
		return events
	}
	if n := len(events); n > 0 && events[n-1].Kind == EventText {
		events[n-1].Text += text
		return events
	}
	return append(events, TextEvent(text))
}
