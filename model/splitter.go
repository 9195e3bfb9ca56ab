package model

import "strings"

// Bucket says where the splitter put an event.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketThinking
	BucketContent
	BucketToolCalls
)

type splitState int

const (
	stateNormal splitState = iota
	stateThinking
)

// Turn is the result of one generation round.
type Turn struct {
	Thinking  string
	Content   string
	ToolCalls []ToolCall
}

// Splitter sorts the events of one round into thinking, content and tool
// calls. Thinking text never reaches Content.
type Splitter struct {
	state     splitState
	thinking  strings.Builder
	content   strings.Builder
	toolCalls []ToolCall
}

func NewSplitter() *Splitter {
	return &Splitter{state: stateNormal}
}

func (s *Splitter) Feed(ev StreamEvent) Bucket {
	switch ev.Kind {
	case EventThinkOpen:
		s.state = stateThinking
		return BucketNone
	case EventThinkClose:
		s.state = stateNormal
		return BucketNone
	case EventToolCalls:
		s.toolCalls = append(s.toolCalls, ev.ToolCalls...)
		return BucketToolCalls
	case EventText:
		if s.state == stateThinking {
			s.thinking.WriteString(ev.Text)
			return BucketThinking
		}
		s.content.WriteString(ev.Text)
		return BucketContent
	}
	return BucketNone
}

func (s *Splitter) Finish() Turn {
	return Turn{
		Thinking:  s.thinking.String(),
		Content:   s.content.String(),
		ToolCalls: s.toolCalls,
	}
}
