package provider

import (
	"codingagent/model"
)

// streamEmitter turns backend stream fragments into model.StreamEvent values.
// Reasoning reported in its own field is wrapped in think sentinels, and
// content is scanned for inline <think> tags.
type streamEmitter struct {
	callback model.StreamCallback
	scanner  model.TagScanner
	thinking bool
}

func newStreamEmitter(callback model.StreamCallback) *streamEmitter {
	return &streamEmitter{callback: callback}
}

func (e *streamEmitter) emit(ev model.StreamEvent) error {
	if e.callback == nil {
		return nil
	}
	return e.callback(ev)
}

// thought emits text reported as reasoning by the backend.
func (e *streamEmitter) thought(text string) error {
	if text == "" {
		return nil
	}
	if !e.thinking {
		e.thinking = true
		if err := e.emit(model.ThinkOpenEvent()); err != nil {
			return err
		}
	}
	return e.emit(model.TextEvent(text))
}

// content emits answer text, closing a reasoning span first.
func (e *streamEmitter) content(text string) error {
	if text == "" {
		return nil
	}
	if err := e.closeThought(); err != nil {
		return err
	}
	for _, ev := range e.scanner.Feed(text) {
		if err := e.emit(ev); err != nil {
			return err
		}
	}
	return nil
}

func (e *streamEmitter) toolCalls(calls []model.ToolCall) error {
	if len(calls) == 0 {
		return nil
	}
	return e.emit(model.ToolCallsEvent(calls))
}

func (e *streamEmitter) closeThought() error {
	if !e.thinking {
		return nil
	}
	e.thinking = false
	return e.emit(model.ThinkCloseEvent())
}

// finish flushes held-back text and closes an open reasoning span.
func (e *streamEmitter) finish() error {
	for _, ev := range e.scanner.Flush() {
		if err := e.emit(ev); err != nil {
			return err
		}
	}
	return e.closeThought()
}
