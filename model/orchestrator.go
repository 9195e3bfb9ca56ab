package model

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"codingagent/config"
	"codingagent/mcp"
)

const DefaultMaxRounds = 25

type State int32

const (
	StateAwaitingUser State = iota
	StateGenerating
	StateDispatchingTools
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingUser:
		return "awaiting_user"
	case StateGenerating:
		return "generating"
	case StateDispatchingTools:
		return "dispatching_tools"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type Options struct {
	// MaxRounds caps generation rounds per Submit. Zero means DefaultMaxRounds.
	MaxRounds int

	// ParallelTools runs the calls of one round concurrently. Results are
	// still appended in call order.
	ParallelTools bool

	// LoopWindow is the number of recent tool calls checked for a repeating
	// pattern. Zero disables the check.
	LoopWindow int

	// ExcludeTools are hidden from the model and refused if called anyway.
	ExcludeTools []string

	Observer Observer
	Recorder Recorder
}

// Orchestrator runs the generate, dispatch, regenerate loop for a single
// conversation.
type Orchestrator struct {
	provider Provider
	router   ToolRouter
	conv     *Conversation
	opts     Options

	mu         sync.Mutex
	state      atomic.Int32
	signatures []string
}

func NewOrchestrator(provider Provider, router ToolRouter, conv *Conversation, opts Options) *Orchestrator {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	return &Orchestrator{
		provider: provider,
		router:   router,
		conv:     conv,
		opts:     opts,
	}
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) Conversation() *Conversation {
	return o.conv
}

// setState never leaves StateClosed.
func (o *Orchestrator) setState(s State) {
	for {
		cur := o.state.Load()
		if State(cur) == StateClosed {
			return
		}
		if o.state.CompareAndSwap(cur, int32(s)) {
			return
		}
	}
}

// Close stops the orchestrator. A Submit in progress returns ErrClosed after
// its current step; later Submits fail immediately.
func (o *Orchestrator) Close() {
	o.state.Store(int32(StateClosed))
}

// Schemas returns the tool schemas advertised to the model.
func (o *Orchestrator) Schemas() []mcp.ToolSchema {
	all := o.router.AllSchemas()
	if len(o.opts.ExcludeTools) == 0 {
		return all
	}
	out := make([]mcp.ToolSchema, 0, len(all))
	for _, schema := range all {
		if !slices.Contains(o.opts.ExcludeTools, schema.Name) {
			out = append(out, schema)
		}
	}
	return out
}

// Submit appends the user input and runs rounds until the model answers
// without tool calls.
func (o *Orchestrator) Submit(ctx context.Context, input string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.State() == StateClosed {
		return ErrClosed
	}
	defer o.setState(StateAwaitingUser)

	if err := o.conv.Append(Message{Role: RoleUser, Content: input}); err != nil {
		return err
	}

	for round := 1; ; round++ {
		if o.State() == StateClosed {
			return ErrClosed
		}
		if round > o.opts.MaxRounds {
			o.opts.Observer.OnNotice(fmt.Sprintf("Stopped after %d rounds of tool calls.", o.opts.MaxRounds))
			return &RoundLimitError{Rounds: o.opts.MaxRounds}
		}

		o.setState(StateGenerating)
		turn, err := o.generate(ctx)
		if err != nil {
			if turn.Content != "" {
				o.appendAssistant(Message{Role: RoleAssistant, Content: turn.Content})
			}
			if config.DebugLog != nil {
				config.DebugLog.Printf("[ORCH] round %d inference failed: %v", round, err)
			}
			return &InferenceError{Round: round, Err: err}
		}

		assignCallIDs(round, turn.ToolCalls)
		o.appendAssistant(Message{
			Role:      RoleAssistant,
			Content:   turn.Content,
			ToolCalls: turn.ToolCalls,
		})

		if len(turn.ToolCalls) == 0 {
			return nil
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("[ORCH] round %d: %d tool call(s)", round, len(turn.ToolCalls))
		}

		o.setState(StateDispatchingTools)
		o.dispatch(ctx, round, turn.ToolCalls)
		o.checkLoop(turn.ToolCalls)
	}
}

func (o *Orchestrator) generate(ctx context.Context) (Turn, error) {
	splitter := NewSplitter()

	err := o.provider.ChatWithTools(ctx, o.conv.Messages(), o.Schemas(), func(ev StreamEvent) error {
		switch splitter.Feed(ev) {
		case BucketThinking:
			o.opts.Observer.OnThinking(ev.Text)
		case BucketContent:
			o.opts.Observer.OnContent(ev.Text)
		}
		return nil
	})
	if err == nil {
		err = ctx.Err()
	}

	return splitter.Finish(), err
}

func (o *Orchestrator) appendAssistant(msg Message) {
	if err := o.conv.Append(msg); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[ORCH] failed to append assistant message: %v", err)
		}
		return
	}
	o.opts.Observer.OnAssistant(msg)
}

func assignCallIDs(round int, calls []ToolCall) {
	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = fmt.Sprintf("call_%d_%d", round, i)
		}
	}
}

type toolOutcome struct {
	text      string
	isError   bool
	startedAt time.Time
	duration  time.Duration
}

func (o *Orchestrator) dispatch(ctx context.Context, round int, calls []ToolCall) {
	if !o.opts.ParallelTools || len(calls) < 2 {
		for _, call := range calls {
			o.opts.Observer.OnToolCall(call)
			o.appendResult(ctx, round, call, o.execute(ctx, call))
		}
		return
	}

	for _, call := range calls {
		o.opts.Observer.OnToolCall(call)
	}

	outcomes := make([]toolOutcome, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = o.execute(ctx, call)
		}()
	}
	wg.Wait()

	for i, call := range calls {
		o.appendResult(ctx, round, call, outcomes[i])
	}
}

// execute never fails: every problem becomes error text for the model.
func (o *Orchestrator) execute(ctx context.Context, call ToolCall) toolOutcome {
	started := time.Now()
	text, isError := o.call(ctx, call)
	return toolOutcome{
		text:      text,
		isError:   isError,
		startedAt: started,
		duration:  time.Since(started),
	}
}

func (o *Orchestrator) call(ctx context.Context, call ToolCall) (string, bool) {
	// an interrupted batch still answers every call so the transcript stays paired
	if err := ctx.Err(); err != nil {
		return toolError(call.Name, fmt.Sprintf("cancelled: %v", err)), true
	}
	if slices.Contains(o.opts.ExcludeTools, call.Name) {
		return toolError(call.Name, &mcp.ToolNotFoundError{Name: call.Name}), true
	}

	provider, err := o.router.Resolve(call.Name)
	if err != nil {
		return toolError(call.Name, err), true
	}

	result, err := provider.Call(ctx, call.Name, call.Arguments)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[ORCH] tool %s failed: %v", call.Name, err)
		}
		return toolError(call.Name, err), true
	}

	if result.IsError {
		return toolError(call.Name, result.Text()), true
	}
	return result.Text(), false
}

func toolError(name string, reason any) string {
	return fmt.Sprintf("Error executing %s: %v", name, reason)
}

func (o *Orchestrator) appendResult(ctx context.Context, round int, call ToolCall, outcome toolOutcome) {
	msg := Message{
		Role:       RoleTool,
		Content:    outcome.text,
		ToolName:   call.Name,
		ToolCallID: call.ID,
	}
	if err := o.conv.Append(msg); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[ORCH] failed to append tool result: %v", err)
	}
	o.opts.Observer.OnToolResult(call, outcome.text, outcome.isError)

	if o.opts.Recorder == nil {
		return
	}
	record := ToolCallRecord{
		Round:     round,
		CallID:    call.ID,
		Name:      call.Name,
		Arguments: call.Arguments,
		Result:    outcome.text,
		IsError:   outcome.isError,
		StartedAt: outcome.startedAt,
		Duration:  outcome.duration,
	}
	// the record outlives a cancelled query
	if err := o.opts.Recorder.RecordToolCall(context.WithoutCancel(ctx), record); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[ORCH] failed to record tool call %s: %v", call.Name, err)
	}
}

func (o *Orchestrator) checkLoop(calls []ToolCall) {
	if o.opts.LoopWindow <= 0 {
		return
	}

	for _, call := range calls {
		o.signatures = append(o.signatures, toolCallSignature(call))
	}
	if n := len(o.signatures); n > o.opts.LoopWindow {
		o.signatures = o.signatures[n-o.opts.LoopWindow:]
	}

	if !DetectLoop(o.signatures, o.opts.LoopWindow) {
		return
	}

	warning := fmt.Sprintf(loopWarning, o.opts.LoopWindow)
	if err := o.conv.Append(Message{Role: RoleUser, Content: warning}); err != nil {
		return
	}
	o.opts.Observer.OnNotice(warning)
	o.signatures = nil
}
