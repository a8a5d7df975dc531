package graph

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TraceEvent classifies a span of graph execution.
type TraceEvent string

const (
	// TraceEventNodeStart marks the start of a node's forward phase.
	TraceEventNodeStart TraceEvent = "node_start"

	// TraceEventNodeEnd marks the end of a node's forward phase.
	TraceEventNodeEnd TraceEvent = "node_end"

	// TraceEventNodeError marks a node failure.
	TraceEventNodeError TraceEvent = "node_error"

	// TraceEventEdgeSend marks a payload placed on an edge.
	TraceEventEdgeSend TraceEvent = "edge_send"

	// TraceEventLoopIteration marks the start of a loop pass.
	TraceEventLoopIteration TraceEvent = "loop_iteration"
)

// TraceSpan is one recorded span with timing and payload snapshot.
type TraceSpan struct {
	ID        string
	Event     TraceEvent
	Node      string
	Edge      string
	Iteration int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Payload   Payload
	Err       error
}

// TraceHook receives completed spans.
type TraceHook interface {
	OnSpan(ctx context.Context, span *TraceSpan)
}

// TraceHookFunc adapts a function to TraceHook.
type TraceHookFunc func(ctx context.Context, span *TraceSpan)

// OnSpan implements TraceHook.
func (f TraceHookFunc) OnSpan(ctx context.Context, span *TraceSpan) { f(ctx, span) }

// Tracer collects spans of a graph's execution. It observes the engine
// through the ordinary lifecycle hook mechanism; attach it to a graph's
// HookManager before Build.
type Tracer struct {
	mu    sync.Mutex
	spans []*TraceSpan
	open  map[string]*TraceSpan
	hooks []TraceHook
}

// NewTracer creates an empty tracer.
func NewTracer() *Tracer {
	return &Tracer{open: make(map[string]*TraceSpan)}
}

// AddHook registers a receiver for completed spans.
func (t *Tracer) AddHook(h TraceHook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, h)
}

// Spans returns the spans recorded so far.
func (t *Tracer) Spans() []*TraceSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*TraceSpan, len(t.spans))
	copy(out, t.spans)
	return out
}

// Attach registers the tracer on the hook stages it observes.
func (t *Tracer) Attach(hm *HookManager) {
	hm.RegisterAll(t.observe, StageForward, StageForwardDone, StageEdgeSend, StageLoopIteration)
}

func (t *Tracer) observe(ctx context.Context, ev *HookEvent) error {
	switch ev.Stage {
	case StageForward:
		t.mu.Lock()
		t.open[ev.Node] = &TraceSpan{
			ID:        uuid.NewString(),
			Event:     TraceEventNodeStart,
			Node:      ev.Node,
			StartTime: time.Now(),
			Payload:   ev.Payload,
		}
		t.mu.Unlock()
	case StageForwardDone:
		t.mu.Lock()
		span := t.open[ev.Node]
		delete(t.open, ev.Node)
		t.mu.Unlock()
		if span == nil {
			span = &TraceSpan{ID: uuid.NewString(), Node: ev.Node, StartTime: time.Now()}
		}
		span.EndTime = time.Now()
		span.Duration = span.EndTime.Sub(span.StartTime)
		span.Payload = ev.Payload
		span.Err = ev.Err
		span.Event = TraceEventNodeEnd
		if ev.Err != nil {
			span.Event = TraceEventNodeError
		}
		t.record(ctx, span)
	case StageEdgeSend:
		now := time.Now()
		t.record(ctx, &TraceSpan{
			ID:        uuid.NewString(),
			Event:     TraceEventEdgeSend,
			Edge:      ev.Edge,
			StartTime: now,
			EndTime:   now,
			Payload:   ev.Payload,
		})
	case StageLoopIteration:
		now := time.Now()
		t.record(ctx, &TraceSpan{
			ID:        uuid.NewString(),
			Event:     TraceEventLoopIteration,
			Node:      ev.Node,
			Iteration: ev.Iteration,
			StartTime: now,
			EndTime:   now,
			Payload:   ev.Payload,
		})
	}
	return nil
}

func (t *Tracer) record(ctx context.Context, span *TraceSpan) {
	t.mu.Lock()
	t.spans = append(t.spans, span)
	hooks := make([]TraceHook, len(t.hooks))
	copy(hooks, t.hooks)
	t.mu.Unlock()

	for _, h := range hooks {
		h.OnSpan(ctx, span)
	}
}
