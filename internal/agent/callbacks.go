package agent

import (
	"context"
	"sync/atomic"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/tools"
)

// ExecutorChainName is the name attached to the executor's own chain
// events. The translator filters it out as infrastructure noise.
const ExecutorChainName = "agent_executor"

// channelHandler adapts langchaingo lifecycle callbacks into normalized
// Events on a channel. One instance lives per agent run.
type channelHandler struct {
	callbacks.SimpleHandler

	ctx    context.Context
	events chan<- Event
	model  string

	// streamed flags that token-level chunks were already delivered for
	// the current generation, so the end-of-generation content blocks are
	// suppressed instead of duplicating the response.
	streamed atomic.Bool

	// lastTool carries the tool name from the action callback to the
	// nameless tool-end callback.
	lastTool atomic.Value

	// delivered flags that at least one content-bearing event went out,
	// which makes the final-answer fallback unnecessary.
	delivered atomic.Bool
}

var _ callbacks.Handler = (*channelHandler)(nil)

func newChannelHandler(ctx context.Context, events chan<- Event, model string) *channelHandler {
	return &channelHandler{ctx: ctx, events: events, model: model}
}

// send delivers an event unless the run context is already cancelled.
func (h *channelHandler) send(ev Event) {
	if ev.Kind == KindModelToken {
		h.delivered.Store(true)
	}
	select {
	case h.events <- ev:
	case <-h.ctx.Done():
	}
}

// finish emits the run's final answer as content when nothing was
// delivered during the run, so the reply survives providers that surface
// neither streaming chunks nor generation callbacks.
func (h *channelHandler) finish(answer string) {
	if answer == "" || h.delivered.Load() {
		return
	}
	c := PlainChunk(answer)
	h.send(Event{Kind: KindModelToken, Name: h.model, Chunk: &c})
}

func (h *channelHandler) HandleLLMStart(_ context.Context, _ []string) {
	h.streamed.Store(false)
	h.send(Event{Kind: KindModelStart, Name: h.model})
}

func (h *channelHandler) HandleLLMGenerateContentStart(_ context.Context, _ []llms.MessageContent) {
	h.streamed.Store(false)
	h.send(Event{Kind: KindModelStart, Name: h.model})
}

func (h *channelHandler) HandleStreamingFunc(_ context.Context, chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	h.streamed.Store(true)

	c := PlainChunk(string(chunk))
	h.send(Event{Kind: KindModelToken, Name: h.model, Chunk: &c})
}

func (h *channelHandler) HandleLLMGenerateContentEnd(_ context.Context, res *llms.ContentResponse) {
	if h.streamed.Load() || res == nil {
		return
	}

	var blocks []TextBlock
	for _, choice := range res.Choices {
		if choice == nil {
			continue
		}
		blocks = append(blocks, TextBlock{Type: "text", Text: choice.Content})
	}
	if len(blocks) == 0 {
		return
	}

	c := BlockChunk(blocks)
	h.send(Event{Kind: KindModelToken, Name: h.model, Chunk: &c})
}

func (h *channelHandler) HandleAgentAction(_ context.Context, action schema.AgentAction) {
	h.lastTool.Store(action.Tool)
	h.send(Event{Kind: KindToolStart, Name: action.Tool, Input: action.ToolInput})
}

func (h *channelHandler) HandleToolEnd(_ context.Context, _ string) {
	name, _ := h.lastTool.Load().(string)
	h.send(Event{Kind: KindToolEnd, Name: name})
}

func (h *channelHandler) HandleToolError(_ context.Context, _ error) {
	// Tool failures are fed back to the model as observations; the run
	// itself keeps going, so the client just sees the tool finish.
	name, _ := h.lastTool.Load().(string)
	h.send(Event{Kind: KindToolEnd, Name: name})
}

func (h *channelHandler) HandleChainStart(_ context.Context, _ map[string]any) {
	h.send(Event{Kind: KindChainStart, Name: ExecutorChainName})
}

func (h *channelHandler) HandleChainEnd(_ context.Context, _ map[string]any) {
	h.send(Event{Kind: KindChainEnd, Name: ExecutorChainName})
}

// observedModel wraps a provider client so generation lifecycle events
// reach the handler regardless of the provider's own callback support.
// The agent executor never forwards these itself.
type observedModel struct {
	llms.Model

	handler *channelHandler
}

func (m observedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.handler.HandleLLMGenerateContentStart(ctx, messages)
	res, err := m.Model.GenerateContent(ctx, messages, options...)
	if err == nil {
		m.handler.HandleLLMGenerateContentEnd(ctx, res)
	}
	return res, err
}

// observedTool wraps a tool so completion events reach the handler; the
// executor reports tool starts through the action callback but leaves
// finishes to the tool itself.
type observedTool struct {
	tool    tools.Tool
	handler *channelHandler
}

func (t observedTool) Name() string        { return t.tool.Name() }
func (t observedTool) Description() string { return t.tool.Description() }

func (t observedTool) Call(ctx context.Context, input string) (string, error) {
	out, err := t.tool.Call(ctx, input)
	if err != nil {
		t.handler.HandleToolError(ctx, err)
		return out, err
	}
	t.handler.HandleToolEnd(ctx, out)
	return out, nil
}

func observeTools(set []tools.Tool, handler *channelHandler) []tools.Tool {
	wrapped := make([]tools.Tool, len(set))
	for i, tool := range set {
		wrapped[i] = observedTool{tool: tool, handler: handler}
	}
	return wrapped
}
