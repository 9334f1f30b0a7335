package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/tools"
)

func drainEvents(ch chan Event) []Event {
	var out []Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func plainText(t *testing.T, ev Event) string {
	t.Helper()
	require.NotNil(t, ev.Chunk)
	text, ok := ev.Chunk.Plain()
	require.True(t, ok)
	return text
}

type stubModel struct {
	res *llms.ContentResponse
	err error
}

func (s stubModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return s.res, s.err
}

func (s stubModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", s.err
}

type stubTool struct {
	name string
	out  string
	err  error
}

func (s stubTool) Name() string        { return s.name }
func (s stubTool) Description() string { return "stub tool" }

func (s stubTool) Call(_ context.Context, _ string) (string, error) {
	return s.out, s.err
}

func TestChannelHandlerStreamingSuppressesGenerationBlocks(t *testing.T) {
	ch := make(chan Event, 16)
	h := newChannelHandler(context.Background(), ch, "claude-3-5-sonnet-20241022")

	h.HandleLLMGenerateContentStart(context.Background(), nil)
	h.HandleStreamingFunc(context.Background(), []byte("Hel"))
	h.HandleStreamingFunc(context.Background(), []byte("lo"))
	h.HandleLLMGenerateContentEnd(context.Background(), &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "Hello"}},
	})

	events := drainEvents(ch)
	require.Len(t, events, 3)

	assert.Equal(t, KindModelStart, events[0].Kind)
	assert.Equal(t, "claude-3-5-sonnet-20241022", events[0].Name)
	assert.Equal(t, "Hel", plainText(t, events[1]))
	assert.Equal(t, "lo", plainText(t, events[2]))
}

func TestChannelHandlerEmitsBlocksWithoutStreaming(t *testing.T) {
	ch := make(chan Event, 16)
	h := newChannelHandler(context.Background(), ch, "gpt-4o")

	h.HandleLLMGenerateContentStart(context.Background(), nil)
	h.HandleLLMGenerateContentEnd(context.Background(), &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "part one"}, {Content: "part two"}},
	})

	events := drainEvents(ch)
	require.Len(t, events, 2)
	assert.Equal(t, KindModelStart, events[0].Kind)
	assert.Equal(t, KindModelToken, events[1].Kind)

	blocks, ok := events[1].Chunk.Blocks()
	require.True(t, ok)
	require.Len(t, blocks, 2)
	assert.Equal(t, "part one", blocks[0].Text)
	assert.Equal(t, "part two", blocks[1].Text)
}

func TestChannelHandlerSkipsEmptyResponses(t *testing.T) {
	ch := make(chan Event, 16)
	h := newChannelHandler(context.Background(), ch, "gpt-4o")

	h.HandleStreamingFunc(context.Background(), nil)
	h.HandleLLMGenerateContentEnd(context.Background(), nil)
	h.HandleLLMGenerateContentEnd(context.Background(), &llms.ContentResponse{})

	assert.Empty(t, drainEvents(ch))
}

func TestChannelHandlerCarriesToolNameToToolEnd(t *testing.T) {
	ch := make(chan Event, 16)
	h := newChannelHandler(context.Background(), ch, "gpt-4o")

	h.HandleAgentAction(context.Background(), schema.AgentAction{
		Tool:      ToolWebSearch,
		ToolInput: `{"query":"weather"}`,
	})
	h.HandleToolEnd(context.Background(), "sunny")
	h.HandleToolError(context.Background(), errors.New("rate limited"))

	events := drainEvents(ch)
	require.Len(t, events, 3)

	assert.Equal(t, KindToolStart, events[0].Kind)
	assert.Equal(t, ToolWebSearch, events[0].Name)
	assert.Equal(t, `{"query":"weather"}`, events[0].Input)

	assert.Equal(t, KindToolEnd, events[1].Kind)
	assert.Equal(t, ToolWebSearch, events[1].Name)

	assert.Equal(t, KindToolEnd, events[2].Kind)
	assert.Equal(t, ToolWebSearch, events[2].Name)
}

func TestChannelHandlerChainEventsNamed(t *testing.T) {
	ch := make(chan Event, 16)
	h := newChannelHandler(context.Background(), ch, "gpt-4o")

	h.HandleChainStart(context.Background(), nil)
	h.HandleChainEnd(context.Background(), nil)

	events := drainEvents(ch)
	require.Len(t, events, 2)
	assert.Equal(t, KindChainStart, events[0].Kind)
	assert.Equal(t, ExecutorChainName, events[0].Name)
	assert.Equal(t, KindChainEnd, events[1].Kind)
	assert.Equal(t, ExecutorChainName, events[1].Name)
}

func TestChannelHandlerSendHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan Event)
	h := newChannelHandler(ctx, ch, "gpt-4o")

	// No reader on the channel; a blocked send would hang the test.
	h.HandleStreamingFunc(context.Background(), []byte("lost"))
}

func TestChannelHandlerFinishDeliversUnstreamedAnswer(t *testing.T) {
	ch := make(chan Event, 16)
	h := newChannelHandler(context.Background(), ch, "gpt-4o")

	h.finish("final answer")

	events := drainEvents(ch)
	require.Len(t, events, 1)
	assert.Equal(t, KindModelToken, events[0].Kind)
	assert.Equal(t, "final answer", plainText(t, events[0]))
}

func TestChannelHandlerFinishSkipsDeliveredRuns(t *testing.T) {
	ch := make(chan Event, 16)
	h := newChannelHandler(context.Background(), ch, "gpt-4o")

	h.HandleStreamingFunc(context.Background(), []byte("already out"))
	drainEvents(ch)

	h.finish("final answer")
	h.finish("")

	assert.Empty(t, drainEvents(ch))
}

func TestObservedModelReportsGeneration(t *testing.T) {
	ch := make(chan Event, 16)
	h := newChannelHandler(context.Background(), ch, "gpt-4o")

	res := &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "hi"}}}
	m := observedModel{Model: stubModel{res: res}, handler: h}

	got, err := m.GenerateContent(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, res, got)

	events := drainEvents(ch)
	require.Len(t, events, 2)
	assert.Equal(t, KindModelStart, events[0].Kind)
	assert.Equal(t, KindModelToken, events[1].Kind)
}

func TestObservedModelSkipsEndOnError(t *testing.T) {
	ch := make(chan Event, 16)
	h := newChannelHandler(context.Background(), ch, "gpt-4o")

	m := observedModel{Model: stubModel{err: errors.New("provider down")}, handler: h}

	_, err := m.GenerateContent(context.Background(), nil)
	require.Error(t, err)

	events := drainEvents(ch)
	require.Len(t, events, 1)
	assert.Equal(t, KindModelStart, events[0].Kind)
}

func TestObservedToolReportsCompletion(t *testing.T) {
	ch := make(chan Event, 16)
	h := newChannelHandler(context.Background(), ch, "gpt-4o")
	h.HandleAgentAction(context.Background(), schema.AgentAction{Tool: "lookup"})
	drainEvents(ch)

	succeeding := observedTool{tool: stubTool{name: "lookup", out: "found"}, handler: h}
	out, err := succeeding.Call(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "found", out)

	failing := observedTool{tool: stubTool{name: "lookup", err: errors.New("boom")}, handler: h}
	_, err = failing.Call(context.Background(), "x")
	require.Error(t, err)

	events := drainEvents(ch)
	require.Len(t, events, 2)
	assert.Equal(t, KindToolEnd, events[0].Kind)
	assert.Equal(t, "lookup", events[0].Name)
	assert.Equal(t, KindToolEnd, events[1].Kind)
}

func TestObserveToolsPreservesNames(t *testing.T) {
	ch := make(chan Event, 16)
	h := newChannelHandler(context.Background(), ch, "gpt-4o")

	set := observeTools([]tools.Tool{
		stubTool{name: "alpha"},
		stubTool{name: "beta"},
	}, h)

	require.Len(t, set, 2)
	assert.Equal(t, "alpha", set[0].Name())
	assert.Equal(t, "beta", set[1].Name())
	assert.Equal(t, "stub tool", set[0].Description())
}
