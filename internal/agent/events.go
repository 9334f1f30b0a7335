// Package agent wraps the agent execution engine and normalizes its
// lifecycle callbacks into a single event stream.
package agent

import (
	"context"

	"github.com/deepagent-ai/agent-platform/internal/model"
)

// Kind classifies an agent lifecycle event.
type Kind string

const (
	KindModelStart Kind = "model_start"
	KindModelToken Kind = "model_token"
	KindToolStart  Kind = "tool_start"
	KindToolEnd    Kind = "tool_end"
	KindChainStart Kind = "chain_start"
	KindChainEnd   Kind = "chain_end"
	KindError      Kind = "error"
)

// TextBlock is one typed content block from a provider that streams
// structured output.
type TextBlock struct {
	Type string
	Text string
}

// Chunk is the normalized model output chunk. Providers shape streamed
// content differently (flat string vs. list of typed blocks); exactly one
// of the two representations is populated.
type Chunk struct {
	plain    string
	blocks   []TextBlock
	isBlocks bool
}

// PlainChunk wraps a flat string chunk.
func PlainChunk(text string) Chunk {
	return Chunk{plain: text}
}

// BlockChunk wraps a list of typed content blocks.
func BlockChunk(blocks []TextBlock) Chunk {
	return Chunk{blocks: blocks, isBlocks: true}
}

// Plain returns the flat string content and whether this chunk carries one.
func (c Chunk) Plain() (string, bool) {
	return c.plain, !c.isBlocks
}

// Blocks returns the typed blocks and whether this chunk carries them.
func (c Chunk) Blocks() ([]TextBlock, bool) {
	return c.blocks, c.isBlocks
}

// Event is one normalized agent lifecycle event.
type Event struct {
	Kind  Kind
	Name  string // model, tool, or chain name depending on Kind
	Input string // raw tool input for KindToolStart
	Chunk *Chunk // model output for KindModelToken
	Err   error  // failure for KindError
}

// RunRequest describes one agent invocation.
type RunRequest struct {
	ConversationID string
	ModelID        string
	Messages       []model.Message
	WebSearch      bool
}

// Runner executes one agent run and delivers events until the returned
// channel is closed. A KindError event, when present, is the last
// meaningful event of the run.
type Runner interface {
	Run(ctx context.Context, req RunRequest) <-chan Event
}
