package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/tools"
	"go.uber.org/zap"

	"github.com/deepagent-ai/agent-platform/internal/model"
	"github.com/deepagent-ai/agent-platform/internal/store"
	"github.com/deepagent-ai/agent-platform/pkg/logger"
)

const systemPrompt = `You are a helpful AI assistant with access to various tools.

You can:
1. Search the web for current information using the internet_search tool
2. Save artifacts (markdown files, code, notes) to disk using save_artifact
3. List and read previously saved artifacts

When the user asks you to create or save something, use the save_artifact tool.
When searching for information, use the internet_search tool.

Be helpful, accurate, and thorough in your responses.`

// Config holds engine construction settings.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	TavilyAPIKey    string
	MaxSteps        int
}

// Engine runs deep-agent invocations through langchaingo. One Run call
// corresponds to one chat request; runs are fully independent.
type Engine struct {
	cfg       Config
	artifacts *store.ArtifactStore
	logger    *logger.Logger
}

// NewEngine creates an engine backed by the given artifact store.
func NewEngine(cfg Config, artifacts *store.ArtifactStore, log *logger.Logger) *Engine {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 15
	}
	return &Engine{cfg: cfg, artifacts: artifacts, logger: log}
}

// Run starts one agent run and returns its event channel. The channel is
// closed when the run finishes; a KindError event precedes the close on
// failure.
func (e *Engine) Run(ctx context.Context, req RunRequest) <-chan Event {
	events := make(chan Event, 64)

	go func() {
		defer close(events)

		llm, err := e.buildModel(req.ModelID)
		if err != nil {
			events <- Event{Kind: KindError, Err: err}
			return
		}

		handler := newChannelHandler(ctx, events, req.ModelID)

		// The handler rides in four places because each seam reports a
		// different slice of the run: the wrapped model carries generation
		// start/end, the agent carries streamed tokens, the executor
		// carries actions and chain boundaries, and the wrapped tools
		// carry their own completions.
		observed := observeTools(e.buildTools(req.WebSearch), handler)
		executor := agents.NewExecutor(
			agents.NewOneShotAgent(
				observedModel{Model: llm, handler: handler},
				observed,
				agents.WithCallbacksHandler(handler),
			),
			observed,
			agents.WithMaxIterations(e.cfg.MaxSteps),
			agents.WithCallbacksHandler(handler),
		)

		input := buildInput(req.Messages)

		answer, err := chains.Run(ctx, executor, input)
		if err != nil {
			e.logger.Error("agent run failed",
				zap.String("conversation_id", req.ConversationID),
				zap.String("model", req.ModelID),
				zap.Error(err),
			)
			handler.send(Event{Kind: KindError, Err: err})
			return
		}

		handler.finish(answer)
	}()

	return events
}

// buildModel selects the provider client by model ID.
func (e *Engine) buildModel(modelID string) (llms.Model, error) {
	if strings.HasPrefix(modelID, "claude") {
		if e.cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not configured")
		}
		return anthropic.New(
			anthropic.WithToken(e.cfg.AnthropicAPIKey),
			anthropic.WithModel(modelID),
		)
	}

	if e.cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not configured")
	}
	return openai.New(
		openai.WithToken(e.cfg.OpenAIAPIKey),
		openai.WithModel(modelID),
	)
}

func (e *Engine) buildTools(webSearch bool) []tools.Tool {
	set := []tools.Tool{
		saveArtifactTool{artifacts: e.artifacts},
		readArtifactTool{artifacts: e.artifacts},
		listArtifactsTool{artifacts: e.artifacts},
	}
	if webSearch && e.cfg.TavilyAPIKey != "" {
		set = append(set, newWebSearchTool(e.cfg.TavilyAPIKey))
	}
	return set
}

// buildInput flattens the conversation history into a single prompt. The
// latest user message goes last, preceded by prior turns for context.
func buildInput(messages []model.Message) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleUser:
			b.WriteString("User: ")
		case model.RoleAssistant:
			b.WriteString("Assistant: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}

	return strings.TrimSuffix(b.String(), "\n\n")
}
