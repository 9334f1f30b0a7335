// Package service provides business logic for the agent platform.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deepagent-ai/agent-platform/internal/agent"
	"github.com/deepagent-ai/agent-platform/internal/model"
	"github.com/deepagent-ai/agent-platform/internal/store"
	"github.com/deepagent-ai/agent-platform/pkg/logger"
	"github.com/deepagent-ai/agent-platform/pkg/metrics"
)

// Sink delivers one envelope to the client. Returning an error aborts the
// stream; the transport is gone and nothing further is emitted.
type Sink func(model.Envelope) error

// chainNoise lists chain names that are engine infrastructure rather than
// user-meaningful steps; their chain events are dropped.
var chainNoise = map[string]struct{}{
	"agent":                 {},
	agent.ExecutorChainName: {},
	"llm_chain":             {},
	"chat_model":            {},
	"runnable_sequence":     {},
}

// ChatService translates agent runs into the client-facing SSE protocol.
type ChatService struct {
	runner        agent.Runner
	conversations *store.ConversationStore
	logger        *logger.Logger
}

// NewChatService creates a new chat service.
func NewChatService(runner agent.Runner, conversations *store.ConversationStore, log *logger.Logger) *ChatService {
	return &ChatService{
		runner:        runner,
		conversations: conversations,
		logger:        log,
	}
}

// Stream runs one chat request end to end: it appends the user message,
// invokes the agent engine exactly once, translates every raw event into an
// envelope in arrival order, accumulates the assistant reply, and finishes
// with exactly one done or error envelope. The conversation ID (generated
// when the request carries none) is returned for logging.
func (s *ChatService) Stream(ctx context.Context, req *model.ChatRequest, sink Sink) string {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	log := s.logger.WithConversation(conversationID)
	start := time.Now()

	s.conversations.AppendMessage(conversationID, req.ModelID, model.Message{
		Role:      model.RoleUser,
		Content:   req.Message,
		CreatedAt: time.Now(),
	})

	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		// The entry was just created; losing it here means it was evicted
		// between the append and the read.
		_ = sink(model.ErrorEnvelope(fmt.Sprintf("conversation unavailable: %v", err)))
		return conversationID
	}

	events := s.runner.Run(ctx, agent.RunRequest{
		ConversationID: conversationID,
		ModelID:        req.ModelID,
		Messages:       conv.Messages,
		WebSearch:      req.WebSearch(),
	})

	var full strings.Builder
	steps := 0

	for ev := range events {
		metrics.AgentEventsTotal.WithLabelValues(string(ev.Kind)).Inc()

		switch ev.Kind {
		case agent.KindModelStart:
			steps++
			if err := sink(model.ProgressEnvelope(steps,
				fmt.Sprintf("Step %d: Processing with %s", steps, ev.Name))); err != nil {
				return conversationID
			}

		case agent.KindModelToken:
			if ev.Chunk == nil {
				continue
			}
			if text, ok := ev.Chunk.Plain(); ok {
				if text == "" {
					continue
				}
				full.WriteString(text)
				if err := sink(model.ContentEnvelope(text)); err != nil {
					return conversationID
				}
				continue
			}
			blocks, _ := ev.Chunk.Blocks()
			for _, block := range blocks {
				if block.Text == "" {
					continue
				}
				full.WriteString(block.Text)
				if err := sink(model.ContentEnvelope(block.Text)); err != nil {
					return conversationID
				}
			}

		case agent.KindToolStart:
			metrics.ToolInvocationsTotal.WithLabelValues(ev.Name).Inc()
			if err := sink(model.ToolStartEnvelope(ev.Name, toolDescription(ev.Name, ev.Input))); err != nil {
				return conversationID
			}

		case agent.KindToolEnd:
			if err := sink(model.ToolEndEnvelope(ev.Name)); err != nil {
				return conversationID
			}

		case agent.KindChainStart:
			if isChainNoise(ev.Name) {
				continue
			}
			if err := sink(model.ChainStartEnvelope(ev.Name)); err != nil {
				return conversationID
			}

		case agent.KindChainEnd:
			if isChainNoise(ev.Name) {
				continue
			}
			if err := sink(model.ChainEndEnvelope(ev.Name)); err != nil {
				return conversationID
			}

		case agent.KindError:
			msg := "agent run failed"
			if ev.Err != nil {
				msg = ev.Err.Error()
			}
			log.Error("agent stream failed", zap.Error(ev.Err))
			metrics.RecordAgentStream(req.ModelID, "error", time.Since(start).Seconds())
			_ = sink(model.ErrorEnvelope(msg))
			return conversationID
		}
	}

	if ctx.Err() != nil {
		// Client went away mid-stream; the assistant reply is discarded.
		log.Info("chat stream cancelled", zap.Int("steps", steps))
		metrics.RecordAgentStream(req.ModelID, "cancelled", time.Since(start).Seconds())
		return conversationID
	}

	s.conversations.AppendMessage(conversationID, req.ModelID, model.Message{
		Role:      model.RoleAssistant,
		Content:   full.String(),
		CreatedAt: time.Now(),
	})

	metrics.RecordAgentStream(req.ModelID, "ok", time.Since(start).Seconds())
	log.Info("chat stream complete",
		zap.Int("steps", steps),
		zap.Int("response_bytes", full.Len()),
	)

	_ = sink(model.DoneEnvelope(conversationID, steps))
	return conversationID
}

// toolDescription builds the short human-readable label for a tool_start
// envelope.
func toolDescription(tool, input string) string {
	switch tool {
	case agent.ToolWebSearch:
		return truncate(agent.ParseQuery(input), 50)
	case agent.ToolSaveArtifact, agent.ToolReadArtifact:
		return agent.ParseFilename(input)
	case agent.ToolListArtifacts:
		return "Listing saved artifacts"
	default:
		return fmt.Sprintf("Using %s", tool)
	}
}

func isChainNoise(name string) bool {
	_, ok := chainNoise[strings.ToLower(name)]
	return ok
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
