package model

// EnvelopeType identifies one kind of SSE push message.
type EnvelopeType string

const (
	EnvelopeProgress   EnvelopeType = "progress"
	EnvelopeContent    EnvelopeType = "content"
	EnvelopeToolStart  EnvelopeType = "tool_start"
	EnvelopeToolEnd    EnvelopeType = "tool_end"
	EnvelopeChainStart EnvelopeType = "chain_start"
	EnvelopeChainEnd   EnvelopeType = "chain_end"
	EnvelopeDone       EnvelopeType = "done"
	EnvelopeError      EnvelopeType = "error"
)

// Envelope is one server-to-client push message in the streaming chat
// protocol. Exactly one done or error envelope terminates a stream.
type Envelope struct {
	Type EnvelopeType `json:"type"`

	// progress
	Step        int    `json:"step,omitempty"`
	Description string `json:"description,omitempty"`

	// content
	Content string `json:"content,omitempty"`

	// tool_start / tool_end
	Tool string `json:"tool,omitempty"`

	// chain_start / chain_end
	Chain string `json:"chain,omitempty"`

	// done
	ConversationID string `json:"conversation_id,omitempty"`
	Steps          int    `json:"steps,omitempty"`

	// error
	Error string `json:"error,omitempty"`
}

// Terminal reports whether this envelope ends the stream.
func (e Envelope) Terminal() bool {
	return e.Type == EnvelopeDone || e.Type == EnvelopeError
}

// ProgressEnvelope builds a progress envelope.
func ProgressEnvelope(step int, description string) Envelope {
	return Envelope{Type: EnvelopeProgress, Step: step, Description: description}
}

// ContentEnvelope builds a content envelope carrying one response chunk.
func ContentEnvelope(chunk string) Envelope {
	return Envelope{Type: EnvelopeContent, Content: chunk}
}

// ToolStartEnvelope builds a tool_start envelope.
func ToolStartEnvelope(tool, description string) Envelope {
	return Envelope{Type: EnvelopeToolStart, Tool: tool, Description: description}
}

// ToolEndEnvelope builds a tool_end envelope.
func ToolEndEnvelope(tool string) Envelope {
	return Envelope{Type: EnvelopeToolEnd, Tool: tool}
}

// ChainStartEnvelope builds a chain_start envelope.
func ChainStartEnvelope(name string) Envelope {
	return Envelope{Type: EnvelopeChainStart, Chain: name}
}

// ChainEndEnvelope builds a chain_end envelope.
func ChainEndEnvelope(name string) Envelope {
	return Envelope{Type: EnvelopeChainEnd, Chain: name}
}

// DoneEnvelope builds the terminal done envelope.
func DoneEnvelope(conversationID string, steps int) Envelope {
	return Envelope{Type: EnvelopeDone, ConversationID: conversationID, Steps: steps}
}

// ErrorEnvelope builds the terminal error envelope.
func ErrorEnvelope(message string) Envelope {
	return Envelope{Type: EnvelopeError, Error: message}
}
