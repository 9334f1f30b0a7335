package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deepagent-ai/agent-platform/internal/store"
)

// Tool names exposed to the agent. The translator keys descriptions off
// these, so they are exported constants rather than literals.
const (
	ToolWebSearch     = "internet_search"
	ToolSaveArtifact  = "save_artifact"
	ToolReadArtifact  = "read_artifact"
	ToolListArtifacts = "list_artifacts"
)

// saveArtifactTool persists a named work product through the artifact store.
type saveArtifactTool struct {
	artifacts *store.ArtifactStore
}

func (t saveArtifactTool) Name() string {
	return ToolSaveArtifact
}

func (t saveArtifactTool) Description() string {
	return `Save an artifact file (markdown, code, notes) to disk. ` +
		`Input is a JSON object: {"filename": "<name>", "content": "<file content>"}.`
}

func (t saveArtifactTool) Call(_ context.Context, input string) (string, error) {
	var req struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal([]byte(input), &req); err != nil || req.Filename == "" {
		return "Invalid input: expected {\"filename\": ..., \"content\": ...}", nil
	}

	if err := t.artifacts.Save(req.Filename, req.Content); err != nil {
		return fmt.Sprintf("Save error: %v", err), nil
	}
	return fmt.Sprintf("Artifact saved to %s", req.Filename), nil
}

// readArtifactTool returns a previously saved artifact.
type readArtifactTool struct {
	artifacts *store.ArtifactStore
}

func (t readArtifactTool) Name() string {
	return ToolReadArtifact
}

func (t readArtifactTool) Description() string {
	return "Read a previously saved artifact file from disk. Input is the filename."
}

func (t readArtifactTool) Call(_ context.Context, input string) (string, error) {
	name := ParseFilename(input)

	content, err := t.artifacts.Read(name)
	if err != nil {
		return fmt.Sprintf("Artifact %s not found.", name), nil
	}
	return content, nil
}

// listArtifactsTool lists all saved artifacts.
type listArtifactsTool struct {
	artifacts *store.ArtifactStore
}

func (t listArtifactsTool) Name() string {
	return ToolListArtifacts
}

func (t listArtifactsTool) Description() string {
	return "List all saved artifacts. Input is ignored."
}

func (t listArtifactsTool) Call(_ context.Context, _ string) (string, error) {
	infos, err := t.artifacts.List()
	if err != nil {
		return fmt.Sprintf("List error: %v", err), nil
	}
	if len(infos) == 0 {
		return "No artifacts found.", nil
	}

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return strings.Join(names, "\n"), nil
}

// ParseFilename extracts a filename from raw tool input, which may be the
// bare name or a JSON object with a "filename" field.
func ParseFilename(input string) string {
	input = strings.TrimSpace(input)

	var req struct {
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal([]byte(input), &req); err == nil && req.Filename != "" {
		return req.Filename
	}

	return strings.Trim(input, `"'`)
}

// ParseQuery extracts a search query from raw tool input, which may be the
// bare query or a JSON object with a "query" field.
func ParseQuery(input string) string {
	input = strings.TrimSpace(input)

	var req struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(input), &req); err == nil && req.Query != "" {
		return req.Query
	}

	return strings.Trim(input, `"'`)
}
