package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepagent-ai/agent-platform/internal/agent"
	"github.com/deepagent-ai/agent-platform/internal/config"
	"github.com/deepagent-ai/agent-platform/internal/model"
	"github.com/deepagent-ai/agent-platform/internal/service"
	"github.com/deepagent-ai/agent-platform/internal/store"
	"github.com/deepagent-ai/agent-platform/pkg/logger"
)

// fakeRunner replays a canned agent event sequence.
type fakeRunner struct {
	events []agent.Event
}

func (f *fakeRunner) Run(_ context.Context, _ agent.RunRequest) <-chan agent.Event {
	ch := make(chan agent.Event, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch
}

type testEnv struct {
	router        chi.Router
	conversations *store.ConversationStore
	artifacts     *store.ArtifactStore
}

func newTestEnv(t *testing.T, runner agent.Runner) *testEnv {
	t.Helper()

	log := logger.NewNop()
	conversations := store.NewConversationStore(0)
	artifacts := store.NewArtifactStore(t.TempDir())

	chatSvc := service.NewChatService(runner, conversations, log)

	catalog := &config.ModelCatalog{
		Models: []config.ModelInfo{
			{ID: "gpt-4o", Name: "GPT-4o", Provider: "openai"},
		},
		DefaultModel: "gpt-4o",
	}

	r := chi.NewRouter()
	r.Get("/models", NewModelsHandler(catalog).List)
	r.Post("/chat", NewChatHandler(chatSvc, log).Chat)
	r.Post("/upload", NewUploadHandler(t.TempDir(), log).Upload)

	convHandler := NewConversationHandler(conversations, log)
	r.Get("/conversation/{id}", convHandler.Get)
	r.Delete("/conversation/{id}", convHandler.Delete)

	artifactHandler := NewArtifactHandler(artifacts, log)
	r.Get("/artifacts", artifactHandler.List)
	r.Get("/artifacts/{filename}", artifactHandler.Get)

	return &testEnv{router: r, conversations: conversations, artifacts: artifacts}
}

func TestGetModels(t *testing.T) {
	env := newTestEnv(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Models       []config.ModelInfo `json:"models"`
		DefaultModel string             `json:"default_model"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Models, 1)
	assert.Equal(t, "gpt-4o", resp.DefaultModel)
}

func TestChatStreamsEnvelopes(t *testing.T) {
	runner := &fakeRunner{events: []agent.Event{
		{Kind: agent.KindModelStart, Name: "gpt-4o"},
		{Kind: agent.KindModelToken, Chunk: plainChunk("Hello ")},
		{Kind: agent.KindModelToken, Chunk: plainChunk("world")},
	}}
	env := newTestEnv(t, runner)

	body, _ := json.Marshal(model.ChatRequest{Message: "hi", ModelID: "gpt-4o"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	envelopes := parseSSE(t, w.Body.String())
	require.NotEmpty(t, envelopes)

	assert.Equal(t, model.EnvelopeProgress, envelopes[0].Type)

	last := envelopes[len(envelopes)-1]
	require.Equal(t, model.EnvelopeDone, last.Type)
	require.NotEmpty(t, last.ConversationID)

	var concat strings.Builder
	for _, env := range envelopes {
		if env.Type == model.EnvelopeContent {
			concat.WriteString(env.Content)
		}
	}
	assert.Equal(t, "Hello world", concat.String())

	// The full round trip: the streamed text is now readable history.
	conv, err := env.conversations.Get(last.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, "Hello world", conv.Messages[1].Content)
}

func TestChatRejectsBadRequests(t *testing.T) {
	env := newTestEnv(t, &fakeRunner{})

	tests := []struct {
		name string
		body string
	}{
		{"empty message", `{"message": "", "model_id": "gpt-4o"}`},
		{"missing model", `{"message": "hi"}`},
		{"bad conversation id", `{"message": "hi", "model_id": "gpt-4o", "conversation_id": "nope"}`},
		{"invalid json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetConversation(t *testing.T) {
	env := newTestEnv(t, &fakeRunner{})

	id := uuid.New().String()
	env.conversations.AppendMessage(id, "gpt-4o", model.Message{Role: model.RoleUser, Content: "hi"})

	req := httptest.NewRequest(http.MethodGet, "/conversation/"+id, nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var conv model.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
	assert.Equal(t, id, conv.ID)
	require.Len(t, conv.Messages, 1)
}

func TestGetConversationNotFound(t *testing.T) {
	env := newTestEnv(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/conversation/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteConversationIdempotent(t *testing.T) {
	env := newTestEnv(t, &fakeRunner{})

	// Deleting an unknown conversation still acknowledges.
	req := httptest.NewRequest(http.MethodDelete, "/conversation/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deleted")
}

func TestUploadRejectsNonPDF(t *testing.T) {
	env := newTestEnv(t, &fakeRunner{})

	w := doUpload(t, env.router, "report.txt", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadAcceptsMixedCaseExtension(t *testing.T) {
	env := newTestEnv(t, &fakeRunner{})

	// The payload is not a real PDF; extraction degrades to placeholders
	// but the upload itself succeeds.
	w := doUpload(t, env.router, "report.PDF", []byte("not really a pdf"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.FileID)
	assert.Equal(t, "report.PDF", resp.Filename)
	assert.Contains(t, resp.TextContent, "Error extracting text")
	assert.Empty(t, resp.Images)
	assert.Zero(t, resp.PageCount)
}

func TestListArtifacts(t *testing.T) {
	env := newTestEnv(t, &fakeRunner{})
	require.NoError(t, env.artifacts.Save("notes.md", "# Notes"))

	req := httptest.NewRequest(http.MethodGet, "/artifacts", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Artifacts []store.ArtifactInfo `json:"artifacts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Artifacts, 1)
	assert.Equal(t, "notes.md", resp.Artifacts[0].Name)
}

func TestGetArtifact(t *testing.T) {
	env := newTestEnv(t, &fakeRunner{})
	require.NoError(t, env.artifacts.Save("notes.md", "# Notes"))

	req := httptest.NewRequest(http.MethodGet, "/artifacts/notes.md", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Notes")
}

func TestGetArtifactRendered(t *testing.T) {
	env := newTestEnv(t, &fakeRunner{})
	require.NoError(t, env.artifacts.Save("notes.md", "# Notes"))

	req := httptest.NewRequest(http.MethodGet, "/artifacts/notes.md?render=html", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<h1")
}

func TestGetArtifactNotFound(t *testing.T) {
	env := newTestEnv(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/artifacts/does_not_exist.md", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func plainChunk(text string) *agent.Chunk {
	c := agent.PlainChunk(text)
	return &c
}

func parseSSE(t *testing.T, body string) []model.Envelope {
	t.Helper()

	var envelopes []model.Envelope
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var env model.Envelope
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &env))
		envelopes = append(envelopes, env)
	}
	return envelopes
}

func doUpload(t *testing.T, router chi.Router, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
