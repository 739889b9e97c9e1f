package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lvpi/lpsearch/internal/domain"
	assistantuc "github.com/lvpi/lpsearch/internal/usecase/assistant"
)

// AssistantCompletions handles POST /assistant/completions.
// Deltas are relayed as server-sent events shaped like OpenAI stream chunks.
func (s *Server) AssistantCompletions(w http.ResponseWriter, r *http.Request) {
	var body ChatRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	req := assistantuc.Request{
		Model: body.Model,
		Messages: lo.Map(body.Messages, func(m ChatMessageRequest, _ int) domain.ChatMessage {
			return domain.ChatMessage{Role: domain.ChatRole(m.Role), Content: m.Content}
		}),
		Temperature: body.Temperature,
	}

	sse := newSSEWriter(w)
	err := s.assistant.Stream(r.Context(), req, sse.Data)
	switch {
	case err == nil:
		sse.Done()
	case !sse.Started():
		s.handleDomainError(w, err)
	default:
		s.logger.Warn("assistant stream interrupted", zap.Error(err))
		sse.Error(ErrorCodeAssistantProviderError, safeDomainMessage(err))
	}
}

// AssistantModels handles GET /assistant/models.
func (s *Server) AssistantModels(w http.ResponseWriter, _ *http.Request) {
	models := s.assistant.Models()
	items := make([]ModelResponse, len(models))
	for i, m := range models {
		label := m.Label
		if label == "" {
			label = m.Name
		}
		items[i] = ModelResponse{Name: m.Name, Label: label}
	}
	writeJSON(w, http.StatusOK, ModelListResponse{
		Default: s.assistant.DefaultModel(),
		Items:   items,
	})
}

// sseWriter writes server-sent events. Headers go out with the first event so
// that errors raised before any output can still be answered with JSON.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func newSSEWriter(w http.ResponseWriter) *sseWriter {
	f, _ := w.(http.Flusher)
	return &sseWriter{w: w, flusher: f}
}

// Started reports whether any event has been written.
func (s *sseWriter) Started() bool { return s.started }

// Data writes one content delta.
func (s *sseWriter) Data(delta string) error {
	payload, err := json.Marshal(ChatChunk{
		Choices: []ChatChunkChoice{{Delta: ChatDelta{Content: delta}}},
	})
	if err != nil {
		return fmt.Errorf("marshal chunk: %w", err)
	}
	return s.write("data: " + string(payload) + "\n\n")
}

// Done terminates the stream.
func (s *sseWriter) Done() {
	_ = s.write("data: [DONE]\n\n")
}

// Error reports a failure after the stream has started.
func (s *sseWriter) Error(code ErrorCode, message string) {
	payload, _ := json.Marshal(ErrorResponse{Code: code, Message: message})
	_ = s.write("event: error\ndata: " + string(payload) + "\n\n")
}

func (s *sseWriter) write(frame string) error {
	if !s.started {
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}
	if _, err := s.w.Write([]byte(frame)); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}
