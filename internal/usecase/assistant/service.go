package assistant

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lvpi/lpsearch/internal/domain"
	"github.com/lvpi/lpsearch/internal/logger"
	"github.com/lvpi/lpsearch/internal/metrics"
)

// Request defaults and limits.
const (
	DefaultModel       = "deepseek-chat"
	DefaultTemperature = float32(0.7)
	MaxTemperature     = float32(2)
	MaxMessages        = 64
)

// Model maps a public model name to the provider serving it.
type Model struct {
	Name     string
	Provider string
	Label    string
}

// Config shapes every completion request.
type Config struct {
	Models       []Model
	DefaultModel string
	SystemPrompt string
	MaxTokens    int
}

// Request is a chat completion request as received from clients.
type Request struct {
	Model       string
	Messages    []domain.ChatMessage
	Temperature *float32
}

// Service validates chat requests and relays streamed completions.
type Service struct {
	providers map[string]Provider
	models    map[string]Model
	order     []Model
	cfg       Config
}

// New creates an assistant service. Models whose provider is missing are skipped.
func New(cfg Config, providers map[string]Provider) *Service {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
	s := &Service{providers: providers, models: make(map[string]Model), cfg: cfg}
	for _, m := range cfg.Models {
		if _, ok := providers[m.Provider]; !ok {
			continue
		}
		s.models[m.Name] = m
		s.order = append(s.order, m)
	}
	return s
}

// Enabled reports whether at least one model is servable.
func (s *Service) Enabled() bool { return len(s.models) > 0 }

// DefaultModel returns the model used when a request names none.
func (s *Service) DefaultModel() string { return s.cfg.DefaultModel }

// Models returns the servable models in configuration order.
func (s *Service) Models() []Model {
	out := make([]Model, len(s.order))
	copy(out, s.order)
	return out
}

// HealthCheck verifies every provider that serves a model, in name order.
// Providers without a health endpoint are assumed up.
func (s *Service) HealthCheck(ctx context.Context) error {
	if !s.Enabled() {
		return domain.ErrAssistantDisabled
	}
	names := lo.Uniq(lo.Map(s.order, func(m Model, _ int) string { return m.Provider }))
	slices.Sort(names)
	for _, name := range names {
		hc, ok := s.providers[name].(HealthChecker)
		if !ok {
			continue
		}
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("provider %s: %w: %w", name, domain.ErrAssistantProvider, err)
		}
	}
	return nil
}

// Stream validates req and calls emit for every streamed delta until the provider closes the stream.
func (s *Service) Stream(ctx context.Context, req Request, emit func(delta string) error) error {
	if !s.Enabled() {
		return domain.ErrAssistantDisabled
	}

	completion, model, err := s.prepare(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	chunks := metrics.AssistantStreamChunksTotal.WithLabelValues(model.Name)
	err = s.providers[model.Provider].Stream(ctx, completion, func(delta string) error {
		chunks.Inc()
		return emit(delta)
	})
	if err != nil {
		status := "error"
		if errors.Is(err, context.Canceled) {
			status = "canceled"
		}
		metrics.AssistantRequestsTotal.WithLabelValues(model.Name, status).Inc()
		logger.FromContext(ctx).Warn("Assistant stream failed",
			zap.String("model", model.Name),
			zap.String("provider", model.Provider),
			zap.Error(err),
		)
		return fmt.Errorf("stream completion: %w", err)
	}
	metrics.AssistantRequestsTotal.WithLabelValues(model.Name, "success").Inc()
	return nil
}

func (s *Service) prepare(req Request) (domain.ChatCompletion, Model, error) {
	name := req.Model
	if name == "" {
		name = s.cfg.DefaultModel
	}
	model, ok := s.models[name]
	if !ok {
		return domain.ChatCompletion{}, Model{}, fmt.Errorf("unknown model %q", name)
	}

	if len(req.Messages) == 0 {
		return domain.ChatCompletion{}, Model{}, errors.New("messages are required")
	}
	if len(req.Messages) > MaxMessages {
		return domain.ChatCompletion{}, Model{}, fmt.Errorf("too many messages (max %d)", MaxMessages)
	}
	for i, m := range req.Messages {
		if !m.Role.IsValid() {
			return domain.ChatCompletion{}, Model{}, fmt.Errorf("message %d: unknown role %q", i+1, m.Role)
		}
	}

	temperature := DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if temperature < 0 || temperature > MaxTemperature {
		return domain.ChatCompletion{}, Model{}, fmt.Errorf("temperature must be between 0 and %g", MaxTemperature)
	}

	messages := make([]domain.ChatMessage, 0, len(req.Messages)+1)
	if s.cfg.SystemPrompt != "" && req.Messages[0].Role != domain.RoleSystem {
		messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: s.cfg.SystemPrompt})
	}
	messages = append(messages, req.Messages...)

	return domain.ChatCompletion{
		Model:       model.Name,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   s.cfg.MaxTokens,
	}, model, nil
}
