package health

import "context"

// Pinger checks a backend's availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AssistantChecker checks that the chat assistant's LLM providers answer.
type AssistantChecker interface {
	HealthCheck(ctx context.Context) error
}
