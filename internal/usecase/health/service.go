package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentElasticsearch = "elasticsearch"
	ComponentCache         = "cache"
	ComponentAssistant     = "assistant"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	engine    Pinger
	cache     Pinger
	assistant AssistantChecker
}

// New creates a Service. cache is nil when no store is configured,
// assistant is nil when no provider is.
func New(engine, cache Pinger, assistant AssistantChecker) *Service {
	return &Service{engine: engine, cache: cache, assistant: assistant}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		ComponentElasticsearch: ping(ctx, s.engine),
	}
	if s.cache != nil {
		checks[ComponentCache] = ping(ctx, s.cache)
	}
	if s.assistant != nil {
		checks[ComponentAssistant] = CheckOK
		if err := s.assistant.HealthCheck(ctx); err != nil {
			checks[ComponentAssistant] = CheckError
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func ping(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
