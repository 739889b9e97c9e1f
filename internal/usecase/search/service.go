package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lvpi/lpsearch/internal/domain/search/query"
	"github.com/lvpi/lpsearch/internal/domain/search/request"
	"github.com/lvpi/lpsearch/internal/domain/search/result"
	"github.com/lvpi/lpsearch/internal/domain/search/spec"
	"github.com/lvpi/lpsearch/internal/logger"
	"github.com/lvpi/lpsearch/internal/metrics"
)

// Service translates search specs and runs them against the engine.
type Service struct {
	translator Translator
	preparer   Preparer
	executor   Executor
}

// New creates a search service.
func New(tr Translator, prep Preparer, exec Executor) *Service {
	return &Service{translator: tr, preparer: prep, executor: exec}
}

// Search translates the request's spec, builds the engine body and executes it.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	q := s.translate(req.Spec())

	ps, err := s.preparer.Prepare(q, *req)
	if err != nil {
		return result.Page{}, fmt.Errorf("prepare search: %w", err)
	}

	start := time.Now()
	page, err := s.executor.Execute(ctx, ps)
	duration := time.Since(start)

	if err != nil {
		metrics.SearchDuration.WithLabelValues("error").Observe(duration.Seconds())
		logger.FromContext(ctx).Warn("Search failed",
			zap.String("index", ps.Index),
			zap.String("kind", string(req.Spec().Kind())),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return result.Page{}, fmt.Errorf("execute search: %w", err)
	}
	metrics.SearchDuration.WithLabelValues("ok").Observe(duration.Seconds())

	logger.FromContext(ctx).Debug("Search completed",
		zap.String("index", ps.Index),
		zap.String("kind", string(req.Spec().Kind())),
		zap.Int64("total", page.Total()),
		zap.Int64("took_ms", page.Took()),
		zap.Duration("duration", duration),
	)
	return page, nil
}

// Preview returns the engine query a spec translates to, without executing it.
func (s *Service) Preview(sp spec.Spec) (json.RawMessage, error) {
	if sp == nil {
		sp = spec.MatchAll{}
	}
	data, err := query.Marshal(s.translate(sp))
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}
	return data, nil
}

func (s *Service) translate(sp spec.Spec) query.Query {
	metrics.TranslationsTotal.WithLabelValues(string(sp.Kind())).Inc()
	return s.translator.Translate(sp)
}
