// internal/workers/overfishing/analyze-overfishing-batch/service.go
package analyzeoverfishingbatch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
)

// ReadingAnalyzer is satisfied by the single-reading overfishing analyzer.
type ReadingAnalyzer interface {
	Analyze(ctx context.Context, r models.TelemetryReading) models.OverfishingVerdict
}

type BatchAnalyzer struct {
	analyzer    ReadingAnalyzer
	concurrency int
	logger      logger.Logger
}

func NewBatchAnalyzer(analyzer ReadingAnalyzer, concurrency int, log logger.Logger) *BatchAnalyzer {
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &BatchAnalyzer{
		analyzer:    analyzer,
		concurrency: concurrency,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// AnalyzeBatch analyzes every reading, at most concurrency at a time, and
// returns verdicts in input order.
func (b *BatchAnalyzer) AnalyzeBatch(ctx context.Context, readings []models.TelemetryReading) models.BatchSummary {
	results := make([]models.OverfishingVerdict, len(readings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, r := range readings {
		g.Go(func() error {
			results[i] = b.analyzer.Analyze(gctx, r)
			return nil
		})
	}
	// Analyze never fails, so Wait only joins.
	_ = g.Wait()

	summary := Summarize(results)
	b.logger.Info("batch analyzed", map[string]interface{}{
		"total":            summary.Total,
		"overfishingCount": summary.OverfishingCount,
		"overfishingRatio": summary.OverfishingRatio,
	})
	return summary
}

// Summarize counts verdicts. An empty batch has a zero ratio.
func Summarize(results []models.OverfishingVerdict) models.BatchSummary {
	if results == nil {
		results = []models.OverfishingVerdict{}
	}

	s := models.BatchSummary{Total: len(results), Results: results}
	for _, v := range results {
		if v.IsOverfishing {
			s.OverfishingCount++
		} else {
			s.HealthyCount++
		}
	}
	if s.Total > 0 {
		s.OverfishingRatio = models.Round2(float64(s.OverfishingCount) / float64(s.Total))
	}
	return s
}
