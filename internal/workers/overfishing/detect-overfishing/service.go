// internal/workers/overfishing/detect-overfishing/service.go
package detectoverfishing

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/alerting"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/metrics"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/retrieval"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
)

// Augmenter produces policy guidance from the overfishing corpus.
type Augmenter interface {
	Augment(ctx context.Context, retrievalQuery string, corpus retrieval.Corpus, userQuery string) (string, error)
}

// Evaluate computes the deterministic part of a verdict. It never fails.
func Evaluate(r models.TelemetryReading) models.OverfishingVerdict {
	threshold := r.StockVolume * models.OverfishingThresholdRatio

	pct := 0.0
	if r.StockVolume > 0 {
		pct = models.Round2(r.CatchVolume / r.StockVolume * 100)
	}

	isOverfishing := r.CatchVolume > threshold
	v := models.OverfishingVerdict{
		Date:            r.Date,
		StockVolume:     r.StockVolume,
		CatchVolume:     r.CatchVolume,
		Threshold:       models.Round2(threshold),
		CatchPercentage: pct,
		IsOverfishing:   isOverfishing,
		Status:          models.StatusHealthy,
	}
	if isOverfishing {
		v.Status = models.StatusOverfishing
	} else {
		v.Message = models.HealthyMessage
	}
	return v
}

// ExcessMargin is how far the catch exceeds the sustainable threshold.
func ExcessMargin(r models.TelemetryReading) float64 {
	return r.CatchVolume - r.StockVolume*models.OverfishingThresholdRatio
}

func ScenarioPrompt(r models.TelemetryReading, v models.OverfishingVerdict) string {
	pct := formatNumber(v.CatchPercentage)
	return fmt.Sprintf(`ANALYSIS SCENARIO:
On date %s, a fishery recorded a Stock Volume of %s and a Catch Volume of %s.
The Catch Volume was %s%% of the total stock, which exceeds the sustainable threshold of 20%%.
The excess catch occurred by a margin of %s units.

QUESTION:
Based on FAO regulations and legal codes of conduct:
1. What is the severity of a %s%% catch rate (limit is 20%%)?
2. What are the specific legal consequences or penalties for this level of overfishing?
3. What immediate sustainability corrective actions must be taken for this specific stock level?`,
		r.Date,
		formatNumber(r.StockVolume),
		formatNumber(r.CatchVolume),
		pct,
		formatNumber(models.Round2(ExcessMargin(r))),
		pct,
	)
}

func Recommendations(r models.TelemetryReading) []string {
	excess := ExcessMargin(r)
	reduceBy := int64(math.Ceil(excess - 1e-9))
	if reduceBy < 1 && excess > 0 {
		reduceBy = 1
	}
	return []string{
		fmt.Sprintf("Reduce catch volume by at least %d units immediately", reduceBy),
		"Review FAO sustainable fishing guidelines for current stock levels",
		"Implement catch monitoring systems",
		"Consider alternative species",
	}
}

func FallbackRecommendations() []string {
	return []string{
		"Reduce catch volume immediately",
		"Consult local fisheries management authority",
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type Dependencies struct {
	Augmenter Augmenter
	Notifier  alerting.Notifier
	Logger    logger.Logger
}

// Analyzer turns a reading into a verdict, attaching policy guidance to
// violations. External failures degrade the narrative only.
type Analyzer struct {
	augmenter Augmenter
	notifier  alerting.Notifier
	logger    logger.Logger
}

func NewAnalyzer(deps Dependencies) *Analyzer {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = alerting.Noop{}
	}
	return &Analyzer{
		augmenter: deps.Augmenter,
		notifier:  notifier,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (a *Analyzer) Analyze(ctx context.Context, r models.TelemetryReading) models.OverfishingVerdict {
	v := Evaluate(r)
	metrics.Verdicts.WithLabelValues(v.Status).Inc()

	if !v.IsOverfishing {
		return v
	}

	a.logger.Warn("overfishing detected", map[string]interface{}{
		"date":            r.Date,
		"catchVolume":     r.CatchVolume,
		"threshold":       v.Threshold,
		"catchPercentage": v.CatchPercentage,
	})
	a.alert(ctx, v)

	narrative, err := a.augmenter.Augment(ctx, PolicyQuery, retrieval.CorpusOverfishing, ScenarioPrompt(r, v))
	if err != nil {
		a.logger.Warn("policy insight unavailable, using fallback recommendations", map[string]interface{}{
			"date":  r.Date,
			"error": err,
		})
		v.Narrative = policyErrorPrefix + err.Error()
		v.Recommendations = FallbackRecommendations()
		return v
	}

	v.Narrative = narrative
	v.Recommendations = Recommendations(r)
	return v
}

func (a *Analyzer) alert(ctx context.Context, v models.OverfishingVerdict) {
	alert := alerting.NewAlert(v.Date, v.StockVolume, v.CatchVolume, v.Threshold, v.CatchPercentage)
	if err := a.notifier.Notify(ctx, alert); err != nil {
		a.logger.Error("overfishing alert not delivered", map[string]interface{}{
			"alertId": alert.ID,
			"error":   err,
		})
	}
}
