// internal/common/alerting/notifier.go
package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/aws"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/config"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
)

// Alert summarises one overfishing verdict for operators.
type Alert struct {
	ID              string
	Date            string
	StockVolume     float64
	CatchVolume     float64
	Threshold       float64
	CatchPercentage float64
	RaisedAt        time.Time
}

func NewAlert(date string, stock, catch, threshold, pct float64) Alert {
	return Alert{
		ID:              uuid.New().String(),
		Date:            date,
		StockVolume:     stock,
		CatchVolume:     catch,
		Threshold:       threshold,
		CatchPercentage: pct,
		RaisedAt:        time.Now().UTC(),
	}
}

func (a Alert) Subject() string {
	return fmt.Sprintf("Overfishing detected (%s)", a.Date)
}

func (a Alert) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Alert %s raised at %s\n", a.ID, a.RaisedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Date: %s\n", a.Date)
	fmt.Fprintf(&b, "Stock volume: %.2f\n", a.StockVolume)
	fmt.Fprintf(&b, "Catch volume: %.2f\n", a.CatchVolume)
	fmt.Fprintf(&b, "Sustainable threshold: %.2f\n", a.Threshold)
	fmt.Fprintf(&b, "Catch percentage: %.2f%% (limit 20%%)\n", a.CatchPercentage)
	return b.String()
}

// Notifier delivers an alert over one channel.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

type SNSNotifier struct {
	client *aws.SNSClient
}

func NewSNSNotifier(client *aws.SNSClient) *SNSNotifier {
	return &SNSNotifier{client: client}
}

func (n *SNSNotifier) Notify(ctx context.Context, alert Alert) error {
	_, err := n.client.PublishToTopic(ctx, alert.Subject(), alert.Body(), map[string]string{
		"alert_id": alert.ID,
		"date":     alert.Date,
	})
	if err != nil {
		return errors.NewAlertPublishFailedError("sns", err)
	}
	return nil
}

type SESNotifier struct {
	client *aws.SESClient
	to     []string
}

func NewSESNotifier(client *aws.SESClient, to []string) *SESNotifier {
	return &SESNotifier{client: client, to: to}
}

func (n *SESNotifier) Notify(ctx context.Context, alert Alert) error {
	if len(n.to) == 0 {
		return nil
	}
	if _, err := n.client.SendText(ctx, n.to, alert.Subject(), alert.Body()); err != nil {
		return errors.NewAlertPublishFailedError("ses", err)
	}
	return nil
}

// Multi fans an alert out to every notifier. A failing channel is logged and
// does not stop the others.
type Multi struct {
	notifiers []Notifier
	logger    logger.Logger
}

func NewMulti(log logger.Logger, notifiers ...Notifier) *Multi {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Multi{notifiers: notifiers, logger: logger.Named(log, "alerting")}
}

func (m *Multi) Notify(ctx context.Context, alert Alert) error {
	var firstErr error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, alert); err != nil {
			m.logger.Warn("alert delivery failed", map[string]interface{}{
				"alertId": alert.ID,
				"date":    alert.Date,
				"error":   err,
			})
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *Multi) Len() int {
	return len(m.notifiers)
}

type Noop struct{}

func (Noop) Notify(context.Context, Alert) error { return nil }

// New builds the notifiers enabled in cfg. Disabled alerting yields Noop.
func New(ctx context.Context, cfg config.AlertsConfig, log logger.Logger) (Notifier, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}

	var notifiers []Notifier
	if cfg.SNS.TopicARN != "" {
		client, err := aws.NewSNSClient(ctx, cfg.Region, cfg.SNS.TopicARN)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, NewSNSNotifier(client))
	}
	if cfg.SES.FromEmail != "" && len(cfg.SES.ToEmails) > 0 {
		client, err := aws.NewSESClient(ctx, cfg.Region, cfg.SES.FromEmail)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, NewSESNotifier(client, cfg.SES.ToEmails))
	}

	if len(notifiers) == 0 {
		return Noop{}, nil
	}
	return NewMulti(log, notifiers...), nil
}
