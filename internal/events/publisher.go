// Package events publishes seed-run summaries for downstream audit
// consumers. Publishing is optional: jobs run fine without a NATS connection.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"seeding-service/internal/batch"
)

// SeedRunCompletedEvent is published after a reconciliation job finishes.
type SeedRunCompletedEvent struct {
	EventType string         `json:"event_type"`
	JobName   string         `json:"job_name"`
	Mode      string         `json:"mode,omitempty"`
	Status    string         `json:"status"`
	Summary   *batch.Summary `json:"summary"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher publishes seeding events over NATS.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS using NATS_URL. Callers should treat a
// connection failure as non-fatal and run without a publisher.
func NewPublisher(jobName string, logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		return nil, fmt.Errorf("NATS_URL not set")
	}

	conn, err := nats.Connect(natsURL,
		nats.Name(fmt.Sprintf("seeding-service-%s", jobName)),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "events.publisher"),
	}, nil
}

// PublishRunCompleted publishes the finished run's summary on
// "seeding.run.completed.<job>".
func (p *Publisher) PublishRunCompleted(jobName, mode, status string, summary *batch.Summary) error {
	event := SeedRunCompletedEvent{
		EventType: "seeding.run.completed",
		JobName:   jobName,
		Mode:      mode,
		Status:    status,
		Summary:   summary,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	subject := fmt.Sprintf("seeding.run.completed.%s", jobName)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish run event: %w", err)
	}
	p.logger.WithField("subject", subject).Debug("Published run completed event")
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			p.logger.WithError(err).Warn("Failed to drain NATS connection")
		}
	}
}
