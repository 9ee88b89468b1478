package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Decision event subjects.
const (
	SubjectRiskApproved       = "risk.approved"
	SubjectRiskRejected       = "risk.rejected"
	SubjectRiskDeleteRequest  = "risk.delete_requested"
	SubjectRiskDeleted        = "risk.deleted"
	SubjectRiskNumberAssigned = "risk.number_assigned"

	SubjectLossEventApproved      = "lossevent.approved"
	SubjectLossEventRejected      = "lossevent.rejected"
	SubjectLossEventDeleteRequest = "lossevent.delete_requested"
	SubjectLossEventDeleted       = "lossevent.deleted"
)

// DecisionEvent is the payload published after a committed workflow decision.
type DecisionEvent struct {
	EntityType   string    `json:"entityType"`
	EntityID     string    `json:"entityId"`
	Decision     string    `json:"decision"`
	StatusBefore int       `json:"statusBefore"`
	StatusAfter  int       `json:"statusAfter"`
	ActorUserID  int64     `json:"actorUserId"`
	ActorName    string    `json:"actorName,omitempty"`
	RiskNumber   string    `json:"riskNumber,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// Publisher publishes workflow decision events to NATS. The service operates
// fine without one; a nil *Publisher drops every publish.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS and returns a publisher.
func NewPublisher(url string, logger *logrus.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logrus.New()
	}

	conn, err := nats.Connect(url,
		nats.Name("risk-register-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "decision-events"),
	}, nil
}

// PublishDecision publishes one decision event. Failures are logged, never
// surfaced: decisions are already committed by the time this runs.
func (p *Publisher) PublishDecision(subject string, event DecisionEvent) {
	if p == nil || p.conn == nil {
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Warn("Failed to marshal decision event")
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish decision event")
	}
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.WithError(err).Warn("Failed to drain NATS connection")
	}
}
