// Package kafka publishes risk assessment events with segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"healthtracker/internal/domain"
)

// EventTypeRiskAssessed is the event-type header of assessment events.
const EventTypeRiskAssessed = "risk.assessed"

// messageWriter is the part of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher announces new risk assessments on a Kafka topic.
// A Publisher without brokers drops every event.
type Publisher struct {
	w     messageWriter
	topic string
}

var _ domain.AssessmentPublisher = (*Publisher)(nil)

// NewPublisher creates a Publisher writing to topic on brokers.
func NewPublisher(brokers []string, topic string) *Publisher {
	p := &Publisher{topic: topic}
	if len(brokers) == 0 {
		return p
	}
	p.w = &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireAll,
	}
	return p
}

// Enabled reports whether events are actually sent.
func (p *Publisher) Enabled() bool { return p.w != nil }

// assessedEvent is the JSON value of a risk.assessed message.
type assessedEvent struct {
	PatientID          int64            `json:"patientId"`
	RiskLevel          domain.RiskLevel `json:"riskLevel"`
	CalculatedScore    int              `json:"calculatedScore"`
	AssessmentDate     time.Time        `json:"assessmentDate"`
	NextAssessmentDate time.Time        `json:"nextAssessmentDate"`
}

// PublishAssessment writes one event keyed by patient id, so a patient's
// events stay on one partition in order.
func (p *Publisher) PublishAssessment(ctx context.Context, a domain.RiskAssessment) error {
	if p.w == nil {
		return nil
	}
	msg, err := newMessage(a)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	if p.w == nil {
		return nil
	}
	return p.w.Close()
}

func newMessage(a domain.RiskAssessment) (kafkago.Message, error) {
	value, err := json.Marshal(assessedEvent{
		PatientID:          a.PatientID,
		RiskLevel:          a.RiskLevel,
		CalculatedScore:    a.CalculatedScore,
		AssessmentDate:     a.AssessmentDate.UTC(),
		NextAssessmentDate: a.NextAssessmentDate.UTC(),
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("encode risk assessment event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(a.PatientID, 10)),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(EventTypeRiskAssessed)},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}, nil
}
