package utils

import (
	"IDMS/models"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const publishTimeout = 10 * time.Second

// Event types published on the alert topic.
const (
	EventHighSeverity      = "symptom_session.high_severity"
	EventDiagnosisDecision = "diagnosis.decision"
)

// messageWriter is satisfied by *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AlertEvent is the JSON payload written to Kafka.
type AlertEvent struct {
	Type        string          `json:"type"`
	SessionID   string          `json:"session_id,omitempty"`
	DiagnosisID uint            `json:"diagnosis_id,omitempty"`
	PatientID   string          `json:"patient_id,omitempty"`
	DiseaseID   *uint           `json:"disease_id,omitempty"`
	Severity    models.Severity `json:"severity,omitempty"`
	RiskScore   int             `json:"risk_score,omitempty"`
	Status      string          `json:"status,omitempty"`
	DoctorID    string          `json:"doctor_id,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// StreamAlerter publishes clinical events to a Kafka topic for downstream consumers.
type StreamAlerter struct {
	writer messageWriter
}

// NewStreamAlerter creates a publisher writing to topic on the given brokers.
func NewStreamAlerter(brokers []string, topic string) *StreamAlerter {
	return &StreamAlerter{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}}
}

func (a *StreamAlerter) NotifyHighSeverity(ctx context.Context, session *models.SymptomCheckerSession) error {
	return a.publish(ctx, session.ID, AlertEvent{
		Type:       EventHighSeverity,
		SessionID:  session.ID,
		DiseaseID:  session.PrimarySuspectedDiseaseID,
		Severity:   session.SeverityLevel,
		RiskScore:  session.OverallRiskScore,
		OccurredAt: time.Now().UTC(),
	})
}

func (a *StreamAlerter) NotifyDiagnosisDecision(ctx context.Context, diagnosis *models.PatientDiagnosis) error {
	event := AlertEvent{
		Type:        EventDiagnosisDecision,
		DiagnosisID: diagnosis.ID,
		PatientID:   diagnosis.PatientID,
		DiseaseID:   &diagnosis.DiseaseID,
		Severity:    diagnosis.Severity,
		Status:      string(diagnosis.Status),
		OccurredAt:  time.Now().UTC(),
	}
	if diagnosis.ConfirmedByID != nil {
		event.DoctorID = *diagnosis.ConfirmedByID
	}
	return a.publish(ctx, strconv.FormatUint(uint64(diagnosis.ID), 10), event)
}

// Close flushes pending messages and closes the writer.
func (a *StreamAlerter) Close() error {
	return a.writer.Close()
}

func (a *StreamAlerter) publish(ctx context.Context, key string, event AlertEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload}); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
