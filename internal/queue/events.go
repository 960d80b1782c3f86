package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types for the prescription stream
const (
	EventPrescriptionCreated = "prescription_created"
)

// Stream names
const (
	StreamPrescriptions = "stream:prescriptions"
)

// Consumer group name for notification workers
const (
	ConsumerGroupNotifications = "notification_workers"
)

// PrescriptionEvent is published when a prescription has been stored.
// Workers load the prescription by id, so the event carries no clinical data.
type PrescriptionEvent struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Timestamp      int64  `json:"timestamp"`
	PrescriptionID int64  `json:"prescription_id"`
	PatientID      int64  `json:"patient_id"`
}

func NewPrescriptionCreatedEvent(prescriptionID, patientID int64) PrescriptionEvent {
	return PrescriptionEvent{
		ID:             uuid.NewString(),
		Type:           EventPrescriptionCreated,
		Timestamp:      time.Now().Unix(),
		PrescriptionID: prescriptionID,
		PatientID:      patientID,
	}
}

// ToMap converts the event to field-value pairs for XADD, with the JSON body in "data".
func (e PrescriptionEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParsePrescriptionEvent parses an event from Redis stream message values.
func ParsePrescriptionEvent(values map[string]interface{}) (PrescriptionEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return PrescriptionEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event PrescriptionEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return PrescriptionEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
