package models

import (
	"time"
)

type SettlementEvent struct {
	ID              string        `json:"id"`
	Type            string        `json:"type"`
	AppointmentID   int64         `json:"appointment_id"`
	PatientID       int64         `json:"patient_id"`
	DoctorID        *int64        `json:"doctor_id,omitempty"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	AuthorizationID string        `json:"authorization_id,omitempty"`
	Amount          int64         `json:"amount"`
	ActorID         int64         `json:"actor_id"`
	ActorRole       string        `json:"actor_role"`
	OccurredAt      time.Time     `json:"occurred_at"`
}

func NewSettlementEvent(id, eventType string, appointment *Appointment, actor *Actor, occurredAt time.Time) SettlementEvent {
	event := SettlementEvent{
		ID:              id,
		Type:            eventType,
		AppointmentID:   appointment.ID,
		PatientID:       appointment.PatientID,
		DoctorID:        appointment.DoctorID,
		PaymentStatus:   appointment.PaymentStatus,
		AuthorizationID: appointment.AuthorizationID(),
		Amount:          appointment.PaymentAmount,
		OccurredAt:      occurredAt,
	}
	if actor != nil {
		event.ActorID = actor.ID
		event.ActorRole = actor.Role
	}
	return event
}
