package models

import (
	"time"
)

type AppointmentType string

const (
	AppointmentTypeTelemedicine AppointmentType = "telemedicine"
	AppointmentTypeEmergency    AppointmentType = "emergency"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending        PaymentStatus = "pending"
	PaymentStatusAuthorized     PaymentStatus = "authorized"
	PaymentStatusIncludedInPlan PaymentStatus = "included_in_plan"
	PaymentStatusCompleted      PaymentStatus = "completed"
	PaymentStatusCancelled      PaymentStatus = "cancelled"
)

var appointmentStatusTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled:  {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed:  {AppointmentStatusInProgress, AppointmentStatusCompleted, AppointmentStatusCancelled},
	AppointmentStatusInProgress: {AppointmentStatusCompleted, AppointmentStatusCancelled},
}

var paymentStatusTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusIncludedInPlan, PaymentStatusAuthorized},
	PaymentStatusAuthorized: {PaymentStatusCompleted, PaymentStatusCancelled},
}

// IsTerminal reports whether no further status transition is possible.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusInProgress,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusIncludedInPlan || s == PaymentStatusCompleted || s == PaymentStatusCancelled
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusAuthorized, PaymentStatusIncludedInPlan,
		PaymentStatusCompleted, PaymentStatusCancelled:
		return true
	}
	return false
}

// ValidateStatusTransition reports whether an appointment may move from one status to another.
func ValidateStatusTransition(from, to AppointmentStatus) bool {
	for _, next := range appointmentStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidatePaymentTransition reports whether a payment status may move from one value to another.
func ValidatePaymentTransition(from, to PaymentStatus) bool {
	for _, next := range paymentStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID                     int64             `json:"id"`
	PatientID              int64             `json:"patient_id"`
	DoctorID               *int64            `json:"doctor_id,omitempty"`
	ScheduledAt            time.Time         `json:"scheduled_at"`
	DurationMinutes        int               `json:"duration_minutes"`
	Type                   AppointmentType   `json:"type"`
	Status                 AppointmentStatus `json:"status"`
	IsEmergency            bool              `json:"is_emergency"`
	PaymentStatus          PaymentStatus     `json:"payment_status"`
	PaymentAuthorizationID *string           `json:"payment_authorization_id,omitempty"`
	PaymentAmount          int64             `json:"payment_amount"`
	Notes                  string            `json:"notes,omitempty"`
	VideoRoomURL           *string           `json:"video_room_url,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

// EndsAt is the end of the consultation window.
func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

func (a *Appointment) HasDoctor(doctorID int64) bool {
	return a.DoctorID != nil && *a.DoctorID == doctorID
}

func (a *Appointment) AuthorizationID() string {
	if a.PaymentAuthorizationID == nil {
		return ""
	}
	return *a.PaymentAuthorizationID
}
