package models

import (
	"time"
)

type EarningsStatus string

const (
	EarningsStatusPending EarningsStatus = "pending"
	EarningsStatusPaid    EarningsStatus = "paid"
)

type EarningsLine struct {
	ID            int64          `json:"id"`
	DoctorID      int64          `json:"doctor_id"`
	AppointmentID int64          `json:"appointment_id"`
	Amount        int64          `json:"amount"`
	Status        EarningsStatus `json:"status"`
	IsEmergency   bool           `json:"is_emergency"`
	CreatedAt     time.Time      `json:"created_at"`
}

type EarningsReport struct {
	DoctorID       int64     `json:"doctor_id"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	PendingAmount  int64     `json:"pending_amount"`
	PaidAmount     int64     `json:"paid_amount"`
	TotalAmount    int64     `json:"total_amount"`
	PendingCount   int       `json:"pending_count"`
	PaidCount      int       `json:"paid_count"`
	EmergencyCount int       `json:"emergency_count"`
	RegularCount   int       `json:"regular_count"`
}

// Add folds one earnings line into the report.
func (r *EarningsReport) Add(line EarningsLine) {
	switch line.Status {
	case EarningsStatusPaid:
		r.PaidAmount += line.Amount
		r.PaidCount++
	default:
		r.PendingAmount += line.Amount
		r.PendingCount++
	}
	r.TotalAmount += line.Amount
	if line.IsEmergency {
		r.EmergencyCount++
	} else {
		r.RegularCount++
	}
}

type ExportedReport struct {
	ObjectName   string         `json:"object_name"`
	PresignedURL string         `json:"presigned_url"`
	Report       EarningsReport `json:"report"`
}
