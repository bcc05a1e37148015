package models

import (
	"time"
)

type BillingProfile struct {
	PatientID        int64     `json:"patient_id"`
	CustomerRef      string    `json:"customer_ref"`
	PaymentMethodRef string    `json:"payment_method_ref"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (b *BillingProfile) HasPaymentMethod() bool {
	return b != nil && b.PaymentMethodRef != ""
}

type DoctorFee struct {
	DoctorID        int64     `json:"doctor_id"`
	ConsultationFee int64     `json:"consultation_fee"`
	EmergencyFee    int64     `json:"emergency_fee"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FlatEmergencyFee is the doctor's emergency fee, or fallback when none is configured.
func (d *DoctorFee) FlatEmergencyFee(fallback int64) int64 {
	if d == nil || d.EmergencyFee <= 0 {
		return fallback
	}
	return d.EmergencyFee
}
