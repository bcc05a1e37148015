package models

import (
	"time"
)

type EmergencyQuota struct {
	Unlimited bool `json:"unlimited"`
	Count     int  `json:"count"`
}

type Plan struct {
	Name                     string         `json:"name"`
	EmergencyQuota           EmergencyQuota `json:"emergency_quota"`
	SpecialistDiscountPct    int            `json:"specialist_discount_pct"`
	EmergencyIncludedMinutes int            `json:"emergency_included_minutes"`
	CreatedAt                time.Time      `json:"created_at"`
	UpdatedAt                time.Time      `json:"updated_at"`
}

// NonePlan is the implicit plan of patients without a subscription.
func NonePlan() *Plan {
	return &Plan{Name: "none"}
}

// DiscountedFee applies the specialist discount, rounding half-up to the nearest minor unit.
func (p *Plan) DiscountedFee(fee int64) int64 {
	pct := int64(0)
	if p != nil {
		pct = int64(p.SpecialistDiscountPct)
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return (fee*(100-pct) + 50) / 100
}

// ConsultationPrice is what a consultation costs under the plan. Emergencies running past the
// included minutes cost the flat emergency fee; everything else costs the discounted consultation fee.
func (p *Plan) ConsultationPrice(appointment *Appointment, fee *DoctorFee, defaultEmergencyFee int64) int64 {
	if p == nil {
		p = NonePlan()
	}
	if appointment.IsEmergency && appointment.DurationMinutes > p.EmergencyIncludedMinutes {
		return fee.FlatEmergencyFee(defaultEmergencyFee)
	}
	return p.DiscountedFee(fee.ConsultationFee)
}
