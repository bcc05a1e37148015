package models

import (
	"time"
)

type QuotaEntry struct {
	PatientID  int64     `json:"patient_id"`
	PlanName   string    `json:"plan_name"`
	Remaining  int       `json:"remaining"`
	CycleStart time.Time `json:"cycle_start"`
	CycleEnd   time.Time `json:"cycle_end"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EffectiveRemaining treats an expired cycle as exhausted until it is reset.
func (q *QuotaEntry) EffectiveRemaining(now time.Time) int {
	if now.After(q.CycleEnd) {
		return 0
	}
	return q.Remaining
}

type QuotaStatus struct {
	PatientID int64  `json:"patient_id"`
	PlanName  string `json:"plan_name"`
	Unlimited bool   `json:"unlimited"`
	Remaining int    `json:"remaining"`
}

// Covers reports whether the next emergency consultation is covered by the plan.
func (q QuotaStatus) Covers() bool {
	return q.Unlimited || q.Remaining > 0
}
