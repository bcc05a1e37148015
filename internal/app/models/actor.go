package models

import "consultation-service/internal/pkg/constvars"

type Actor struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == constvars.RoleAdmin
}

// IsPatientOf reports whether the actor is the appointment's patient.
func (a *Actor) IsPatientOf(appointment *Appointment) bool {
	return a != nil && a.Role == constvars.RolePatient && appointment.PatientID == a.ID
}

// IsDoctorOf reports whether the actor is the doctor assigned to the appointment.
func (a *Actor) IsDoctorOf(appointment *Appointment) bool {
	return a != nil && a.Role == constvars.RoleDoctor && appointment.HasDoctor(a.ID)
}
