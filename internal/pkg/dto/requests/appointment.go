package requests

type BookAppointment struct {
	PatientID       int64  `json:"patient_id"`
	DoctorID        *int64 `json:"doctor_id"`
	ScheduledAt     string `json:"scheduled_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0,lte=480"`
	Notes           string `json:"notes"`
}

type BookEmergencyAppointment struct {
	PatientID       int64  `json:"patient_id"`
	DoctorID        *int64 `json:"doctor_id"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,gt=0,lte=480"`
	Notes           string `json:"notes"`
}

type CancelStaleAppointments struct {
	OlderThan string `json:"older_than" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}
