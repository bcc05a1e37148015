package earnings

import "consultation-service/internal/app/models"

// CalculateEarnings returns the amount owed to the doctor for a billable consultation. It is the
// price the patient was charged for it.
func CalculateEarnings(appointment *models.Appointment, plan *models.Plan, fee *models.DoctorFee, defaultEmergencyFee int64) int64 {
	return plan.ConsultationPrice(appointment, fee, defaultEmergencyFee)
}
