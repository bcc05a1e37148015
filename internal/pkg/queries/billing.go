package queries

const (
	GetBillingProfileByPatientID = `
		SELECT
			patient_id,
			customer_ref,
			payment_method_ref,
			updated_at
		FROM billing_profiles
		WHERE patient_id = $1
	`

	GetDoctorFeeByDoctorID = `
		SELECT
			doctor_id,
			consultation_fee,
			emergency_fee,
			updated_at
		FROM doctor_fees
		WHERE doctor_id = $1
	`
)
