package queries

const earningsLineColumns = `
			id,
			doctor_id,
			appointment_id,
			amount,
			status,
			is_emergency,
			created_at`

const (
	InsertEarningsLine = `
		INSERT INTO earnings_lines (doctor_id, appointment_id, amount, status, is_emergency)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (appointment_id) DO NOTHING
		RETURNING` + earningsLineColumns

	GetEarningsLineByAppointmentID = `
		SELECT` + earningsLineColumns + `
		FROM earnings_lines
		WHERE appointment_id = $1
	`

	ListEarningsLinesByDoctorAndRange = `
		SELECT` + earningsLineColumns + `
		FROM earnings_lines
		WHERE doctor_id = $1
			AND created_at >= $2
			AND created_at < $3
		ORDER BY created_at
	`
)
