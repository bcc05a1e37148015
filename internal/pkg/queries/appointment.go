package queries

const appointmentColumns = `
			id,
			patient_id,
			doctor_id,
			scheduled_at,
			duration_minutes,
			type,
			status,
			is_emergency,
			payment_status,
			payment_authorization_id,
			payment_amount,
			notes,
			video_room_url,
			created_at,
			updated_at`

const (
	InsertAppointment = `
		INSERT INTO appointments (
			patient_id,
			doctor_id,
			scheduled_at,
			duration_minutes,
			type,
			status,
			is_emergency,
			payment_status,
			payment_amount,
			notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING` + appointmentColumns

	GetAppointmentByID = `
		SELECT` + appointmentColumns + `
		FROM appointments
		WHERE id = $1
	`

	AssignAppointmentDoctor = `
		UPDATE appointments
		SET doctor_id = $2, updated_at = NOW()
		WHERE id = $1 AND doctor_id IS NULL
		RETURNING` + appointmentColumns

	MarkAppointmentIncludedInPlan = `
		UPDATE appointments
		SET payment_status = 'included_in_plan', payment_amount = 0, updated_at = NOW()
		WHERE id = $1
			AND payment_status = 'pending'
			AND status NOT IN ('completed', 'cancelled')
		RETURNING` + appointmentColumns

	MarkAppointmentAuthorized = `
		UPDATE appointments
		SET payment_status = 'authorized',
			payment_authorization_id = $2,
			payment_amount = $3,
			updated_at = NOW()
		WHERE id = $1
			AND payment_status = 'pending'
			AND status NOT IN ('completed', 'cancelled')
		RETURNING` + appointmentColumns

	MarkAppointmentPaymentCompleted = `
		UPDATE appointments
		SET payment_status = 'completed', status = 'completed', updated_at = NOW()
		WHERE id = $1
			AND payment_status = 'authorized'
			AND payment_authorization_id = $2
			AND status IN ('confirmed', 'in_progress', 'completed')
		RETURNING` + appointmentColumns

	MarkAppointmentPaymentCancelled = `
		UPDATE appointments
		SET payment_status = 'cancelled', status = 'cancelled', updated_at = NOW()
		WHERE id = $1
			AND payment_status = 'authorized'
			AND payment_authorization_id = $2
		RETURNING` + appointmentColumns

	TransitionAppointmentStatus = `
		UPDATE appointments
		SET status = $3, updated_at = NOW()
		WHERE id = $1
			AND status = $2
			AND payment_status = ANY($4)
		RETURNING` + appointmentColumns

	SetAppointmentVideoRoom = `
		UPDATE appointments
		SET video_room_url = $2, updated_at = NOW()
		WHERE id = $1
	`

	TouchAppointment = `
		UPDATE appointments
		SET updated_at = NOW()
		WHERE id = $1
	`

	// least recently touched first, so rows that keep failing to cancel do not hold the batch
	ListStaleAppointments = `
		SELECT` + appointmentColumns + `
		FROM appointments
		WHERE status IN ('scheduled', 'confirmed')
			AND scheduled_at + (duration_minutes * INTERVAL '1 minute') < $1
		ORDER BY updated_at, id
		LIMIT $2
	`

	ListActiveEmergencyAppointments = `
		SELECT` + appointmentColumns + `
		FROM appointments
		WHERE is_emergency = TRUE
			AND status IN ('scheduled', 'confirmed', 'in_progress')
		ORDER BY scheduled_at
	`
)
