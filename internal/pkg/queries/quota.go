package queries

const (
	GetQuotaEntryByPatientID = `
		SELECT
			patient_id,
			plan_name,
			remaining,
			cycle_start,
			cycle_end,
			updated_at
		FROM quota_entries
		WHERE patient_id = $1
	`

	InsertQuotaUsage = `
		INSERT INTO quota_usages (appointment_id, patient_id)
		VALUES ($1, $2)
		ON CONFLICT (appointment_id) DO NOTHING
	`

	ExistsQuotaUsage = `
		SELECT EXISTS (SELECT 1 FROM quota_usages WHERE appointment_id = $1)
	`

	DecrementQuotaEntry = `
		UPDATE quota_entries
		SET remaining = remaining - 1, updated_at = NOW()
		WHERE patient_id = $1
			AND remaining > 0
			AND cycle_end >= $2
	`

	UpsertQuotaEntry = `
		INSERT INTO quota_entries (patient_id, plan_name, remaining, cycle_start, cycle_end)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (patient_id) DO UPDATE SET
			plan_name = EXCLUDED.plan_name,
			remaining = EXCLUDED.remaining,
			cycle_start = EXCLUDED.cycle_start,
			cycle_end = EXCLUDED.cycle_end,
			updated_at = NOW()
		RETURNING
			patient_id,
			plan_name,
			remaining,
			cycle_start,
			cycle_end,
			updated_at
	`
)
