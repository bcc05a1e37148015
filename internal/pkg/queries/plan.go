package queries

const (
	GetPlanByName = `
		SELECT
			name,
			emergency_quota_unlimited,
			emergency_quota_count,
			specialist_discount_pct,
			emergency_included_minutes,
			created_at,
			updated_at
		FROM plans
		WHERE name = $1
	`
)
