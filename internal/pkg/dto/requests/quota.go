package requests

type ResetQuotaCycle struct {
	PlanName   string `json:"plan_name" validate:"required"`
	CycleStart string `json:"cycle_start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	CycleEnd   string `json:"cycle_end" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}
