package requests

type EarningsReportQuery struct {
	From string `validate:"required,datetime=2006-01-02"`
	To   string `validate:"required,datetime=2006-01-02"`
}

type EarningsReportExport struct {
	Month string `validate:"required,datetime=2006-01"`
}
