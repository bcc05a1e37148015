package responses

type ComputedEarnings struct {
	AppointmentID int64 `json:"appointment_id"`
	Amount        int64 `json:"amount"`
}

type StaleCancellation struct {
	Cancelled []int64          `json:"cancelled"`
	Failed    map[int64]string `json:"failed,omitempty"`
}
