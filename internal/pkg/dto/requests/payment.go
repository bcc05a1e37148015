package requests

type Preauthorization struct {
	Amount      int64 `json:"amount" validate:"gte=0"`
	DoctorID    int64 `json:"doctor_id" validate:"required,gt=0"`
	IsEmergency bool  `json:"is_emergency"`
}

// GatewayAuthorization is the create-authorization payload sent to the payment gateway.
type GatewayAuthorization struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	CustomerRef    string            `json:"customer"`
	PaymentMethod  string            `json:"payment_method"`
	Metadata       map[string]string `json:"metadata"`
	IdempotencyKey string            `json:"-"`
}
