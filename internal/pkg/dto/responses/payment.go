package responses

import "consultation-service/internal/app/models"

type Preauthorization struct {
	AppointmentID   int64                `json:"appointment_id"`
	PaymentStatus   models.PaymentStatus `json:"payment_status"`
	AuthorizationID string               `json:"authorization_id,omitempty"`
	ClientSecret    string               `json:"client_secret,omitempty"`
	Amount          int64                `json:"amount"`
	IncludedInPlan  bool                 `json:"included_in_plan"`
}

type PaymentResolution struct {
	AppointmentID int64                    `json:"appointment_id"`
	Status        models.AppointmentStatus `json:"status"`
	PaymentStatus models.PaymentStatus     `json:"payment_status"`
}

// GatewayAuthorization is the payment gateway's view of an authorization.
type GatewayAuthorization struct {
	ID             string `json:"id"`
	ClientSecret   string `json:"client_secret"`
	Status         string `json:"status"`
	FailureCode    string `json:"failure_code,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

type GatewayAuthorizationStatus struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	FailureCode    string `json:"failure_code,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

type VideoRoom struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
