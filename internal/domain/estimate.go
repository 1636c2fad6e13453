package domain

import "time"

type EstimateStatus string

const (
	EstimatePending  EstimateStatus = "pending"
	EstimateAccepted EstimateStatus = "accepted"
	EstimateRejected EstimateStatus = "rejected"
)

func ValidEstimateStatus(s EstimateStatus) bool {
	switch s {
	case EstimatePending, EstimateAccepted, EstimateRejected:
		return true
	}
	return false
}

// EstimateMetrics summarises a user's bidding activity over a window.
// CloseRate is the accepted/created percentage, rounded to two decimals.
type EstimateMetrics struct {
	EstimatesCreated  int     `json:"estimatesCreated"`
	AcceptedEstimates int     `json:"acceptedEstimates"`
	TotalGrossBids    float64 `json:"totalGrossBids"`
	CloseRate         float64 `json:"closeRate"`
}

// Estimate is a quote prepared for a contact. ClientID references the
// contact the estimate was raised against.
type Estimate struct {
	ID        string         `json:"id"`
	LeadName  string         `json:"leadName"`
	Address   string         `json:"address,omitempty"`
	Scope     string         `json:"scope,omitempty"`
	Price     float64        `json:"price"`
	Status    EstimateStatus `json:"status"`
	ClientID  string         `json:"clientId"`
	CreatedBy string         `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
}
