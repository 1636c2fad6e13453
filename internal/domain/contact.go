package domain

import "time"

type ContactStatus string

const (
	ContactLead         ContactStatus = "lead"
	ContactClient       ContactStatus = "client"
	ContactFormerClient ContactStatus = "former_client"
)

func ValidContactStatus(s ContactStatus) bool {
	switch s {
	case ContactLead, ContactClient, ContactFormerClient:
		return true
	}
	return false
}

type Contact struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email,omitempty"`
	PhoneNumber string        `json:"phoneNumber,omitempty"`
	Address     string        `json:"address,omitempty"`
	Status      ContactStatus `json:"status"`
	// Tags are free-form labels, kept unique per contact.
	Tags []string `json:"tags"`
	// PipelineStage is a free-form sales-funnel label chosen by the user.
	PipelineStage string    `json:"pipelineStage,omitempty"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
}
