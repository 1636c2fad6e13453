package domain

import "time"

type SenderType string

const (
	SenderAI   SenderType = "AI"
	SenderUser SenderType = "USER"
)

// AIMessage is one turn in the conversation between a user and the AI
// agent. Messages are append-only; a message tied to an estimate is always
// also tied to the estimate's contact.
type AIMessage struct {
	ID         string     `json:"id"`
	Message    string     `json:"message"`
	SenderType SenderType `json:"senderType"`
	UserID     string     `json:"userId"`
	ContactID  *string    `json:"contactId,omitempty"`
	EstimateID *string    `json:"estimateId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ThreadKey identifies one conversation thread: a (contact, estimate)
// pair where a nil estimate is the contact's general thread. A nil
// estimate is distinct from any set estimate.
type ThreadKey struct {
	ContactID  *string
	EstimateID *string
}

// ConversationThread is a derived view, never stored: the most recent
// message of one thread plus resolved display names.
type ConversationThread struct {
	ContactID        string     `json:"contactId"`
	EstimateID       *string    `json:"estimateId,omitempty"`
	ContactName      string     `json:"contactName,omitempty"`
	EstimateLeadName string     `json:"estimateLeadName,omitempty"`
	LastMessage      *AIMessage `json:"lastMessage"`
}

// WSEvent is the envelope broadcast to connected WebSocket sessions.
type WSEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
