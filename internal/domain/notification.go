package domain

import "time"

// EventType is the closed set of business occurrences that can raise a
// notification. Unknown values are rejected at the boundary instead of
// silently creating preference rows for them.
type EventType string

const (
	EventNewEstimate      EventType = "new_estimate"
	EventEstimateAccepted EventType = "estimate_accepted"
	EventJobComplete      EventType = "job_complete"
	EventPaymentReceived  EventType = "payment_received"
	EventDailySummary     EventType = "daily_summary"
)

// KnownEventTypes returns every event type, in the order settings are
// seeded for a new user.
func KnownEventTypes() []EventType {
	return []EventType{
		EventNewEstimate,
		EventEstimateAccepted,
		EventJobComplete,
		EventPaymentReceived,
		EventDailySummary,
	}
}

func ValidEventType(t EventType) bool {
	switch t {
	case EventNewEstimate, EventEstimateAccepted, EventJobComplete,
		EventPaymentReceived, EventDailySummary:
		return true
	}
	return false
}

// System-wide channel defaults, applied when a user has no setting row
// for an event type.
const (
	DefaultEmailEnabled = true
	DefaultSMSEnabled   = false
	DefaultAppEnabled   = true
)

// Notification is one persisted in-app alert. Only IsRead ever changes
// after creation.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EventType EventType `json:"eventType"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RelatedID *string   `json:"relatedId,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationSetting is the per-user, per-event-type channel toggle row.
// (UserID, EventType) is unique.
type NotificationSetting struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	EventType    EventType `json:"eventType"`
	EmailEnabled bool      `json:"emailEnabled"`
	SMSEnabled   bool      `json:"smsEnabled"`
	AppEnabled   bool      `json:"appEnabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SettingUpdate is a partial update for one event type. Nil flags keep
// the existing value, or the system default when no row exists yet.
type SettingUpdate struct {
	EventType    EventType `json:"eventType"`
	EmailEnabled *bool     `json:"emailEnabled,omitempty"`
	SMSEnabled   *bool     `json:"smsEnabled,omitempty"`
	AppEnabled   *bool     `json:"appEnabled,omitempty"`
}
