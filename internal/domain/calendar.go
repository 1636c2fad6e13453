package domain

import "time"

type CalendarEventType string

const (
	CalendarJob      CalendarEventType = "job"
	CalendarEstimate CalendarEventType = "estimate"
	CalendarMeeting  CalendarEventType = "meeting"
	CalendarOther    CalendarEventType = "other"
)

func ValidCalendarEventType(t CalendarEventType) bool {
	switch t {
	case CalendarJob, CalendarEstimate, CalendarMeeting, CalendarOther:
		return true
	}
	return false
}

type CalendarEvent struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     time.Time         `json:"endTime"`
	Location    string            `json:"location,omitempty"`
	EventType   CalendarEventType `json:"eventType"`
	RelatedID   *string           `json:"relatedId,omitempty"`
	CreatedBy   string            `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
}
