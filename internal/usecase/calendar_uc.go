package usecase

import (
	"context"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/internal/repository"
	"crm-backend/pkg/xerrors"
)

type CalendarUsecase struct {
	calendar repository.CalendarRepository
}

func NewCalendarUsecase(calendar repository.CalendarRepository) *CalendarUsecase {
	return &CalendarUsecase{calendar: calendar}
}

type CalendarEventInput struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	StartTime   time.Time                `json:"startTime"`
	EndTime     time.Time                `json:"endTime"`
	Location    string                   `json:"location"`
	EventType   domain.CalendarEventType `json:"eventType"`
	RelatedID   *string                  `json:"relatedId"`
}

func (uc *CalendarUsecase) Create(ctx context.Context, ownerID string, in CalendarEventInput) (*domain.CalendarEvent, error) {
	if in.Title == "" || in.StartTime.IsZero() {
		return nil, xerrors.ErrInvalidInput
	}
	eventType := in.EventType
	if eventType == "" {
		eventType = domain.CalendarOther
	}
	if !domain.ValidCalendarEventType(eventType) {
		return nil, xerrors.ErrInvalidInput
	}
	endTime := in.EndTime
	if endTime.IsZero() {
		endTime = in.StartTime
	}
	if endTime.Before(in.StartTime) {
		return nil, xerrors.ErrInvalidInput
	}

	return uc.calendar.CreateEvent(ctx, &domain.CalendarEvent{
		Title:       in.Title,
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     endTime,
		Location:    in.Location,
		EventType:   eventType,
		RelatedID:   in.RelatedID,
		CreatedBy:   ownerID,
	})
}

func (uc *CalendarUsecase) List(ctx context.Context, ownerID string, from, to *time.Time) ([]*domain.CalendarEvent, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, xerrors.ErrInvalidInput
	}
	return uc.calendar.ListEvents(ctx, ownerID, from, to)
}

func (uc *CalendarUsecase) Update(ctx context.Context, id, ownerID string, in CalendarEventInput) (*domain.CalendarEvent, error) {
	event, err := uc.calendar.GetEvent(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		event.Title = in.Title
	}
	if in.Description != "" {
		event.Description = in.Description
	}
	if in.Location != "" {
		event.Location = in.Location
	}
	if !in.StartTime.IsZero() {
		event.StartTime = in.StartTime
	}
	if !in.EndTime.IsZero() {
		event.EndTime = in.EndTime
	}
	if event.EndTime.Before(event.StartTime) {
		return nil, xerrors.ErrInvalidInput
	}
	if in.EventType != "" {
		if !domain.ValidCalendarEventType(in.EventType) {
			return nil, xerrors.ErrInvalidInput
		}
		event.EventType = in.EventType
	}
	if in.RelatedID != nil {
		event.RelatedID = in.RelatedID
	}

	if err := uc.calendar.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Related lists the events attached to a record, such as every visit
// scheduled for one job. Both the record id and its kind are required.
func (uc *CalendarUsecase) Related(ctx context.Context, ownerID, relatedID string, eventType domain.CalendarEventType) ([]*domain.CalendarEvent, error) {
	if relatedID == "" || eventType == "" {
		return nil, xerrors.ErrInvalidInput
	}
	if !domain.ValidCalendarEventType(eventType) {
		return nil, xerrors.ErrInvalidInput
	}
	return uc.calendar.ListRelatedEvents(ctx, ownerID, relatedID, eventType)
}

func (uc *CalendarUsecase) Delete(ctx context.Context, id, ownerID string) error {
	return uc.calendar.DeleteEvent(ctx, id, ownerID)
}
