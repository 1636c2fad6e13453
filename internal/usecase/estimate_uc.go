package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/internal/repository"
	"crm-backend/internal/tasks"
	"crm-backend/pkg/logger"
	"crm-backend/pkg/xerrors"

	"go.uber.org/zap"
)

type EstimateUsecase struct {
	estimates     repository.EstimateRepository
	contacts      repository.ContactRepository
	jobs          repository.JobRepository
	calendar      repository.CalendarRepository
	notifications *NotificationUsecase
	queue         *tasks.Queue
}

func NewEstimateUsecase(
	estimates repository.EstimateRepository,
	contacts repository.ContactRepository,
	jobs repository.JobRepository,
	calendar repository.CalendarRepository,
	notifications *NotificationUsecase,
	queue *tasks.Queue,
) *EstimateUsecase {
	return &EstimateUsecase{
		estimates:     estimates,
		contacts:      contacts,
		jobs:          jobs,
		calendar:      calendar,
		notifications: notifications,
		queue:         queue,
	}
}

type EstimateInput struct {
	// ForUserID lets an admin create on behalf of another user. Resolved
	// at the handler boundary, ignored here.
	ForUserID string `json:"userId,omitempty"`

	LeadName string                `json:"leadName"`
	Address  string                `json:"address"`
	Scope    string                `json:"scope"`
	Price    float64               `json:"price"`
	Status   domain.EstimateStatus `json:"status"`
	ClientID string                `json:"clientId"`
}

func (uc *EstimateUsecase) Create(ctx context.Context, ownerID string, in EstimateInput) (*domain.Estimate, error) {
	if in.LeadName == "" || in.ClientID == "" {
		return nil, xerrors.ErrInvalidInput
	}
	if in.Status != "" && !domain.ValidEstimateStatus(in.Status) {
		return nil, xerrors.ErrInvalidInput
	}
	if _, err := uc.contacts.GetContact(ctx, in.ClientID, ownerID); err != nil {
		return nil, err
	}

	estimate, err := uc.estimates.CreateEstimate(ctx, &domain.Estimate{
		LeadName:  in.LeadName,
		Address:   in.Address,
		Scope:     in.Scope,
		Price:     in.Price,
		Status:    in.Status,
		ClientID:  in.ClientID,
		CreatedBy: ownerID,
	})
	if err != nil {
		return nil, err
	}

	uc.scheduleCalendarEvent(estimate, ownerID)

	if _, err := uc.notifications.Dispatch(ctx, ownerID, domain.EventNewEstimate,
		"New estimate created",
		fmt.Sprintf("Estimate for %s has been created.", estimate.LeadName),
		&estimate.ID,
	); err != nil {
		logger.L().Warn("new estimate notification failed", zap.String("estimateID", estimate.ID), zap.Error(err))
	}

	return estimate, nil
}

func (uc *EstimateUsecase) scheduleCalendarEvent(e *domain.Estimate, ownerID string) {
	estimate := *e
	uc.queue.Submit("estimate_calendar_event", func(ctx context.Context) {
		_, err := uc.calendar.CreateEvent(ctx, &domain.CalendarEvent{
			Title:       estimate.LeadName,
			Description: fmt.Sprintf("Address: %s, Scope: %s", estimate.Address, estimate.Scope),
			StartTime:   estimate.CreatedAt,
			EndTime:     estimate.CreatedAt,
			Location:    estimate.Address,
			EventType:   domain.CalendarEstimate,
			RelatedID:   &estimate.ID,
			CreatedBy:   ownerID,
		})
		if err != nil {
			logger.L().Error("failed to create calendar event for estimate",
				zap.String("estimateID", estimate.ID), zap.Error(err))
		}
	})
}

func (uc *EstimateUsecase) Get(ctx context.Context, id, ownerID string) (*domain.Estimate, error) {
	return uc.estimates.GetEstimate(ctx, id, ownerID)
}

func (uc *EstimateUsecase) List(ctx context.Context, ownerID string, status *domain.EstimateStatus, limit, offset int) ([]*domain.Estimate, int, error) {
	if status != nil && !domain.ValidEstimateStatus(*status) {
		return nil, 0, xerrors.ErrInvalidInput
	}
	total, err := uc.estimates.CountEstimates(ctx, ownerID, status)
	if err != nil {
		return nil, 0, err
	}
	items, err := uc.estimates.ListEstimates(ctx, ownerID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (uc *EstimateUsecase) Update(ctx context.Context, id, ownerID string, in EstimateInput) (*domain.Estimate, error) {
	estimate, err := uc.estimates.GetEstimate(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	wasAccepted := estimate.Status == domain.EstimateAccepted

	if in.LeadName != "" {
		estimate.LeadName = in.LeadName
	}
	if in.Address != "" {
		estimate.Address = in.Address
	}
	if in.Scope != "" {
		estimate.Scope = in.Scope
	}
	if in.Price != 0 {
		estimate.Price = in.Price
	}
	if in.Status != "" {
		if !domain.ValidEstimateStatus(in.Status) {
			return nil, xerrors.ErrInvalidInput
		}
		estimate.Status = in.Status
	}

	if err := uc.estimates.UpdateEstimate(ctx, estimate); err != nil {
		return nil, err
	}

	if !wasAccepted && estimate.Status == domain.EstimateAccepted {
		if _, err := uc.notifications.Dispatch(ctx, ownerID, domain.EventEstimateAccepted,
			"Estimate accepted",
			fmt.Sprintf("Estimate for %s has been accepted.", estimate.LeadName),
			&estimate.ID,
		); err != nil {
			logger.L().Warn("estimate accepted notification failed",
				zap.String("estimateID", estimate.ID), zap.Error(err))
		}
	}

	return estimate, nil
}

func (uc *EstimateUsecase) Delete(ctx context.Context, id, ownerID string) error {
	return uc.estimates.DeleteEstimate(ctx, id, ownerID)
}

// ConvertToJob creates a job from an accepted-or-pending estimate, marking
// the estimate accepted if it is not already.
func (uc *EstimateUsecase) ConvertToJob(ctx context.Context, id, ownerID string) (*domain.Job, *domain.Estimate, error) {
	estimate, err := uc.estimates.GetEstimate(ctx, id, ownerID)
	if err != nil {
		return nil, nil, err
	}

	job, err := uc.jobs.CreateJob(ctx, &domain.Job{
		Name:      estimate.LeadName,
		Address:   estimate.Address,
		Price:     estimate.Price,
		Status:    domain.JobOpen,
		ClientID:  estimate.ClientID,
		CreatedBy: ownerID,
	})
	if err != nil {
		return nil, nil, err
	}

	if estimate.Status != domain.EstimateAccepted {
		if err := uc.estimates.UpdateEstimateStatus(ctx, estimate.ID, ownerID, domain.EstimateAccepted); err != nil {
			return nil, nil, err
		}
		estimate.Status = domain.EstimateAccepted

		if _, err := uc.notifications.Dispatch(ctx, ownerID, domain.EventEstimateAccepted,
			"Estimate accepted",
			fmt.Sprintf("Estimate for %s has been accepted and converted to a job.", estimate.LeadName),
			&estimate.ID,
		); err != nil {
			logger.L().Warn("estimate accepted notification failed",
				zap.String("estimateID", estimate.ID), zap.Error(err))
		}
	}

	j := *job
	uc.queue.Submit("job_calendar_event", func(ctx context.Context) {
		_, err := uc.calendar.CreateEvent(ctx, &domain.CalendarEvent{
			Title:       j.Name,
			Description: fmt.Sprintf("Address: %s, Price: %.2f", j.Address, j.Price),
			StartTime:   j.CreatedAt,
			EndTime:     j.CreatedAt,
			Location:    j.Address,
			EventType:   domain.CalendarJob,
			RelatedID:   &j.ID,
			CreatedBy:   ownerID,
		})
		if err != nil {
			logger.L().Error("failed to create calendar event for job",
				zap.String("jobID", j.ID), zap.Error(err))
		}
	})

	return job, estimate, nil
}

const defaultMetricsWindowDays = 30

// Metrics reports bidding activity over the trailing window. A
// non-positive days falls back to the default window.
func (uc *EstimateUsecase) Metrics(ctx context.Context, ownerID string, days int) (*domain.EstimateMetrics, error) {
	if days <= 0 {
		days = defaultMetricsWindowDays
	}
	since := time.Now().AddDate(0, 0, -days)

	m, err := uc.estimates.EstimateMetrics(ctx, ownerID, since)
	if err != nil {
		return nil, err
	}
	if m.EstimatesCreated > 0 {
		rate := float64(m.AcceptedEstimates) / float64(m.EstimatesCreated) * 100
		m.CloseRate = math.Round(rate*100) / 100
	}
	return m, nil
}
