package usecase

import (
	"context"
	"fmt"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/internal/repository"
	"crm-backend/internal/tasks"
	"crm-backend/pkg/logger"
	"crm-backend/pkg/xerrors"

	"go.uber.org/zap"
)

type JobUsecase struct {
	jobs          repository.JobRepository
	contacts      repository.ContactRepository
	calendar      repository.CalendarRepository
	notifications *NotificationUsecase
	queue         *tasks.Queue
}

func NewJobUsecase(
	jobs repository.JobRepository,
	contacts repository.ContactRepository,
	calendar repository.CalendarRepository,
	notifications *NotificationUsecase,
	queue *tasks.Queue,
) *JobUsecase {
	return &JobUsecase{
		jobs:          jobs,
		contacts:      contacts,
		calendar:      calendar,
		notifications: notifications,
		queue:         queue,
	}
}

type JobInput struct {
	// ForUserID lets an admin create on behalf of another user. Resolved
	// at the handler boundary, ignored here.
	ForUserID string `json:"userId,omitempty"`

	Name     string           `json:"name"`
	Address  string           `json:"address"`
	Price    float64          `json:"price"`
	Status   domain.JobStatus `json:"status"`
	ClientID string           `json:"clientId"`
}

func (uc *JobUsecase) Create(ctx context.Context, ownerID string, in JobInput) (*domain.Job, error) {
	if in.Name == "" || in.ClientID == "" {
		return nil, xerrors.ErrInvalidInput
	}
	if in.Status != "" && !domain.ValidJobStatus(in.Status) {
		return nil, xerrors.ErrInvalidInput
	}
	if _, err := uc.contacts.GetContact(ctx, in.ClientID, ownerID); err != nil {
		return nil, err
	}

	job, err := uc.jobs.CreateJob(ctx, &domain.Job{
		Name:      in.Name,
		Address:   in.Address,
		Price:     in.Price,
		Status:    in.Status,
		ClientID:  in.ClientID,
		CreatedBy: ownerID,
	})
	if err != nil {
		return nil, err
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

	return job, nil
}

func (uc *JobUsecase) Get(ctx context.Context, id, ownerID string) (*domain.Job, error) {
	return uc.jobs.GetJob(ctx, id, ownerID)
}

func (uc *JobUsecase) List(ctx context.Context, ownerID string, status *domain.JobStatus, limit, offset int) ([]*domain.Job, int, error) {
	if status != nil && !domain.ValidJobStatus(*status) {
		return nil, 0, xerrors.ErrInvalidInput
	}
	total, err := uc.jobs.CountJobs(ctx, ownerID, status)
	if err != nil {
		return nil, 0, err
	}
	items, err := uc.jobs.ListJobs(ctx, ownerID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (uc *JobUsecase) Update(ctx context.Context, id, ownerID string, in JobInput) (*domain.Job, error) {
	job, err := uc.jobs.GetJob(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	wasCompleted := job.Status == domain.JobCompleted

	if in.Name != "" {
		job.Name = in.Name
	}
	if in.Address != "" {
		job.Address = in.Address
	}
	if in.Price != 0 {
		job.Price = in.Price
	}
	if in.Status != "" {
		if !domain.ValidJobStatus(in.Status) {
			return nil, xerrors.ErrInvalidInput
		}
		job.Status = in.Status
	}

	if err := uc.jobs.UpdateJob(ctx, job); err != nil {
		return nil, err
	}

	if !wasCompleted && job.Status == domain.JobCompleted {
		if _, err := uc.notifications.Dispatch(ctx, ownerID, domain.EventJobComplete,
			"Job completed",
			fmt.Sprintf("Job %s has been marked as completed.", job.Name),
			&job.ID,
		); err != nil {
			logger.L().Warn("job completed notification failed",
				zap.String("jobID", job.ID), zap.Error(err))
		}
	}

	return job, nil
}

func (uc *JobUsecase) Delete(ctx context.Context, id, ownerID string) error {
	return uc.jobs.DeleteJob(ctx, id, ownerID)
}

// Metrics reports closed revenue over the trailing window plus the open
// backlog. A non-positive days falls back to the default window.
func (uc *JobUsecase) Metrics(ctx context.Context, ownerID string, days int) (*domain.JobMetrics, error) {
	if days <= 0 {
		days = defaultMetricsWindowDays
	}
	return uc.jobs.JobMetrics(ctx, ownerID, time.Now().AddDate(0, 0, -days))
}
