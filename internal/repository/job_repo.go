package repository

import (
	"context"
	"errors"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/pkg/xerrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobRepository interface {
	CreateJob(ctx context.Context, j *domain.Job) (*domain.Job, error)
	GetJob(ctx context.Context, id, ownerID string) (*domain.Job, error)
	ListJobs(ctx context.Context, ownerID string, status *domain.JobStatus, limit, offset int) ([]*domain.Job, error)
	CountJobs(ctx context.Context, ownerID string, status *domain.JobStatus) (int, error)
	UpdateJob(ctx context.Context, j *domain.Job) error
	DeleteJob(ctx context.Context, id, ownerID string) error
	// JobMetrics aggregates completed revenue since the cutoff and the
	// owner's all-time open backlog.
	JobMetrics(ctx context.Context, ownerID string, since time.Time) (*domain.JobMetrics, error)
}

type pgJobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) JobRepository {
	return &pgJobRepo{db: db}
}

func (p *pgJobRepo) CreateJob(ctx context.Context, j *domain.Job) (*domain.Job, error) {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	if j.Status == "" {
		j.Status = domain.JobOpen
	}

	query := `
		INSERT INTO jobs (id, name, address, price, status, client_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := p.db.QueryRow(ctx, query,
		j.ID, j.Name, j.Address, j.Price, j.Status, j.ClientID, j.CreatedBy,
	).Scan(&j.CreatedAt)
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (p *pgJobRepo) GetJob(ctx context.Context, id, ownerID string) (*domain.Job, error) {
	query := `
		SELECT id, name, COALESCE(address, ''), price, status, client_id, created_by, created_at
		FROM jobs
		WHERE id = $1 AND created_by = $2
	`
	var j domain.Job
	err := p.db.QueryRow(ctx, query, id, ownerID).Scan(
		&j.ID, &j.Name, &j.Address, &j.Price, &j.Status, &j.ClientID, &j.CreatedBy, &j.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (p *pgJobRepo) ListJobs(ctx context.Context, ownerID string, status *domain.JobStatus, limit, offset int) ([]*domain.Job, error) {
	query := `
		SELECT id, name, COALESCE(address, ''), price, status, client_id, created_by, created_at
		FROM jobs
		WHERE created_by = $1
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := p.db.Query(ctx, query, ownerID, jobStatusArg(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		var j domain.Job
		if err := rows.Scan(
			&j.ID, &j.Name, &j.Address, &j.Price, &j.Status, &j.ClientID, &j.CreatedBy, &j.CreatedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

func (p *pgJobRepo) CountJobs(ctx context.Context, ownerID string, status *domain.JobStatus) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM jobs
		WHERE created_by = $1
		  AND ($2::text IS NULL OR status = $2)
	`
	var count int
	if err := p.db.QueryRow(ctx, query, ownerID, jobStatusArg(status)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *pgJobRepo) UpdateJob(ctx context.Context, j *domain.Job) error {
	query := `
		UPDATE jobs
		SET name = $3, address = $4, price = $5, status = $6
		WHERE id = $1 AND created_by = $2
	`
	ct, err := p.db.Exec(ctx, query, j.ID, j.CreatedBy, j.Name, j.Address, j.Price, j.Status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (p *pgJobRepo) DeleteJob(ctx context.Context, id, ownerID string) error {
	ct, err := p.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1 AND created_by = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (p *pgJobRepo) JobMetrics(ctx context.Context, ownerID string, since time.Time) (*domain.JobMetrics, error) {
	query := `
		SELECT COALESCE(SUM(price) FILTER (WHERE status = 'completed' AND created_at >= $2), 0),
		       COUNT(*) FILTER (WHERE status = 'completed' AND created_at >= $2),
		       COUNT(*) FILTER (WHERE status IN ('open', 'in_progress'))
		FROM jobs
		WHERE created_by = $1
	`
	var m domain.JobMetrics
	err := p.db.QueryRow(ctx, query, ownerID, since).Scan(
		&m.GrossClosedDealsAmount, &m.CompletedJobsCount, &m.OpenJobsCount,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func jobStatusArg(s *domain.JobStatus) any {
	if s == nil {
		return nil
	}
	return string(*s)
}
