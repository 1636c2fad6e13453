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

type EstimateRepository interface {
	CreateEstimate(ctx context.Context, e *domain.Estimate) (*domain.Estimate, error)
	GetEstimate(ctx context.Context, id, ownerID string) (*domain.Estimate, error)
	ListEstimates(ctx context.Context, ownerID string, status *domain.EstimateStatus, limit, offset int) ([]*domain.Estimate, error)
	CountEstimates(ctx context.Context, ownerID string, status *domain.EstimateStatus) (int, error)
	UpdateEstimate(ctx context.Context, e *domain.Estimate) error
	UpdateEstimateStatus(ctx context.Context, id, ownerID string, status domain.EstimateStatus) error
	DeleteEstimate(ctx context.Context, id, ownerID string) error
	// EstimateMetrics aggregates the owner's estimates created since the
	// cutoff. CloseRate is left for the caller to derive.
	EstimateMetrics(ctx context.Context, ownerID string, since time.Time) (*domain.EstimateMetrics, error)
}

type pgEstimateRepo struct {
	db *pgxpool.Pool
}

func NewEstimateRepository(db *pgxpool.Pool) EstimateRepository {
	return &pgEstimateRepo{db: db}
}

const estimateCols = `
	id, lead_name, COALESCE(address, ''), COALESCE(scope, ''),
	price, status, client_id, created_by, created_at
`

func scanEstimate(row pgx.Row) (*domain.Estimate, error) {
	var e domain.Estimate
	err := row.Scan(
		&e.ID, &e.LeadName, &e.Address, &e.Scope,
		&e.Price, &e.Status, &e.ClientID, &e.CreatedBy, &e.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrEstimateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (p *pgEstimateRepo) CreateEstimate(ctx context.Context, e *domain.Estimate) (*domain.Estimate, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Status == "" {
		e.Status = domain.EstimatePending
	}

	query := `
		INSERT INTO estimates (id, lead_name, address, scope, price, status, client_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := p.db.QueryRow(ctx, query,
		e.ID, e.LeadName, e.Address, e.Scope, e.Price, e.Status, e.ClientID, e.CreatedBy,
	).Scan(&e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (p *pgEstimateRepo) GetEstimate(ctx context.Context, id, ownerID string) (*domain.Estimate, error) {
	query := `SELECT ` + estimateCols + ` FROM estimates WHERE id = $1 AND created_by = $2`
	return scanEstimate(p.db.QueryRow(ctx, query, id, ownerID))
}

func (p *pgEstimateRepo) ListEstimates(ctx context.Context, ownerID string, status *domain.EstimateStatus, limit, offset int) ([]*domain.Estimate, error) {
	query := `
		SELECT ` + estimateCols + `
		FROM estimates
		WHERE created_by = $1
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := p.db.Query(ctx, query, ownerID, estimateStatusArg(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var estimates []*domain.Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, e)
	}
	return estimates, rows.Err()
}

func (p *pgEstimateRepo) CountEstimates(ctx context.Context, ownerID string, status *domain.EstimateStatus) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM estimates
		WHERE created_by = $1
		  AND ($2::text IS NULL OR status = $2)
	`
	var count int
	if err := p.db.QueryRow(ctx, query, ownerID, estimateStatusArg(status)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *pgEstimateRepo) UpdateEstimate(ctx context.Context, e *domain.Estimate) error {
	query := `
		UPDATE estimates
		SET lead_name = $3, address = $4, scope = $5, price = $6, status = $7
		WHERE id = $1 AND created_by = $2
	`
	ct, err := p.db.Exec(ctx, query,
		e.ID, e.CreatedBy, e.LeadName, e.Address, e.Scope, e.Price, e.Status,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrEstimateNotFound
	}
	return nil
}

func (p *pgEstimateRepo) UpdateEstimateStatus(ctx context.Context, id, ownerID string, status domain.EstimateStatus) error {
	ct, err := p.db.Exec(ctx,
		`UPDATE estimates SET status = $3 WHERE id = $1 AND created_by = $2`,
		id, ownerID, status,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrEstimateNotFound
	}
	return nil
}

func (p *pgEstimateRepo) DeleteEstimate(ctx context.Context, id, ownerID string) error {
	ct, err := p.db.Exec(ctx, `DELETE FROM estimates WHERE id = $1 AND created_by = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrEstimateNotFound
	}
	return nil
}

func (p *pgEstimateRepo) EstimateMetrics(ctx context.Context, ownerID string, since time.Time) (*domain.EstimateMetrics, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'accepted'),
		       COALESCE(SUM(price), 0)
		FROM estimates
		WHERE created_by = $1 AND created_at >= $2
	`
	var m domain.EstimateMetrics
	err := p.db.QueryRow(ctx, query, ownerID, since).Scan(
		&m.EstimatesCreated, &m.AcceptedEstimates, &m.TotalGrossBids,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func estimateStatusArg(s *domain.EstimateStatus) any {
	if s == nil {
		return nil
	}
	return string(*s)
}
