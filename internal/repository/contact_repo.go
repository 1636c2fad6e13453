package repository

import (
	"context"
	"errors"

	"crm-backend/internal/domain"
	"crm-backend/pkg/xerrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactRepository interface {
	CreateContact(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	// GetContact is scoped to the owner: a contact belonging to another
	// user is reported as not found.
	GetContact(ctx context.Context, id, ownerID string) (*domain.Contact, error)
	ListContacts(ctx context.Context, ownerID string, status *domain.ContactStatus, limit, offset int) ([]*domain.Contact, error)
	CountContacts(ctx context.Context, ownerID string, status *domain.ContactStatus) (int, error)
	UpdateContact(ctx context.Context, c *domain.Contact) error
	DeleteContact(ctx context.Context, id, ownerID string) error
}

type pgContactRepo struct {
	db *pgxpool.Pool
}

func NewContactRepository(db *pgxpool.Pool) ContactRepository {
	return &pgContactRepo{db: db}
}

func (p *pgContactRepo) CreateContact(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = domain.ContactLead
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}

	query := `
		INSERT INTO contacts (id, name, email, phone_number, address, status, tags, pipeline_stage, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := p.db.QueryRow(ctx, query,
		c.ID, c.Name, c.Email, c.PhoneNumber, c.Address, c.Status, c.Tags, c.PipelineStage, c.CreatedBy,
	).Scan(&c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (p *pgContactRepo) GetContact(ctx context.Context, id, ownerID string) (*domain.Contact, error) {
	query := `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone_number, ''),
		       COALESCE(address, ''), status, tags, COALESCE(pipeline_stage, ''),
		       created_by, created_at
		FROM contacts
		WHERE id = $1 AND created_by = $2
	`
	var c domain.Contact
	err := p.db.QueryRow(ctx, query, id, ownerID).Scan(
		&c.ID, &c.Name, &c.Email, &c.PhoneNumber, &c.Address, &c.Status,
		&c.Tags, &c.PipelineStage, &c.CreatedBy, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *pgContactRepo) ListContacts(ctx context.Context, ownerID string, status *domain.ContactStatus, limit, offset int) ([]*domain.Contact, error) {
	query := `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone_number, ''),
		       COALESCE(address, ''), status, tags, COALESCE(pipeline_stage, ''),
		       created_by, created_at
		FROM contacts
		WHERE created_by = $1
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := p.db.Query(ctx, query, ownerID, statusArg(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.PhoneNumber, &c.Address, &c.Status,
			&c.Tags, &c.PipelineStage, &c.CreatedBy, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}

func (p *pgContactRepo) CountContacts(ctx context.Context, ownerID string, status *domain.ContactStatus) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM contacts
		WHERE created_by = $1
		  AND ($2::text IS NULL OR status = $2)
	`
	var count int
	if err := p.db.QueryRow(ctx, query, ownerID, statusArg(status)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *pgContactRepo) UpdateContact(ctx context.Context, c *domain.Contact) error {
	if c.Tags == nil {
		c.Tags = []string{}
	}
	query := `
		UPDATE contacts
		SET name = $3, email = $4, phone_number = $5, address = $6, status = $7,
		    tags = $8, pipeline_stage = $9
		WHERE id = $1 AND created_by = $2
	`
	ct, err := p.db.Exec(ctx, query,
		c.ID, c.CreatedBy, c.Name, c.Email, c.PhoneNumber, c.Address, c.Status,
		c.Tags, c.PipelineStage,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrContactNotFound
	}
	return nil
}

func (p *pgContactRepo) DeleteContact(ctx context.Context, id, ownerID string) error {
	ct, err := p.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1 AND created_by = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrContactNotFound
	}
	return nil
}

func statusArg(s *domain.ContactStatus) any {
	if s == nil {
		return nil
	}
	return string(*s)
}
