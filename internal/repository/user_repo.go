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

type UserRepository interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateCompanyInfo(ctx context.Context, id, companyName, companyLogo string) error
	DeleteUser(ctx context.Context, id string) error
}

type pgUserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &pgUserRepo{db: db}
}

const userCols = `
	id, name, email, COALESCE(phone_number, ''), password_hash, role,
	COALESCE(company_name, ''), COALESCE(company_logo, ''), created_at, updated_at
`

func scanUser(row pgx.Row, u *domain.User) error {
	return row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.Role,
		&u.CompanyName, &u.CompanyLogo, &u.CreatedAt, &u.UpdatedAt,
	)
}

func (p *pgUserRepo) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}

	query := `
		INSERT INTO users (id, name, email, phone_number, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := p.db.QueryRow(ctx, query,
		u.ID, u.Name, u.Email, u.PhoneNumber, u.PasswordHash, u.Role,
	).Scan(&u.CreatedAt)
	if err != nil {
		if xerrors.IsUniqueViolation(err) {
			return nil, xerrors.ErrEmailAlreadyInUse
		}
		return nil, err
	}
	return u, nil
}

func (p *pgUserRepo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE id = $1`
	var u domain.User
	err := scanUser(p.db.QueryRow(ctx, query, id), &u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *pgUserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE LOWER(email) = LOWER($1)`
	var u domain.User
	err := scanUser(p.db.QueryRow(ctx, query, email), &u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *pgUserRepo) ListUsers(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userCols + ` FROM users ORDER BY created_at DESC`
	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (p *pgUserRepo) UpdateUser(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, phone_number = $3, updated_at = NOW()
		WHERE id = $1
	`
	ct, err := p.db.Exec(ctx, query, u.ID, u.Name, u.PhoneNumber)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (p *pgUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	ct, err := p.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (p *pgUserRepo) UpdateCompanyInfo(ctx context.Context, id, companyName, companyLogo string) error {
	query := `UPDATE users SET company_name = $2, company_logo = $3, updated_at = NOW() WHERE id = $1`
	ct, err := p.db.Exec(ctx, query, id, companyName, companyLogo)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

// DeleteUser cascades to the user's contacts, records and notifications
// through the schema's foreign keys.
func (p *pgUserRepo) DeleteUser(ctx context.Context, id string) error {
	ct, err := p.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}
