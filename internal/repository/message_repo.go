package repository

import (
	"context"
	"errors"

	"crm-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository is the append-only conversation log. Messages are never
// updated; the only delete is the per-user bulk clear.
type MessageRepository interface {
	InsertMessage(ctx context.Context, m *domain.AIMessage) (*domain.AIMessage, error)
	// ListThreadMessages returns one thread's messages oldest first. A nil
	// estimateID selects the contact's general thread, not "any estimate".
	ListThreadMessages(ctx context.Context, userID, contactID string, estimateID *string) ([]*domain.AIMessage, error)
	// DistinctThreadKeys returns the distinct (contact_id, estimate_id)
	// pairs appearing in the user's messages.
	DistinctThreadKeys(ctx context.Context, userID string) ([]domain.ThreadKey, error)
	// LatestThreadMessage returns the newest message matching the exact
	// pair, or nil when the thread has no messages.
	LatestThreadMessage(ctx context.Context, userID string, key domain.ThreadKey) (*domain.AIMessage, error)
	DeleteAllMessages(ctx context.Context, userID string) error
}

type pgMessageRepo struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) MessageRepository {
	return &pgMessageRepo{db: db}
}

const messageCols = `id, message, sender_type, user_id, contact_id, estimate_id, created_at`

func scanMessage(row pgx.Row) (*domain.AIMessage, error) {
	var m domain.AIMessage
	err := row.Scan(
		&m.ID, &m.Message, &m.SenderType, &m.UserID, &m.ContactID, &m.EstimateID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (p *pgMessageRepo) InsertMessage(ctx context.Context, m *domain.AIMessage) (*domain.AIMessage, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	query := `
		INSERT INTO ai_messages (id, message, sender_type, user_id, contact_id, estimate_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := p.db.QueryRow(ctx, query,
		m.ID, m.Message, m.SenderType, m.UserID, m.ContactID, m.EstimateID,
	).Scan(&m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (p *pgMessageRepo) ListThreadMessages(ctx context.Context, userID, contactID string, estimateID *string) ([]*domain.AIMessage, error) {
	query := `
		SELECT ` + messageCols + `
		FROM ai_messages
		WHERE user_id = $1
		  AND contact_id = $2
		  AND (($3::uuid IS NULL AND estimate_id IS NULL) OR estimate_id = $3)
		ORDER BY created_at ASC
	`
	rows, err := p.db.Query(ctx, query, userID, contactID, estimateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.AIMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (p *pgMessageRepo) DistinctThreadKeys(ctx context.Context, userID string) ([]domain.ThreadKey, error) {
	query := `
		SELECT DISTINCT contact_id, estimate_id
		FROM ai_messages
		WHERE user_id = $1
	`
	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []domain.ThreadKey
	for rows.Next() {
		var k domain.ThreadKey
		if err := rows.Scan(&k.ContactID, &k.EstimateID); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (p *pgMessageRepo) LatestThreadMessage(ctx context.Context, userID string, key domain.ThreadKey) (*domain.AIMessage, error) {
	query := `
		SELECT ` + messageCols + `
		FROM ai_messages
		WHERE user_id = $1
		  AND (($2::uuid IS NULL AND contact_id IS NULL) OR contact_id = $2)
		  AND (($3::uuid IS NULL AND estimate_id IS NULL) OR estimate_id = $3)
		ORDER BY created_at DESC
		LIMIT 1
	`
	m, err := scanMessage(p.db.QueryRow(ctx, query, userID, key.ContactID, key.EstimateID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (p *pgMessageRepo) DeleteAllMessages(ctx context.Context, userID string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM ai_messages WHERE user_id = $1`, userID)
	return err
}
