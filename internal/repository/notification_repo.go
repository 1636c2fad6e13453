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

// NotificationRepository aggregates notification and settings DB operations.
type NotificationRepository interface {
	// Notifications
	CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListNotifications(ctx context.Context, userID string, isRead *bool, limit, offset int) ([]*domain.Notification, error)
	CountNotifications(ctx context.Context, userID string, isRead *bool) (int, error)
	MarkNotificationAsRead(ctx context.Context, id, userID string) (*domain.Notification, error)
	MarkAllNotificationsAsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, id, userID string) error

	// Settings
	ListSettings(ctx context.Context, userID string) ([]*domain.NotificationSetting, error)
	GetSetting(ctx context.Context, userID string, eventType domain.EventType) (*domain.NotificationSetting, error)
	// SeedDefaultSettings inserts one default row per event type, skipping
	// any (user_id, event_type) pair that already exists. Safe under
	// concurrent callers: the unique constraint resolves the race.
	SeedDefaultSettings(ctx context.Context, userID string, types []domain.EventType) error
	// UpsertSetting applies a partial update: nil flags keep the stored
	// value, or the system default when the row is being created.
	UpsertSetting(ctx context.Context, userID string, upd domain.SettingUpdate) (*domain.NotificationSetting, error)
}

type pgNotificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepo{db: db}
}

func (p *pgNotificationRepo) CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	query := `
		INSERT INTO notifications (id, user_id, event_type, title, message, related_id, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING is_read, created_at
	`
	err := p.db.QueryRow(ctx, query,
		n.ID, n.UserID, n.EventType, n.Title, n.Message, n.RelatedID,
	).Scan(&n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (p *pgNotificationRepo) ListNotifications(ctx context.Context, userID string, isRead *bool, limit, offset int) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, event_type, title, message, related_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		  AND ($2::boolean IS NULL OR is_read = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := p.db.Query(ctx, query, userID, isRead, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.EventType, &n.Title, &n.Message, &n.RelatedID, &n.IsRead, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func (p *pgNotificationRepo) CountNotifications(ctx context.Context, userID string, isRead *bool) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1
		  AND ($2::boolean IS NULL OR is_read = $2)
	`
	var count int
	if err := p.db.QueryRow(ctx, query, userID, isRead).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *pgNotificationRepo) MarkNotificationAsRead(ctx context.Context, id, userID string) (*domain.Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, event_type, title, message, related_id, is_read, created_at
	`
	var n domain.Notification
	err := p.db.QueryRow(ctx, query, id, userID).Scan(
		&n.ID, &n.UserID, &n.EventType, &n.Title, &n.Message, &n.RelatedID, &n.IsRead, &n.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (p *pgNotificationRepo) MarkAllNotificationsAsRead(ctx context.Context, userID string) error {
	_, err := p.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`,
		userID,
	)
	return err
}

func (p *pgNotificationRepo) DeleteNotification(ctx context.Context, id, userID string) error {
	ct, err := p.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// -----------------------------
// Settings
// -----------------------------

const settingCols = `id, user_id, event_type, email_enabled, sms_enabled, app_enabled, created_at, updated_at`

func scanSetting(row pgx.Row) (*domain.NotificationSetting, error) {
	var s domain.NotificationSetting
	err := row.Scan(
		&s.ID, &s.UserID, &s.EventType, &s.EmailEnabled, &s.SMSEnabled, &s.AppEnabled,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *pgNotificationRepo) ListSettings(ctx context.Context, userID string) ([]*domain.NotificationSetting, error) {
	query := `
		SELECT ` + settingCols + `
		FROM notification_settings
		WHERE user_id = $1
		ORDER BY event_type
	`
	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*domain.NotificationSetting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (p *pgNotificationRepo) GetSetting(ctx context.Context, userID string, eventType domain.EventType) (*domain.NotificationSetting, error) {
	query := `
		SELECT ` + settingCols + `
		FROM notification_settings
		WHERE user_id = $1 AND event_type = $2
	`
	s, err := scanSetting(p.db.QueryRow(ctx, query, userID, eventType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (p *pgNotificationRepo) SeedDefaultSettings(ctx context.Context, userID string, types []domain.EventType) error {
	query := `
		INSERT INTO notification_settings
			(id, user_id, event_type, email_enabled, sms_enabled, app_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, event_type) DO NOTHING
	`
	for _, t := range types {
		_, err := p.db.Exec(ctx, query,
			uuid.New().String(), userID, t,
			domain.DefaultEmailEnabled, domain.DefaultSMSEnabled, domain.DefaultAppEnabled,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *pgNotificationRepo) UpsertSetting(ctx context.Context, userID string, upd domain.SettingUpdate) (*domain.NotificationSetting, error) {
	// COALESCE against NULL params keeps unset flags at their stored value;
	// on insert they take the system defaults.
	query := `
		INSERT INTO notification_settings
			(id, user_id, event_type, email_enabled, sms_enabled, app_enabled)
		VALUES ($1, $2, $3, COALESCE($4, $7), COALESCE($5, $8), COALESCE($6, $9))
		ON CONFLICT (user_id, event_type) DO UPDATE SET
			email_enabled = COALESCE($4, notification_settings.email_enabled),
			sms_enabled   = COALESCE($5, notification_settings.sms_enabled),
			app_enabled   = COALESCE($6, notification_settings.app_enabled),
			updated_at    = NOW()
		RETURNING ` + settingCols + `
	`
	return scanSetting(p.db.QueryRow(ctx, query,
		uuid.New().String(), userID, upd.EventType,
		upd.EmailEnabled, upd.SMSEnabled, upd.AppEnabled,
		domain.DefaultEmailEnabled, domain.DefaultSMSEnabled, domain.DefaultAppEnabled,
	))
}
