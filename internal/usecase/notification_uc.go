package usecase

import (
	"context"
	"errors"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/internal/repository"
	"crm-backend/pkg/logger"
	"crm-backend/pkg/notifier"
	"crm-backend/pkg/xerrors"

	"go.uber.org/zap"
)

// channelTimeout bounds every delivery attempt made by a single dispatch.
const channelTimeout = 15 * time.Second

type NotificationUsecase struct {
	repo     repository.NotificationRepository
	users    repository.UserRepository
	notifier *notifier.Notifier
}

func NewNotificationUsecase(repo repository.NotificationRepository, users repository.UserRepository, n *notifier.Notifier) *NotificationUsecase {
	return &NotificationUsecase{repo: repo, users: users, notifier: n}
}

// -----------------------------
// Settings
// -----------------------------

// GetSettings returns the user's notification settings, lazily seeding one
// default row per known event type on first access. The seed is an upsert
// against the (user_id, event_type) constraint, so concurrent first callers
// cannot create duplicates.
func (uc *NotificationUsecase) GetSettings(ctx context.Context, userID string) ([]*domain.NotificationSetting, error) {
	settings, err := uc.repo.ListSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		return settings, nil
	}

	if err := uc.repo.SeedDefaultSettings(ctx, userID, domain.KnownEventTypes()); err != nil {
		return nil, err
	}
	return uc.repo.ListSettings(ctx, userID)
}

// UpdateSettings applies partial updates per event type. Flags left unset
// keep their previous value, or the system default when no row existed.
func (uc *NotificationUsecase) UpdateSettings(ctx context.Context, userID string, updates []domain.SettingUpdate) ([]*domain.NotificationSetting, error) {
	if len(updates) == 0 {
		return nil, xerrors.ErrInvalidInput
	}
	for _, upd := range updates {
		if upd.EventType == "" {
			return nil, xerrors.ErrInvalidInput
		}
		if !domain.ValidEventType(upd.EventType) {
			return nil, xerrors.ErrUnknownEventType
		}
	}

	updated := make([]*domain.NotificationSetting, 0, len(updates))
	for _, upd := range updates {
		s, err := uc.repo.UpsertSetting(ctx, userID, upd)
		if err != nil {
			return nil, err
		}
		updated = append(updated, s)
	}
	return updated, nil
}

// -----------------------------
// Notifications
// -----------------------------

func (uc *NotificationUsecase) ListNotifications(ctx context.Context, userID string, isRead *bool, limit, offset int) ([]*domain.Notification, int, error) {
	total, err := uc.repo.CountNotifications(ctx, userID, isRead)
	if err != nil {
		return nil, 0, err
	}
	items, err := uc.repo.ListNotifications(ctx, userID, isRead, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (uc *NotificationUsecase) MarkAsRead(ctx context.Context, id, userID string) (*domain.Notification, error) {
	return uc.repo.MarkNotificationAsRead(ctx, id, userID)
}

func (uc *NotificationUsecase) MarkAllAsRead(ctx context.Context, userID string) error {
	return uc.repo.MarkAllNotificationsAsRead(ctx, userID)
}

func (uc *NotificationUsecase) DeleteNotification(ctx context.Context, id, userID string) error {
	return uc.repo.DeleteNotification(ctx, id, userID)
}

// -----------------------------
// Dispatch
// -----------------------------

// Dispatch fans one business event out to the user's enabled channels.
// The in-app leg persists a Notification row and pushes it to connected
// sessions; email and SMS are attempted best-effort and their failures are
// logged, never returned. The only fatal condition is an unresolvable
// target user. Returns the persisted notification, or nil when the in-app
// channel is disabled.
func (uc *NotificationUsecase) Dispatch(ctx context.Context, userID string, eventType domain.EventType, title, message string, relatedID *string) (*domain.Notification, error) {
	if !domain.ValidEventType(eventType) {
		return nil, xerrors.ErrUnknownEventType
	}

	// Absent setting row means system defaults for every channel.
	emailEnabled := domain.DefaultEmailEnabled
	smsEnabled := domain.DefaultSMSEnabled
	appEnabled := domain.DefaultAppEnabled

	setting, err := uc.repo.GetSetting(ctx, userID, eventType)
	switch {
	case err == nil:
		emailEnabled = setting.EmailEnabled
		smsEnabled = setting.SMSEnabled
		appEnabled = setting.AppEnabled
	case errors.Is(err, xerrors.ErrNotFound):
		// keep defaults
	default:
		logger.L().Warn("notification setting lookup failed, using defaults",
			zap.String("userID", userID), zap.String("eventType", string(eventType)), zap.Error(err))
	}

	user, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			logger.L().Error("dispatch target user not found", zap.String("userID", userID))
			return nil, xerrors.ErrUserNotFound
		}
		return nil, err
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), channelTimeout)
	defer cancel()

	var notification *domain.Notification
	if appEnabled {
		n, err := uc.repo.CreateNotification(ctx, &domain.Notification{
			UserID:    userID,
			EventType: eventType,
			Title:     title,
			Message:   message,
			RelatedID: relatedID,
		})
		if err != nil {
			// In-app persistence failure does not block the other channels.
			logger.L().Error("failed to persist notification",
				zap.String("userID", userID), zap.String("eventType", string(eventType)), zap.Error(err))
		} else {
			notification = n
			uc.notifier.WS.Publish(domain.WSEvent{Type: "notification", Data: n})
		}
	}

	if emailEnabled && user.Email != "" {
		if uc.notifier.Email.SendNotificationEmail(sendCtx, user.Email, title, message) {
			logger.L().Info("email notification sent",
				zap.String("userID", userID), zap.String("eventType", string(eventType)))
		} else {
			logger.L().Warn("failed to send email notification",
				zap.String("userID", userID), zap.String("eventType", string(eventType)))
		}
	}

	if smsEnabled && user.PhoneNumber != "" {
		if uc.notifier.SMS.SendNotificationSMS(sendCtx, user.PhoneNumber, title, message) {
			logger.L().Info("sms notification sent",
				zap.String("userID", userID), zap.String("eventType", string(eventType)))
		} else {
			logger.L().Warn("failed to send sms notification",
				zap.String("userID", userID), zap.String("eventType", string(eventType)))
		}
	}

	return notification, nil
}
