package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/domain"
	"crm-backend/pkg/notifier"
	"crm-backend/pkg/xerrors"
)

func newNotificationFixture() (*NotificationUsecase, *fakeNotificationRepo, *fakeEmailSender, *fakeSMSSender, *fakeBroadcaster) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(&domain.User{
		ID:          "user-1",
		Name:        "Dana",
		Email:       "dana@example.com",
		PhoneNumber: "+15550100",
		Role:        domain.RoleUser,
	})
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	hub := &fakeBroadcaster{}
	uc := NewNotificationUsecase(repo, users, notifier.NewNotifier(email, sms, hub))
	return uc, repo, email, sms, hub
}

func TestGetSettingsSeedsDefaultsOnce(t *testing.T) {
	uc, _, _, _, _ := newNotificationFixture()
	ctx := context.Background()

	first, err := uc.GetSettings(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, first, len(domain.KnownEventTypes()))

	for _, s := range first {
		assert.True(t, s.EmailEnabled)
		assert.False(t, s.SMSEnabled)
		assert.True(t, s.AppEnabled)
	}

	second, err := uc.GetSettings(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, second, len(first))
}

func TestUpdateSettingsPartialPreservesOtherFlags(t *testing.T) {
	uc, _, _, _, _ := newNotificationFixture()
	ctx := context.Background()

	_, err := uc.GetSettings(ctx, "user-1")
	require.NoError(t, err)

	smsOn := true
	updated, err := uc.UpdateSettings(ctx, "user-1", []domain.SettingUpdate{
		{EventType: domain.EventNewEstimate, SMSEnabled: &smsOn},
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)

	s := updated[0]
	assert.True(t, s.SMSEnabled)
	assert.True(t, s.EmailEnabled, "unset flag must keep its previous value")
	assert.True(t, s.AppEnabled, "unset flag must keep its previous value")
}

func TestUpdateSettingsCreatesRowFromDefaults(t *testing.T) {
	uc, repo, _, _, _ := newNotificationFixture()
	ctx := context.Background()

	// No prior seed: the upsert fills unset flags from system defaults.
	emailOff := false
	updated, err := uc.UpdateSettings(ctx, "user-1", []domain.SettingUpdate{
		{EventType: domain.EventJobComplete, EmailEnabled: &emailOff},
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)

	assert.False(t, updated[0].EmailEnabled)
	assert.False(t, updated[0].SMSEnabled)
	assert.True(t, updated[0].AppEnabled)

	stored, err := repo.GetSetting(ctx, "user-1", domain.EventJobComplete)
	require.NoError(t, err)
	assert.False(t, stored.EmailEnabled)
}

func TestUpdateSettingsRejectsBadInput(t *testing.T) {
	uc, _, _, _, _ := newNotificationFixture()
	ctx := context.Background()

	_, err := uc.UpdateSettings(ctx, "user-1", nil)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	_, err = uc.UpdateSettings(ctx, "user-1", []domain.SettingUpdate{{EventType: ""}})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	_, err = uc.UpdateSettings(ctx, "user-1", []domain.SettingUpdate{{EventType: "mystery_event"}})
	assert.ErrorIs(t, err, xerrors.ErrUnknownEventType)
}

func TestDispatchDefaultsWhenNoSettingRow(t *testing.T) {
	uc, repo, email, sms, hub := newNotificationFixture()
	ctx := context.Background()

	n, err := uc.Dispatch(ctx, "user-1", domain.EventNewEstimate, "New estimate created", "Estimate for Roof ready.", nil)
	require.NoError(t, err)
	require.NotNil(t, n)

	// Defaults: in-app on, email on, sms off.
	assert.Len(t, repo.notifications, 1)
	assert.Equal(t, []string{"dana@example.com"}, email.sent)
	assert.Empty(t, sms.sent)

	events := hub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "notification", events[0].Type)
}

func TestDispatchEmailOnlyWhenInAppDisabled(t *testing.T) {
	uc, repo, email, _, hub := newNotificationFixture()
	ctx := context.Background()

	appOff := false
	_, err := uc.UpdateSettings(ctx, "user-1", []domain.SettingUpdate{
		{EventType: domain.EventJobComplete, AppEnabled: &appOff},
	})
	require.NoError(t, err)

	n, err := uc.Dispatch(ctx, "user-1", domain.EventJobComplete, "Job completed", "Deck build done.", nil)
	require.NoError(t, err)

	assert.Nil(t, n, "no in-app row when the channel is disabled")
	assert.Empty(t, repo.notifications)
	assert.Empty(t, hub.Events())
	assert.Len(t, email.sent, 1, "email still goes out exactly once")
}

func TestDispatchEmailFailureDoesNotFailDispatch(t *testing.T) {
	uc, repo, email, _, _ := newNotificationFixture()
	email.fails = true
	ctx := context.Background()

	n, err := uc.Dispatch(ctx, "user-1", domain.EventEstimateAccepted, "Estimate accepted", "Roof estimate accepted.", nil)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Len(t, repo.notifications, 1)
	assert.Len(t, email.sent, 1)
}

func TestDispatchPersistFailureStillSendsEmail(t *testing.T) {
	uc, repo, email, _, hub := newNotificationFixture()
	repo.failCreate = true
	ctx := context.Background()

	n, err := uc.Dispatch(ctx, "user-1", domain.EventNewEstimate, "New estimate created", "Estimate ready.", nil)
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Empty(t, hub.Events(), "nothing to broadcast without a persisted row")
	assert.Len(t, email.sent, 1)
}

func TestDispatchSMSRequiresPhoneNumber(t *testing.T) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(&domain.User{ID: "user-2", Name: "Lee", Email: "lee@example.com"})
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	uc := NewNotificationUsecase(repo, users, notifier.NewNotifier(email, sms, &fakeBroadcaster{}))
	ctx := context.Background()

	smsOn := true
	_, err := uc.UpdateSettings(ctx, "user-2", []domain.SettingUpdate{
		{EventType: domain.EventNewEstimate, SMSEnabled: &smsOn},
	})
	require.NoError(t, err)

	_, err = uc.Dispatch(ctx, "user-2", domain.EventNewEstimate, "New estimate created", "Estimate ready.", nil)
	require.NoError(t, err)
	assert.Empty(t, sms.sent, "no phone number on file, sms must be skipped")
}

func TestDispatchRejectsUnknownEventType(t *testing.T) {
	uc, repo, email, _, _ := newNotificationFixture()

	_, err := uc.Dispatch(context.Background(), "user-1", "mystery_event", "t", "m", nil)
	assert.ErrorIs(t, err, xerrors.ErrUnknownEventType)
	assert.Empty(t, repo.notifications)
	assert.Empty(t, email.sent)
}

func TestDispatchUnknownUserIsFatal(t *testing.T) {
	uc, repo, email, _, _ := newNotificationFixture()

	_, err := uc.Dispatch(context.Background(), "ghost", domain.EventNewEstimate, "t", "m", nil)
	assert.ErrorIs(t, err, xerrors.ErrUserNotFound)
	assert.Empty(t, repo.notifications)
	assert.Empty(t, email.sent)
}

func TestMarkAsReadAndList(t *testing.T) {
	uc, _, _, _, _ := newNotificationFixture()
	ctx := context.Background()

	n, err := uc.Dispatch(ctx, "user-1", domain.EventNewEstimate, "New estimate created", "Estimate ready.", nil)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.False(t, n.IsRead)

	read, err := uc.MarkAsRead(ctx, n.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	unread := false
	items, total, err := uc.ListNotifications(ctx, "user-1", &unread, 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}
