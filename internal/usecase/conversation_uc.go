package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"crm-backend/internal/domain"
	"crm-backend/internal/repository"
	"crm-backend/pkg/logger"
	"crm-backend/pkg/notifier"
	"crm-backend/pkg/webhook"
	"crm-backend/pkg/xerrors"

	"go.uber.org/zap"
)

type ConversationUsecase struct {
	messages  repository.MessageRepository
	contacts  repository.ContactRepository
	estimates repository.EstimateRepository
	users     repository.UserRepository
	hub       notifier.Broadcaster
	webhook   *webhook.Client
}

func NewConversationUsecase(
	messages repository.MessageRepository,
	contacts repository.ContactRepository,
	estimates repository.EstimateRepository,
	users repository.UserRepository,
	hub notifier.Broadcaster,
	wh *webhook.Client,
) *ConversationUsecase {
	return &ConversationUsecase{
		messages:  messages,
		contacts:  contacts,
		estimates: estimates,
		users:     users,
		hub:       hub,
		webhook:   wh,
	}
}

// InboundMessage is the payload delivered by the AI automation webhook.
type InboundMessage struct {
	Message    string  `json:"message"`
	ContactID  string  `json:"contactId"`
	EstimateID *string `json:"estimateId,omitempty"`
	UserID     string  `json:"userId"`
}

// SaveInbound validates and persists a message from the AI agent, then
// pushes it to connected sessions. Callers at the webhook boundary must
// acknowledge receipt regardless of the returned error; the error exists
// only for the server-side log.
func (uc *ConversationUsecase) SaveInbound(ctx context.Context, in InboundMessage) (*domain.AIMessage, error) {
	if in.Message == "" || in.ContactID == "" || in.UserID == "" {
		return nil, fmt.Errorf("%w: message, contactId and userId are required", xerrors.ErrInvalidInput)
	}

	if _, err := uc.users.GetUserByID(ctx, in.UserID); err != nil {
		return nil, fmt.Errorf("inbound message for unknown user %s: %w", in.UserID, err)
	}

	if _, err := uc.contacts.GetContact(ctx, in.ContactID, in.UserID); err != nil {
		return nil, fmt.Errorf("inbound message for contact %s: %w", in.ContactID, err)
	}

	if in.EstimateID != nil {
		estimate, err := uc.estimates.GetEstimate(ctx, *in.EstimateID, in.UserID)
		if err != nil {
			return nil, fmt.Errorf("inbound message for estimate %s: %w", *in.EstimateID, err)
		}
		if estimate.ClientID != in.ContactID {
			return nil, fmt.Errorf("inbound message estimate %s: %w", *in.EstimateID, xerrors.ErrEstimateContactMismatch)
		}
	}

	saved, err := uc.messages.InsertMessage(ctx, &domain.AIMessage{
		Message:    in.Message,
		SenderType: domain.SenderAI,
		UserID:     in.UserID,
		ContactID:  &in.ContactID,
		EstimateID: in.EstimateID,
	})
	if err != nil {
		return nil, err
	}

	uc.hub.Publish(domain.WSEvent{Type: "newMessage", Data: saved})
	return saved, nil
}

// Reply persists a user's message and forwards it to the AI automation
// workflow. The persisted message survives a forwarding failure; that case
// is reported as ErrForwardingFailed with the message still returned.
// forwarded is false when the webhook is not configured.
func (uc *ConversationUsecase) Reply(ctx context.Context, userID, contactID string, estimateID *string, message string) (msg *domain.AIMessage, forwarded bool, err error) {
	if message == "" || contactID == "" {
		return nil, false, xerrors.ErrInvalidInput
	}

	if _, err := uc.contacts.GetContact(ctx, contactID, userID); err != nil {
		return nil, false, err
	}

	if estimateID != nil {
		estimate, err := uc.estimates.GetEstimate(ctx, *estimateID, userID)
		if err != nil {
			return nil, false, err
		}
		if estimate.ClientID != contactID {
			return nil, false, xerrors.ErrEstimateNotFound
		}
	}

	saved, err := uc.messages.InsertMessage(ctx, &domain.AIMessage{
		Message:    message,
		SenderType: domain.SenderUser,
		UserID:     userID,
		ContactID:  &contactID,
		EstimateID: estimateID,
	})
	if err != nil {
		return nil, false, err
	}

	if !uc.webhook.Configured() {
		logger.L().Warn("reply webhook not configured, skipping AI response trigger",
			zap.String("userID", userID), zap.String("contactID", contactID))
		return saved, false, nil
	}

	err = uc.webhook.ForwardReply(ctx, webhook.ReplyPayload{
		UserID:     userID,
		ContactID:  contactID,
		EstimateID: estimateID,
		Message:    message,
	})
	if err != nil {
		logger.L().Error("failed to trigger AI reply webhook",
			zap.String("contactID", contactID), zap.Error(err))
		return saved, false, xerrors.ErrForwardingFailed
	}

	logger.L().Info("triggered AI reply webhook", zap.String("contactID", contactID))
	return saved, true, nil
}

// History returns one thread's messages oldest first. Exactly one of
// contactID/estimateID selects the thread; when the estimate is given, its
// owning contact becomes the authoritative filter, so a mismatched caller
// cannot read across threads.
func (uc *ConversationUsecase) History(ctx context.Context, userID string, contactID, estimateID *string) ([]*domain.AIMessage, error) {
	switch {
	case contactID != nil && estimateID == nil:
		if _, err := uc.contacts.GetContact(ctx, *contactID, userID); err != nil {
			return nil, err
		}
		return uc.messages.ListThreadMessages(ctx, userID, *contactID, nil)

	case estimateID != nil && contactID == nil:
		estimate, err := uc.estimates.GetEstimate(ctx, *estimateID, userID)
		if err != nil {
			return nil, err
		}
		return uc.messages.ListThreadMessages(ctx, userID, estimate.ClientID, estimateID)

	default:
		return nil, xerrors.ErrInvalidInput
	}
}

// ClearHistory removes every message owned by the user. Deliberately
// unscoped: a hard reset, not a filtered delete.
func (uc *ConversationUsecase) ClearHistory(ctx context.Context, userID string) error {
	return uc.messages.DeleteAllMessages(ctx, userID)
}

// ListThreads derives the user's conversation threads from the message
// log: one thread per distinct (contact, estimate) pair, carrying its
// latest message, ordered by most recent activity. Threads whose related
// entities are missing or inconsistent are dropped rather than surfaced.
func (uc *ConversationUsecase) ListThreads(ctx context.Context, userID string) ([]*domain.ConversationThread, error) {
	keys, err := uc.messages.DistinctThreadKeys(ctx, userID)
	if err != nil {
		return nil, err
	}

	threads := make([]*domain.ConversationThread, 0, len(keys))
	for _, key := range keys {
		if key.ContactID == nil {
			// Impossible while the store invariant holds, but an
			// inconsistent row must not take the listing down.
			if key.EstimateID != nil {
				logger.L().Warn("message with estimate but no contact, skipping thread",
					zap.String("userID", userID), zap.String("estimateID", *key.EstimateID))
			}
			continue
		}

		last, err := uc.messages.LatestThreadMessage(ctx, userID, key)
		if err != nil {
			return nil, err
		}
		if last == nil {
			continue
		}

		thread := &domain.ConversationThread{
			ContactID:   *key.ContactID,
			EstimateID:  key.EstimateID,
			LastMessage: last,
		}

		if key.EstimateID != nil {
			estimate, err := uc.estimates.GetEstimate(ctx, *key.EstimateID, userID)
			if err != nil || estimate.ClientID != *key.ContactID {
				// Orphaned or mismatched estimate: drop the thread.
				continue
			}
			thread.EstimateLeadName = estimate.LeadName
		} else {
			contact, err := uc.contacts.GetContact(ctx, *key.ContactID, userID)
			if err != nil {
				continue
			}
			thread.ContactName = contact.Name
		}

		threads = append(threads, thread)
	}

	sort.Slice(threads, func(i, j int) bool {
		return threads[i].LastMessage.CreatedAt.After(threads[j].LastMessage.CreatedAt)
	})
	return threads, nil
}

// IsRejectable reports whether an inbound-webhook error is a data problem
// (as opposed to an infrastructure failure). Both are acknowledged at the
// boundary; the distinction only affects log labelling.
func IsRejectable(err error) bool {
	return errors.Is(err, xerrors.ErrInvalidInput) ||
		errors.Is(err, xerrors.ErrUserNotFound) ||
		errors.Is(err, xerrors.ErrContactNotFound) ||
		errors.Is(err, xerrors.ErrEstimateNotFound) ||
		errors.Is(err, xerrors.ErrEstimateContactMismatch)
}
