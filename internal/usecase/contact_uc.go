package usecase

import (
	"context"

	"crm-backend/internal/domain"
	"crm-backend/internal/repository"
	"crm-backend/pkg/xerrors"
)

type ContactUsecase struct {
	contacts repository.ContactRepository
}

func NewContactUsecase(contacts repository.ContactRepository) *ContactUsecase {
	return &ContactUsecase{contacts: contacts}
}

type ContactInput struct {
	// ForUserID lets an admin create on behalf of another user. Resolved
	// at the handler boundary, ignored here.
	ForUserID string `json:"userId,omitempty"`

	Name        string               `json:"name"`
	Email       string               `json:"email"`
	PhoneNumber string               `json:"phoneNumber"`
	Address     string               `json:"address"`
	Status      domain.ContactStatus `json:"status"`
}

func (uc *ContactUsecase) Create(ctx context.Context, ownerID string, in ContactInput) (*domain.Contact, error) {
	if in.Name == "" {
		return nil, xerrors.ErrInvalidInput
	}
	if in.Status != "" && !domain.ValidContactStatus(in.Status) {
		return nil, xerrors.ErrInvalidInput
	}
	return uc.contacts.CreateContact(ctx, &domain.Contact{
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		Status:      in.Status,
		CreatedBy:   ownerID,
	})
}

func (uc *ContactUsecase) Get(ctx context.Context, id, ownerID string) (*domain.Contact, error) {
	return uc.contacts.GetContact(ctx, id, ownerID)
}

func (uc *ContactUsecase) List(ctx context.Context, ownerID string, status *domain.ContactStatus, limit, offset int) ([]*domain.Contact, int, error) {
	if status != nil && !domain.ValidContactStatus(*status) {
		return nil, 0, xerrors.ErrInvalidInput
	}
	total, err := uc.contacts.CountContacts(ctx, ownerID, status)
	if err != nil {
		return nil, 0, err
	}
	items, err := uc.contacts.ListContacts(ctx, ownerID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (uc *ContactUsecase) Update(ctx context.Context, id, ownerID string, in ContactInput) (*domain.Contact, error) {
	contact, err := uc.contacts.GetContact(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		contact.Name = in.Name
	}
	if in.Email != "" {
		contact.Email = in.Email
	}
	if in.PhoneNumber != "" {
		contact.PhoneNumber = in.PhoneNumber
	}
	if in.Address != "" {
		contact.Address = in.Address
	}
	if in.Status != "" {
		if !domain.ValidContactStatus(in.Status) {
			return nil, xerrors.ErrInvalidInput
		}
		contact.Status = in.Status
	}
	if err := uc.contacts.UpdateContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (uc *ContactUsecase) Delete(ctx context.Context, id, ownerID string) error {
	return uc.contacts.DeleteContact(ctx, id, ownerID)
}

// AddTags appends the given tags, skipping any the contact already has.
func (uc *ContactUsecase) AddTags(ctx context.Context, id, ownerID string, tags []string) (*domain.Contact, error) {
	if len(tags) == 0 {
		return nil, xerrors.ErrInvalidInput
	}
	contact, err := uc.contacts.GetContact(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(contact.Tags))
	for _, t := range contact.Tags {
		seen[t] = struct{}{}
	}
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		contact.Tags = append(contact.Tags, t)
	}

	if err := uc.contacts.UpdateContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (uc *ContactUsecase) RemoveTags(ctx context.Context, id, ownerID string, tags []string) (*domain.Contact, error) {
	if len(tags) == 0 {
		return nil, xerrors.ErrInvalidInput
	}
	contact, err := uc.contacts.GetContact(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	drop := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		drop[t] = struct{}{}
	}
	kept := contact.Tags[:0]
	for _, t := range contact.Tags {
		if _, ok := drop[t]; !ok {
			kept = append(kept, t)
		}
	}
	contact.Tags = kept

	if err := uc.contacts.UpdateContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// UpdatePipelineStage sets the sales-funnel label. The stage is free
// text; an empty stage clears it.
func (uc *ContactUsecase) UpdatePipelineStage(ctx context.Context, id, ownerID, stage string) (*domain.Contact, error) {
	contact, err := uc.contacts.GetContact(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	contact.PipelineStage = stage
	if err := uc.contacts.UpdateContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}
