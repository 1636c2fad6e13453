package usecase

import (
	"context"
	"errors"
	"strings"

	"crm-backend/internal/domain"
	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"
	"crm-backend/pkg/xerrors"

	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase struct {
	users  repository.UserRepository
	tokens *middleware.TokenManager
}

func NewAuthUsecase(users repository.UserRepository, tokens *middleware.TokenManager) *AuthUsecase {
	return &AuthUsecase{users: users, tokens: tokens}
}

type RegisterInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

func (uc *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" || in.Email == "" || len(in.Password) < 8 {
		return nil, "", xerrors.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user, err := uc.users.CreateUser(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := uc.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := uc.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, "", xerrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", xerrors.ErrInvalidCredentials
	}

	token, err := uc.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (uc *AuthUsecase) GetMe(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetUserByID(ctx, userID)
}

// ChangePassword verifies the current password before storing a new
// hash. A wrong current password reads as bad credentials, not input.
func (uc *AuthUsecase) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return xerrors.ErrInvalidInput
	}
	if len(next) < 8 {
		return xerrors.ErrInvalidInput
	}

	user, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return xerrors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return uc.users.UpdatePassword(ctx, userID, string(hash))
}

func (uc *AuthUsecase) UpdateCompanyInfo(ctx context.Context, userID, companyName, companyLogo string) (*domain.User, error) {
	if companyName == "" && companyLogo == "" {
		return nil, xerrors.ErrInvalidInput
	}
	if err := uc.users.UpdateCompanyInfo(ctx, userID, companyName, companyLogo); err != nil {
		return nil, err
	}
	return uc.users.GetUserByID(ctx, userID)
}

// ListUsers backs the admin directory. Password hashes never leave the
// domain type's JSON encoding, so the slice is returned as-is.
func (uc *AuthUsecase) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return uc.users.ListUsers(ctx)
}

// DeleteAccount removes the caller's own account and, through the
// schema's cascades, everything they own.
func (uc *AuthUsecase) DeleteAccount(ctx context.Context, userID string) error {
	return uc.users.DeleteUser(ctx, userID)
}

func (uc *AuthUsecase) UpdateMe(ctx context.Context, userID, name, phone string) (*domain.User, error) {
	user, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		user.Name = name
	}
	if phone != "" {
		user.PhoneNumber = phone
	}
	if err := uc.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
