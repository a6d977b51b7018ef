package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"spendwise/internal/auth"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store"
)

type (
	RegisterInput struct {
		Name     string
		Email    string
		Password string
	}

	// ProfileUpdate is a partial update of the editable profile fields.
	ProfileUpdate struct {
		Name          *string
		AvatarColor   *string
		MonthlyBudget *decimal.Decimal
		Preferences   *core.Preferences
	}

	// Session is returned on register and login.
	Session struct {
		Token string    `json:"token"`
		User  core.User `json:"user"`
	}
)

type AccountService struct {
	users  store.UserStore
	tokens *auth.JWTManager
	logger *log.Logger
	clock  clock
}

func NewAccountService(users store.UserStore, tokens *auth.JWTManager, logger *log.Logger) *AccountService {
	if logger == nil {
		logger = log.Discard()
	}
	return &AccountService{users: users, tokens: tokens, logger: logger.WithComponent(log.ComponentAccount)}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email, err := core.NormalizeEmail(in.Email)
	if err != nil {
		return Session{}, err
	}
	if len(in.Password) < core.MinPasswordLength {
		return Session{}, core.Validationf("password must be at least %d characters", core.MinPasswordLength)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}

	now := s.clock.now()
	u := core.User{
		ID:            newID(),
		Name:          strings.TrimSpace(in.Name),
		Email:         email,
		PasswordHash:  hash,
		AvatarColor:   core.DefaultAvatarColor,
		MonthlyBudget: decimal.Zero,
		Preferences:   core.DefaultPreferences(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := u.Validate(); err != nil {
		return Session{}, err
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return Session{}, core.Validationf("User already exists")
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, u.ID)
	return s.session(u)
}

// Login answers Unauthorized for an unknown email and a wrong password alike.
func (s *AccountService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, core.Unauthorizedf("Invalid credentials")
	}
	if err != nil {
		return Session{}, fmt.Errorf("get user: %w", err)
	}

	if err := auth.ComparePassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return Session{}, core.Unauthorizedf("Invalid credentials")
		}
		return Session{}, err
	}
	return s.session(u)
}

func (s *AccountService) session(u core.User) (Session, error) {
	token, err := s.tokens.Generate(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: u}, nil
}

// Profile returns the user behind an authenticated request.
func (s *AccountService) Profile(ctx context.Context, userID string) (core.User, error) {
	if userID == "" {
		return core.User{}, core.Unauthorizedf("Not authorized")
	}
	u, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		// The token outlived its account.
		return core.User{}, core.Unauthorizedf("Not authorized")
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (core.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.AvatarColor != nil {
		u.AvatarColor = *in.AvatarColor
	}
	if in.MonthlyBudget != nil {
		u.MonthlyBudget = *in.MonthlyBudget
	}
	if in.Preferences != nil {
		u.Preferences = *in.Preferences
		u.Preferences.Currency = strings.ToUpper(u.Preferences.Currency)
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	u.UpdatedAt = s.clock.now()

	if err := s.users.UpdateUser(ctx, u); err != nil {
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// ChangePassword rejects a wrong current password as a validation error.
func (s *AccountService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if len(next) < core.MinPasswordLength {
		return core.Validationf("newPassword must be at least %d characters", core.MinPasswordLength)
	}
	if err := auth.ComparePassword(u.PasswordHash, current); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return core.Validationf("Current password incorrect")
		}
		return err
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.clock.now()
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.logger.InfoContext(ctx, "Password changed", log.FieldUserID, u.ID)
	return nil
}
