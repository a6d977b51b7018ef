package core

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultAvatarColor = "#8b5cf6"
	DefaultCurrency    = "USD"

	MinPasswordLength = 6
)

var avatarColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type (
	NotificationPreferences struct {
		Email bool `json:"email"`
		Push  bool `json:"push"`
	}

	Preferences struct {
		Currency      string                  `json:"currency"`
		Notifications NotificationPreferences `json:"notifications"`
	}

	// User never serializes its password hash.
	User struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		Email         string          `json:"email"`
		PasswordHash  string          `json:"-"`
		AvatarColor   string          `json:"avatarColor"`
		MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
		Preferences   Preferences     `json:"preferences"`
		CreatedAt     time.Time       `json:"createdAt"`
		UpdatedAt     time.Time       `json:"updatedAt"`
	}
)

// DefaultPreferences are applied to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{
		Currency:      DefaultCurrency,
		Notifications: NotificationPreferences{Email: true, Push: false},
	}
}

// NormalizeEmail lowercases and trims an address and checks its syntax.
func NormalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", Validationf("email is invalid")
	}
	return s, nil
}

func ValidAvatarColor(s string) bool {
	return avatarColorPattern.MatchString(s)
}

func (u User) Validate() error {
	if len(strings.TrimSpace(u.Name)) < 2 {
		return Validationf("name must be at least 2 characters")
	}
	if u.Email == "" {
		return Validationf("email is required")
	}
	if !ValidAvatarColor(u.AvatarColor) {
		return Validationf("avatarColor must be a hex color like #8b5cf6")
	}
	if u.MonthlyBudget.IsNegative() {
		return Validationf("monthlyBudget cannot be negative")
	}
	if err := ValidateAmount("monthlyBudget", u.MonthlyBudget); err != nil {
		return err
	}
	if len(u.Preferences.Currency) != 3 {
		return Validationf("preferences.currency must be a 3-letter code")
	}
	return nil
}
