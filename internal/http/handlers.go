package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/middleware/authn"
	"spendwise/internal/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) error {
	return OK(envelope{"status": "ok", "time": time.Now().UTC()}).Write(w)
}

type (
	registerRequest struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	profileRequest struct {
		Name          *string             `json:"name"`
		AvatarColor   *string             `json:"avatarColor"`
		MonthlyBudget *decimal.Decimal    `json:"monthlyBudget"`
		Preferences   *preferencesRequest `json:"preferences"`
	}

	// preferencesRequest is merged into the stored preferences; absent
	// fields keep their value.
	preferencesRequest struct {
		Currency      *string `json:"currency"`
		Notifications *struct {
			Email *bool `json:"email"`
			Push  *bool `json:"push"`
		} `json:"notifications"`
	}

	passwordRequest struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
)

func (p *preferencesRequest) merge(cur core.Preferences) core.Preferences {
	if p.Currency != nil {
		cur.Currency = sanitizeInput(*p.Currency)
	}
	if n := p.Notifications; n != nil {
		if n.Email != nil {
			cur.Notifications.Email = *n.Email
		}
		if n.Push != nil {
			cur.Notifications.Push = *n.Push
		}
	}
	return cur
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	sess, err := s.svc.Accounts.Register(r.Context(), services.RegisterInput{
		Name:     sanitizeInput(req.Name),
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return Created(sess).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	email, err := requireString("email", req.Email)
	if err != nil {
		return err
	}
	if req.Password == "" {
		return requiredErr("password")
	}
	sess, err := s.svc.Accounts.Login(r.Context(), email, req.Password)
	if err != nil {
		return err
	}
	return OK(sess).Write(w)
}

// handleGetProfile runs behind RequireAuth, so the user id is always set.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) error {
	u, err := s.svc.Accounts.Profile(r.Context(), authn.UserID(r.Context()))
	if err != nil {
		return err
	}
	return OK(envelope{"user": u}).Write(w)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) error {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	ctx := r.Context()
	userID := authn.UserID(ctx)

	update := services.ProfileUpdate{
		Name:          sanitizePtr(req.Name),
		AvatarColor:   sanitizePtr(req.AvatarColor),
		MonthlyBudget: req.MonthlyBudget,
	}
	if req.Preferences != nil {
		cur, err := s.svc.Accounts.Profile(ctx, userID)
		if err != nil {
			return err
		}
		prefs := req.Preferences.merge(cur.Preferences)
		update.Preferences = &prefs
	}

	u, err := s.svc.Accounts.UpdateProfile(ctx, userID, update)
	if err != nil {
		return err
	}
	return OK(envelope{"user": u}).Write(w)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) error {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.CurrentPassword == "" {
		return requiredErr("currentPassword")
	}
	ctx := r.Context()
	if err := s.svc.Accounts.ChangePassword(ctx, authn.UserID(ctx), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return OK(envelope{"message": "Password updated"}).Write(w)
}
