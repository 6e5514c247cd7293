// Package services contains application services for the ScanPilot client.
// They compose the API client, the session store and the upload controller
// into the operations the CLI exposes.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/scanpilot/internal/client/client"
	"github.com/dmitrijs2005/scanpilot/internal/client/models"
	"github.com/dmitrijs2005/scanpilot/internal/logging"
)

// Session reports whether a usable token is stored.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
}

// AuthService defines account operations for the CLI.
//
// Contract:
//   - Register: create an account; the caller logs in afterwards.
//   - Login: authenticate, then load the profile. If the profile cannot be
//     loaded the session is dropped again.
//   - Logout: clear the local session. Idempotent.
//   - UpdateProfile: send only the fields that are set.
type AuthService interface {
	Register(ctx context.Context, email string, password []byte, fullName string) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error)
}

type authService struct {
	client  client.Client
	session Session
	log     logging.Logger
}

func NewAuthService(c client.Client, s Session, log logging.Logger) AuthService {
	return &authService{client: c, session: s, log: log}
}

func (a *authService) Register(ctx context.Context, email string, password []byte, fullName string) (*models.User, error) {
	u, err := a.client.Register(ctx, models.RegisterRequest{
		Email:    strings.TrimSpace(email),
		Password: string(password),
		FullName: strings.TrimSpace(fullName),
	})
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	a.log.Info(ctx, "registered", "user_id", u.ID)
	return u, nil
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	if _, err := a.client.Login(ctx, strings.TrimSpace(email), string(password)); err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	u, err := a.client.GetProfile(ctx)
	if err != nil {
		a.log.Warn(ctx, "profile load after login failed, dropping session", "error", err)
		if lerr := a.client.Logout(ctx); lerr != nil {
			a.log.Error(ctx, "logout failed", "error", lerr)
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	a.log.Info(ctx, "logged in", "user_id", u.ID)
	return u, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.client.Logout(ctx)
}

func (a *authService) IsAuthenticated(ctx context.Context) bool {
	return a.session.IsAuthenticated(ctx)
}

func (a *authService) Profile(ctx context.Context) (*models.User, error) {
	return a.client.GetProfile(ctx)
}

func (a *authService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", client.ErrValidation)
	}

	u, err := a.client.UpdateProfile(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
