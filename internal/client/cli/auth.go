package cli

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/scanpilot/internal/client/models"
	"github.com/dmitrijs2005/scanpilot/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPasswordMismatch = errors.New("passwords do not match")

func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

// askNewPassword reads a password twice. The caller wipes the result.
func (a *App) askNewPassword() ([]byte, error) {
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return nil, err
	}
	again, err := getPassword(a.out, "Repeat password")
	if err != nil {
		common.WipeByteArray(password)
		return nil, err
	}
	defer common.WipeByteArray(again)

	if subtle.ConstantTimeCompare(password, again) != 1 {
		common.WipeByteArray(password)
		return nil, errPasswordMismatch
	}
	return password, nil
}

// Register prompts for email, full name and password and creates the
// account. The user logs in afterwards.
func (a *App) Register(ctx context.Context) error {
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}
	fullName, err := a.ask("Full name (optional)")
	if err != nil {
		return err
	}

	password, err := a.askNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.authService.Register(ctx, email, password, fullName); err != nil {
		return err
	}

	a.setUser(nil)
	a.println("Account created. Type 'login' to sign in.")
	return nil
}

// Login prompts for credentials, authenticates and loads the profile.
func (a *App) Login(ctx context.Context) error {
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, email, password)
	if err != nil {
		a.setUser(nil)
		return err
	}

	a.setUser(u)
	a.println("Welcome,", u.DisplayName()+"!")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.setUser(nil)
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.authService.Profile(ctx)
	if err != nil {
		return err
	}
	a.setUser(u)

	a.printf("ID:         %s\n", u.ID)
	a.printf("Email:      %s\n", u.Email)
	a.printf("Name:       %s\n", orDash(u.FullName))
	a.printf("Member since %s\n", formatTime(u.CreatedAt))
	return nil
}

// Profile edits the profile. Empty answers keep the current value.
func (a *App) Profile(ctx context.Context) error {
	var req models.UpdateProfileRequest
	var err error

	if req.FullName, err = a.ask("New full name (empty to keep)"); err != nil {
		return err
	}
	if req.Email, err = a.ask("New email (empty to keep)"); err != nil {
		return err
	}

	if Confirm(a.reader, "Change password?", a.out) {
		password, err := a.askNewPassword()
		if err != nil {
			return err
		}
		defer common.WipeByteArray(password)
		req.Password = string(password)
	}

	u, err := a.authService.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	a.setUser(u)
	a.println("Profile updated.")
	return nil
}
