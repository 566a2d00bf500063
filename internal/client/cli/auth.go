package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/stillmind/stillmind/internal/client/client"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email and password and attempts to create
// a new account via the AuthService.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.authService.Register(ctx, email, string(password)); err != nil {
		log.Printf("Registration failed: %s", err.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts the user for credentials and tries to authenticate.
//
// The method first attempts an online login. If the server is unavailable
// (errors.Is(err, client.ErrUnavailable)), it falls back to restoring the
// locally cached session, so the mirror stays usable offline. The final
// connectivity state ends up in App.Mode:
//   - ModeOnline if online login succeeds,
//   - ModeOffline if only the cached session could be restored,
//   - ModeDisabled if both fail.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	var (
		ownerId string
		mode    Mode
	)

	ownerId, err = a.authService.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			log.Printf("Server unavailable, trying cached session...")
			ownerId, err = a.authService.RestoreSession(ctx)
			if err != nil {
				log.Printf("Offline login unsuccessfull: %s", err.Error())
				mode = ModeDisabled
			} else {
				log.Printf("Offline login successfull")
				mode = ModeOffline
			}
		} else {
			log.Printf("Login unsuccessfull: %s", err.Error())
		}
	} else {
		log.Printf("Login successfull")
		mode = ModeOnline
	}

	a.ownerId = ownerId
	a.syncService.SetOwner(ownerId)
	a.setMode(mode)
	return nil
}

// Logout drops the cached session and forgets the active owner. Mirror data
// stays on disk.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.ownerId = ""
	a.syncService.SetOwner("")
	return nil
}
