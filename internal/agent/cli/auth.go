package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/fieldreport/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates against the server. The
// session token is held by the API client; capture works without it, but the
// server rejects unauthenticated submissions, so pending records wait until
// a login succeeds.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.api.Login(ctx, userName, string(password))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnavailable):
			log.Printf("Server unavailable, captures will be kept locally until it is back")
		case errors.Is(err, common.ErrorUnauthorized):
			log.Printf("Invalid username or password")
		default:
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	a.userName = user.Username
	fmt.Printf("Welcome, %s (%s)\n", user.Name, user.Role)
	a.engine.TriggerSync()
	return nil
}
