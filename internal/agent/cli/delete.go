package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
)

// Delete removes a report by its local key, from the server as well when the
// record was already synced.
func (a *App) Delete(ctx context.Context) error {
	key, err := a.readLocalKey("Enter report local key to delete")
	if err != nil {
		return err
	}

	if err := a.reports.Delete(ctx, key); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Deleted")
	return nil
}

// DeletePerson removes a contact by its local key.
func (a *App) DeletePerson(ctx context.Context) error {
	key, err := a.readLocalKey("Enter contact local key to delete")
	if err != nil {
		return err
	}

	if err := a.people.Delete(ctx, key); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Deleted")
	return nil
}

// Triage changes the triage status of a synced report on the server.
func (a *App) Triage(ctx context.Context) error {
	key, err := a.readLocalKey("Enter report local key")
	if err != nil {
		return err
	}

	status, err := getSimpleText(a.reader, "New status (Pendiente, En Proceso, Resuelto)", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.reports.SetStatus(ctx, key, status); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Status updated")
	return nil
}

func (a *App) readLocalKey(prompt string) (int64, error) {
	raw, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return 0, err
	}
	raw = trimKeyPrefix(raw)
	key, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("Invalid key: %q", raw)
		return 0, err
	}
	return key, nil
}

// trimKeyPrefix accepts keys entered as "#12" the way the listing prints them.
func trimKeyPrefix(s string) string {
	if len(s) > 0 && s[0] == '#' {
		return s[1:]
	}
	return s
}
