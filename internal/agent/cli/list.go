package cli

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dmitrijs2005/fieldreport/internal/agent/models"
)

// List prints the merged report list: local pending records first, then the
// first server page with locally known records suppressed.
func (a *App) List(ctx context.Context) error {
	merged, err := a.reports.ListMerged(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	for _, r := range merged.Items {
		fmt.Printf("%s %s  %s — %s / %s  %s\n",
			stateMark(r.SyncState), displayKey(r.LocalKey, r.RemoteID),
			r.NeedType, r.Municipality, r.Community,
			r.CapturedAt.Format("2006-01-02 15:04"))
		if r.SyncState == models.SyncStateRejected && r.LastError != "" {
			fmt.Printf("      rejected: %s\n", r.LastError)
		}
	}
	fmt.Printf("Total: %d\n", merged.Total)
	return nil
}

// People prints the merged contact list.
func (a *App) People(ctx context.Context) error {
	merged, err := a.people.ListMerged(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	for _, p := range merged.Items {
		fmt.Printf("%s %s  %s — %s  %s %s\n",
			stateMark(p.SyncState), displayKey(p.LocalKey, p.RemoteID),
			p.Name, p.Role, p.Phone, p.Community)
	}
	fmt.Printf("Total: %d\n", merged.Total)
	return nil
}

// Sync requests a sync pass. The engine drops the request if a pass is
// already running or the server is unreachable.
func (a *App) Sync(ctx context.Context) error {
	a.engine.TriggerSync()
	fmt.Println("Sync requested")
	return nil
}

// Status prints the connectivity and pending-queue indicators.
func (a *App) Status(ctx context.Context) error {
	s := a.status.Snapshot()

	mode := "offline"
	if s.IsOnline {
		mode = "online"
	}
	fmt.Printf("Mode:        %s\n", mode)
	fmt.Printf("Pending:     %d\n", s.PendingCount)
	fmt.Printf("Syncing:     %v\n", s.IsSyncing)
	if !s.LastSyncAt.IsZero() {
		fmt.Printf("Last sync:   %s\n", s.LastSyncAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// getStatus renders the prompt segment, e.g. "(maria online, 2 pending)".
func (a *App) getStatus() string {
	s := a.status.Snapshot()

	var parts []string
	if a.userName != "" {
		parts = append(parts, a.userName)
	}
	if s.IsOnline {
		parts = append(parts, "online")
	} else {
		parts = append(parts, "offline")
	}
	if s.PendingCount > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", s.PendingCount))
	}
	if s.IsSyncing {
		parts = append(parts, "syncing")
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func stateMark(s models.SyncState) string {
	switch s {
	case models.SyncStateSynced:
		return "[✓]"
	case models.SyncStateRejected:
		return "[!]"
	default:
		return "[…]"
	}
}

func displayKey(localKey int64, remoteID string) string {
	if localKey != 0 {
		return fmt.Sprintf("#%d", localKey)
	}
	return remoteID
}
