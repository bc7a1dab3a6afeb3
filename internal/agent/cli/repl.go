package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Capture(ctx context.Context) error
	AddPerson(ctx context.Context) error
	List(ctx context.Context) error
	People(ctx context.Context) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	Delete(ctx context.Context) error
	DeletePerson(ctx context.Context) error
	Triage(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the field agent console.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Capture never requires a login or a reachable server: records land in the
// local store and the sync engine ships them when it can.
//
// Commands:
//
//	help        — show available commands
//	login       — authenticate against the server
//	capture     — capture a new incident report
//	addperson   — capture a new community contact
//	list        — list reports (local pending first, then server page)
//	people      — list community contacts
//	sync        — request a sync pass now
//	status      — show connectivity and pending-queue state
//	delete      — delete a report by its local key
//	delperson   — delete a contact by its local key
//	triage      — change the triage status of a synced report
//	exit | quit — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fr> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: capture, addperson, (l)ist, people, sync, status, delete, delperson, triage, exit")
			} else {
				printlnFn("Available commands: login, capture, addperson, (l)ist, people, sync, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "capture":
			_ = a.Capture(ctx)

		case "addperson":
			_ = a.AddPerson(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "people":
			_ = a.People(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "status":
			_ = a.Status(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "delperson":
			_ = a.DeletePerson(ctx)

		case "triage":
			_ = a.Triage(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
