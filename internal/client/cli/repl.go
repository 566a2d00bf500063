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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	LogSession(ctx context.Context) error
	AddJournal(ctx context.Context) error
	SetPreference(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Status(ctx context.Context) error
	Sync(ctx context.Context) error
	Cleanup(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the stillmind CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - session        — log a meditation session
//	  - journal        — add a journal entry
//	  - pref           — set a preference
//	  - list       	   — list records of a kind
//	  - show           — show a single record (interactive ID prompt)
//	  - status         — show sync status
//	  - sync           — synchronize with the backend
//	  - cleanup        — delete stale local data
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sm> %s > ", statusFn()))
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
				printlnFn("Available commands: session, journal, pref, (l)ist, show, status, sync, cleanup, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "session":
			_ = a.LogSession(ctx)

		case "journal":
			_ = a.AddJournal(ctx)

		case "pref":
			_ = a.SetPreference(ctx)

		case "show":
			_ = a.Show(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "status":
			_ = a.Status(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "cleanup":
			_ = a.Cleanup(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
