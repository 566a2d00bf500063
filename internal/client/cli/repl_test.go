package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) LogSession(ctx context.Context) error {
	f.calls = append(f.calls, "session")
	return nil
}
func (f *fakeExec) AddJournal(ctx context.Context) error {
	f.calls = append(f.calls, "journal")
	return nil
}
func (f *fakeExec) SetPreference(ctx context.Context) error {
	f.calls = append(f.calls, "pref")
	return nil
}
func (f *fakeExec) List(ctx context.Context) error { f.calls = append(f.calls, "list"); return nil }
func (f *fakeExec) Show(ctx context.Context) error { f.calls = append(f.calls, "show"); return nil }
func (f *fakeExec) Status(ctx context.Context) error {
	f.calls = append(f.calls, "status")
	return nil
}
func (f *fakeExec) Sync(ctx context.Context) error { f.calls = append(f.calls, "sync"); return nil }
func (f *fakeExec) Cleanup(ctx context.Context) error {
	f.calls = append(f.calls, "cleanup")
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"session",
		"journal",
		"list",
		"status",
		"sync",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"login", "session", "journal", "list", "status", "sync"}
	if len(exec.calls) < len(wantOrder) {
		t.Fatalf("few calls: %+v", exec.calls)
	}
	idx := 0
	for _, c := range exec.calls {
		if idx < len(wantOrder) && c == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", exec.calls, wantOrder)
	}
}

func TestRunREPL_EOFStopsLoop(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("\n\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
