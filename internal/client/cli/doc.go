// Package cli provides the interactive stillmind command-line client.
//
// It wires configuration, the local mirror database, backend services and an
// interactive REPL that supports online/offline operation. Typical flow:
// prompt for credentials (with offline session restore as fallback), start a
// background connectivity watcher, and execute user commands.
//
// Key features:
//   - Register / Login / Logout (online with offline fallback)
//   - Log meditation sessions, journal entries and preferences
//   - List / Show records, inspect sync status
//   - Sync with the backend, clean up stale local data
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
