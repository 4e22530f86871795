// Package cli provides the interactive OrionTask command-line client.
//
// It wires configuration, the local SQLite store, the REST client and the
// session and cache services, then runs a read-eval-print loop over them.
// Typical flow: restore the previous session from disk, log in if needed,
// manage Dharmas and their Tasks, and use "agora" to top up the NOW list.
//
// The cobra command tree is built by NewRootCommand; the REPL itself is
// runREPL, driven by App.Run.
package cli
