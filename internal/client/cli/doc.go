// Package cli provides the interactive ScanPilot command-line client.
//
// It wires configuration, the local session database, the API client, the
// upload lifecycle controller and the services into a REPL. A stored
// session is restored on start; a session the server rejects drops the REPL
// back to the logged-out commands with a notice.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command list.
package cli
