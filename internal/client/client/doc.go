// Package client talks to the ScanPilot REST backend.
//
// # Overview
//
// The package provides:
//  1. The Client interface: auth (Register/Login/Logout), profile, uploads
//     (multipart upload, list, get, process, delete) and analysis results.
//  2. HTTPClient, the net/http implementation. It reads the bearer token from
//     a TokenStore on every request, attaches it to every non-auth endpoint,
//     and forces re-authentication on HTTP 401.
//  3. Local database bootstrap (InitDatabase, RunMigrations) for the SQLite
//     file holding the persisted session token.
//
// # Error Handling
//
// Failures are reported as sentinel errors matched with errors.Is:
// ErrUnauthenticated, ErrUnauthorized, ErrInvalidCredentials,
// ErrRequestFailed, ErrNetwork, ErrTimeout, ErrValidation. Non-2xx responses
// come back as *RequestError, which unwraps to ErrRequestFailed and carries
// the server's detail message.
//
// # Concurrency
//
// HTTPClient is safe for concurrent use. It holds no token of its own, so a
// logout caused by one request is seen by every request issued after it.
package client
