// Package client contains the client-side building blocks that talk to the
// OrionTask backend.
//
// # Overview
//
// The package provides:
//  1. The Client interface: one method per backend operation (auth, users,
//     dharmas, tasks).
//  2. HTTPClient, a REST/JSON implementation rooted at a fixed base URL
//     (e.g. http://localhost:8080/api/v1). It attaches a bearer token from
//     Credentials, stamps every request with an X-Request-ID and normalizes
//     failures into *APIError.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Every HTTP or transport failure is an *APIError{Message, Status}. Callers
// match conditions with errors.Is: ErrUnauthorized, ErrForbidden,
// ErrNotFound, ErrConflict, ErrServer and ErrUnavailable (no response at
// all, reported with status 503). A 2xx body that does not decode is a
// *ParseError matching ErrMalformedResponse.
//
// A 401 has a side effect beyond the returned error: the stored credentials
// are cleared and the OnUnauthorized hook runs so the application can send
// the user back to login.
//
// There are no retries and no client-side timeouts; cancel through ctx.
package client
