// Package common contains small helpers and constants shared by the client
// packages.
package common

// RequestIDHeaderName carries a per-request UUID on outbound HTTP calls so
// client logs can be correlated with backend logs.
const RequestIDHeaderName = "X-Request-ID"
