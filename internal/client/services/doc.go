// Package services holds the client's application state: the credential
// vault, the session with its preferences, the in-memory cache of Dharmas
// and Tasks, and the focus-list replenishment policy.
//
// Services call the remote API through client.Client and keep durable
// state in the metadata repository. None of them holds a lock across a
// network call.
package services
