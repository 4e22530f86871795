// Package metadata is the client's durable key-value store. Each session
// preference and credential lives under its own key and is read and
// written independently.
package metadata

import (
	"context"
)

// Key names one durable value.
type Key string

const (
	KeyAuthToken        Key = "auth_token" // sealed by the credential vault
	KeyAuthUser         Key = "auth_user"  // JSON user summary
	KeyUserID           Key = "user_id"
	KeyTheme            Key = "theme"
	KeyShowHidden       Key = "show_hidden"
	KeySidebarCollapsed Key = "sidebar_collapsed"
	KeyVaultSalt        Key = "vault_salt"
)

// Repository stores opaque values by key. Get returns (nil, nil) when the
// key is absent; deleting an absent key is not an error.
type Repository interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, keys ...Key) error
}
