// Package models defines the OrionTask domain entities exchanged with the
// backend and held in the client-side caches.
package models

// User is the identity of an account as returned by the users endpoints.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// Profile is the authenticated user's own record (GET/PATCH /users/profile).
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	IsConfirmed bool      `json:"isConfirmed"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// UserSummary is the small subset of the user persisted next to the token.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// ProfileUpdate carries only the fields the user changed. Empty fields are
// omitted from the request body.
type ProfileUpdate struct {
	Name        string `json:"name,omitempty"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	NewPassword string `json:"newPassword,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == "" && p.Username == "" && p.Email == "" && p.NewPassword == ""
}

// Validate checks the fields that are set.
func (p ProfileUpdate) Validate() error {
	if p.Username != "" {
		if err := ValidateUsername(p.Username); err != nil {
			return err
		}
	}
	if p.Email != "" {
		if err := ValidateEmail(p.Email); err != nil {
			return err
		}
	}
	if p.NewPassword != "" {
		if err := ValidatePassword(p.NewPassword); err != nil {
			return err
		}
	}
	return nil
}
