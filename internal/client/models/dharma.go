package models

// MaxDharmasPerUser is the number of Dharmas a single user may own.
const MaxDharmasPerUser = 8

// Dharma is a user-defined life-area grouping tasks.
type Dharma struct {
	ID          int64     `json:"id"`
	User        *User     `json:"user,omitempty"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Color       string    `json:"color"`
	Hidden      bool      `json:"hidden"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// DharmaInput is the body of create and edit requests.
type DharmaInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

func (d DharmaInput) Validate() error {
	if d.Name == "" {
		return newValidationError("name", "is required")
	}
	if d.Color != "" && !hexColor.MatchString(d.Color) {
		return newValidationError("color", "must be a hex colour like #A1B2C3")
	}
	return nil
}
