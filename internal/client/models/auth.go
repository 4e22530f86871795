package models

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignupRequest) Validate() error {
	if n := len([]rune(r.Name)); n < 3 || n > 50 {
		return newValidationError("name", "must be between 3 and 50 characters")
	}
	if err := ValidateUsername(r.Username); err != nil {
		return err
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	return ValidatePassword(r.Password)
}

// LoginRequest is the body of POST /auth/login. Login is a username or email.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if r.Login == "" {
		return newValidationError("login", "is required")
	}
	if len(r.Password) < 8 {
		return newValidationError("password", "must be at least 8 characters")
	}
	return nil
}

// AuthResponse is returned by both signup and login.
type AuthResponse struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Summary returns the user part of the response.
func (a AuthResponse) Summary() UserSummary {
	return UserSummary{ID: a.ID, Username: a.Username, Name: a.Name}
}
