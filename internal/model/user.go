package model

import "time"

// User roles
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User is the profile record returned by the backend
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// FullName returns the display name
func (u User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin returns true if the user has the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Credentials is the login request payload
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterPayload is the account creation payload
type RegisterPayload struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// AuthResult is the login response: a session token plus the resolved profile
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterResult is the registration response
type RegisterResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Validate checks the credentials against the field rules
func (c Credentials) Validate() error {
	return validate.Struct(c)
}

// Validate checks the registration payload against the field rules
func (p RegisterPayload) Validate() error {
	return validate.Struct(p)
}
