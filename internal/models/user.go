package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`

	// PasswordHash is never serialized in API responses.
	PasswordHash string `json:"-"`

	Phone       string    `json:"phone,omitempty"`
	Address     *Address  `json:"address,omitempty"`
	DateOfBirth time.Time `json:"dateOfBirth,omitzero"`
	Gender      string    `json:"gender,omitempty"`

	IsRegistered bool `json:"isRegistered"`
	IsActive     bool `json:"isActive"`

	RegistrationDate time.Time `json:"registrationDate,omitzero"`
	LastLoginDate    time.Time `json:"lastLoginDate,omitzero"`
	LastLoginIP      string    `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public returns a copy safe for API responses, with the order association
// trimmed to the fields the storefront needs.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	pub := *u
	pub.PasswordHash = ""
	return &pub
}
