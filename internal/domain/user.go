package domain

import "time"

type UserId = string

// User is the authenticated caller extracted from a JWT.
// Identity is issued externally; the service only verifies tokens.
type User struct {
	Id    UserId
	Name  string
	Email string
	Admin bool
}

// Account is the stored user profile shown in the admin panel.
type Account struct {
	Uid       UserId    `json:"uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Location  string    `json:"location,omitempty"`
	Company   string    `json:"company,omitempty"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"createdAt"`
}
