package models

import (
	"github.com/lqviet/vichat/pkg/chatapi"
)

// User is the authenticated account, fetched once after login and cached
// alongside the credential. Used for the greeting and as the user_id when
// creating sessions.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Greeting returns the display name, preferring the full name.
func (u *User) Greeting() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// UserFromAPI converts a wire user into the client's domain type.
func UserFromAPI(u chatapi.User) User {
	return User{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
	}
}
