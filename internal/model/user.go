package model

import "time"

// User is a dashboard account provisioned on first OAuth login.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      *string    `json:"name"`
	AvatarURL *string    `json:"avatar_url"`
	Provider  string     `json:"provider"`
	Subject   string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login"`
}
