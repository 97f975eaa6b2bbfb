package model

import "time"

// User is a registered account. PasswordHash never leaves the service layer.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Fullname     string    `json:"fullname"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserSummary is the owner block embedded in item views.
type UserSummary struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// Summary projects the user onto its public summary.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Fullname: u.Fullname, Email: u.Email}
}
