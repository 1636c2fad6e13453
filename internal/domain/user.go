package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phoneNumber,omitempty"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	CompanyName  string     `json:"companyName,omitempty"`
	CompanyLogo  string     `json:"companyLogo,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}
