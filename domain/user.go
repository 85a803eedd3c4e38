package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleDeveloper Role = "developer"
	RoleClient    Role = "client"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleDeveloper, RoleClient:
		return r, nil
	}
	return "", Invalid("role must be one of: developer, client")
}

type User struct {
	ID           uint    `gorm:"primaryKey"`
	Name         string  `gorm:"size:100;not null"`
	FirstName    string  `gorm:"size:50"`
	LastName     string  `gorm:"size:50"`
	Email        string  `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string  `gorm:"size:255;not null"`
	Role         Role    `gorm:"size:20;not null;default:'developer'"`
	Bio          *string `gorm:"type:text"`
	Company      *string `gorm:"size:120"`
	Position     *string `gorm:"size:120"`
	Phone        *string `gorm:"size:30"`

	Skills       []Skill       `gorm:"many2many:user_skills;constraint:OnDelete:CASCADE"`
	PostedJobs   []Job         `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Applications []Application `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName prefers the stored name and falls back to first and last name.
func (u *User) DisplayName() string {
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// SplitName fills first/last name from a single display name when they are empty.
func (u *User) SplitName() {
	if u.FirstName != "" || u.LastName != "" {
		return
	}
	parts := strings.Fields(u.Name)
	if len(parts) == 0 {
		return
	}
	u.FirstName = parts[0]
	if len(parts) > 1 {
		u.LastName = strings.Join(parts[1:], " ")
	}
}
