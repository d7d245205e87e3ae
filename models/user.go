package models

import "time"

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"size:120;not null"`
	Email         string    `json:"email" gorm:"uniqueIndex;size:120;not null"`
	Password      string    `json:"-" gorm:"not null"`            // bcrypt hash
	Role          string    `json:"role" gorm:"size:20;not null"` // "admin" | "student"
	Active        bool      `json:"active" gorm:"not null;default:true"`
	EmailVerified bool      `json:"email_verified" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
