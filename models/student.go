package models

import "time"

type Student struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User          *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	HostelID      uint      `json:"hostel_id" gorm:"not null;index"`
	Hostel        *Hostel   `json:"hostel,omitempty" gorm:"foreignKey:HostelID"`
	RollNo        string    `json:"roll_no" gorm:"size:30;not null"`
	Phone         string    `json:"phone" gorm:"size:20"`
	GuardianName  string    `json:"guardian_name" gorm:"size:120"`
	GuardianPhone string    `json:"guardian_phone" gorm:"size:20"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
