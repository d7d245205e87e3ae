package models

import "time"

type Notice struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Message   string    `json:"message" gorm:"size:2000;not null"`
	CreatedAt time.Time `json:"created_at"`
}
