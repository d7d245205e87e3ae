package models

import "time"

// Beds are not persisted: bed identity is the integer slot 1..Capacity,
// occupancy is derived from active allocations.
type Room struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	HostelID   uint      `json:"hostel_id" gorm:"not null;index"`
	Hostel     *Hostel   `json:"hostel,omitempty" gorm:"foreignKey:HostelID"`
	Block      string    `json:"block" gorm:"size:20;not null"`
	RoomNumber string    `json:"room_number" gorm:"size:20;not null"`
	Capacity   int       `json:"capacity" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
