package models

import "time"

// Allocation is a (student, room, bed) assignment. At most one active
// allocation per student and per (room, bed) at any time; a deactivated
// allocation never goes back to active.
type Allocation struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	StudentID   uint      `json:"student_id" gorm:"not null;index"`
	Student     *Student  `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	RoomID      uint      `json:"room_id" gorm:"not null;index"`
	Room        *Room     `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	BedNumber   int       `json:"bed_number" gorm:"not null"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	AllocatedAt time.Time `json:"allocated_at"`
}
