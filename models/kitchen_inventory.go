package models

import "time"

type KitchenInventory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	HostelID    uint      `json:"hostel_id" gorm:"not null;index"`
	Hostel      *Hostel   `json:"hostel,omitempty" gorm:"foreignKey:HostelID"`
	ItemName    string    `json:"item_name" gorm:"size:100;not null"`
	Quantity    float64   `json:"quantity" gorm:"not null"`
	Unit        string    `json:"unit" gorm:"size:20;not null"`
	LastUpdated time.Time `json:"last_updated" gorm:"autoUpdateTime"`
}
