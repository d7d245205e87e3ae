package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	FeeUnpaid = "UNPAID"
	FeePaid   = "PAID"
)

// Fee is one billing record per student per calendar month ("YYYY-MM").
type Fee struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	StudentID uint            `json:"student_id" gorm:"not null;index:idx_fee_student_month,unique"`
	Student   *Student        `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	HostelID  uint            `json:"hostel_id" gorm:"not null;index"`
	Hostel    *Hostel         `json:"hostel,omitempty" gorm:"foreignKey:HostelID"`
	Month     string          `json:"month" gorm:"size:7;not null;index:idx_fee_student_month,unique"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	DueDate   time.Time       `json:"due_date" gorm:"type:date;not null"`
	Status    string          `json:"status" gorm:"size:10;not null"` // UNPAID | PAID
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
