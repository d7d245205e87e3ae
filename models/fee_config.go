package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeConfig is a hostel's billing rule, versioned by effective date. At most
// one config per hostel is active; historical rows stay selectable for
// retroactive billing.
type FeeConfig struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	HostelID      uint            `json:"hostel_id" gorm:"not null;index"`
	Hostel        *Hostel         `json:"hostel,omitempty" gorm:"foreignKey:HostelID"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount" gorm:"type:numeric(12,2);not null"`
	DueDay        int             `json:"due_day" gorm:"not null"` // 1..28
	EffectiveFrom time.Time       `json:"effective_from" gorm:"type:date;not null"`
	Active        bool            `json:"active" gorm:"not null;default:true"`
	CreatedAt     time.Time       `json:"created_at"`
}
