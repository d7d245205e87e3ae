// Package store defines the data-access contracts the engines and handlers
// work against. Each entity gets an explicit interface with the named
// queries the domain needs; Gorm implements them for Postgres and
// store/memory implements them for tests.
//
// Lookups with an "at most one" answer (active allocation, active config)
// return (nil, nil) when nothing matches. ByID lookups return a not-found
// error instead.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omerfarooq187/hostel-management/models"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error) // nil, nil when absent
	Update(ctx context.Context, u *models.User) error
	CountByRole(ctx context.Context, role string) (int64, error)
}

type HostelStore interface {
	Create(ctx context.Context, h *models.Hostel) error
	ByID(ctx context.Context, id uint) (*models.Hostel, error)
	All(ctx context.Context) ([]models.Hostel, error)
	Update(ctx context.Context, h *models.Hostel) error
}

type RoomStore interface {
	Create(ctx context.Context, r *models.Room) error
	ByID(ctx context.Context, id uint) (*models.Room, error)
	ByHostel(ctx context.Context, hostelID uint) ([]models.Room, error)
	Update(ctx context.Context, r *models.Room) error
	Delete(ctx context.Context, id uint) error
}

type StudentStore interface {
	Create(ctx context.Context, s *models.Student) error
	ByID(ctx context.Context, id uint) (*models.Student, error)
	ByUserID(ctx context.Context, userID uint) (*models.Student, error)   // nil, nil when absent
	ByUserEmail(ctx context.Context, email string) (*models.Student, error) // nil, nil when absent
	ByHostel(ctx context.Context, hostelID uint) ([]models.Student, error)
	Update(ctx context.Context, s *models.Student) error
	Delete(ctx context.Context, id uint) error
}

type AllocationStore interface {
	Create(ctx context.Context, a *models.Allocation) error
	ByID(ctx context.Context, id uint) (*models.Allocation, error)
	ActiveByStudent(ctx context.Context, studentID uint) (*models.Allocation, error)            // nil, nil when absent
	ActiveByRoomAndBed(ctx context.Context, roomID uint, bed int) (*models.Allocation, error)   // nil, nil when absent
	ActiveByRoom(ctx context.Context, roomID uint) ([]models.Allocation, error)                 // ordered by bed number
	CountActiveByRoom(ctx context.Context, roomID uint) (int64, error)
	CountActiveByHostel(ctx context.Context, hostelID uint) (int64, error)
	HistoryByStudent(ctx context.Context, studentID uint) ([]models.Allocation, error) // most recent first
	HistoryByHostel(ctx context.Context, hostelID uint) ([]models.Allocation, error)
	Update(ctx context.Context, a *models.Allocation) error
	DeleteByRoom(ctx context.Context, roomID uint) error // room deletion cascade, active or not
}

type FeeConfigStore interface {
	Create(ctx context.Context, c *models.FeeConfig) error
	ActiveByHostel(ctx context.Context, hostelID uint) (*models.FeeConfig, error) // nil, nil when absent
	// LatestEffective returns the config with the greatest effectiveFrom <= asOf,
	// active or not, or nil, nil when the hostel has never been configured.
	LatestEffective(ctx context.Context, hostelID uint, asOf time.Time) (*models.FeeConfig, error)
	ByHostel(ctx context.Context, hostelID uint) ([]models.FeeConfig, error)
	Update(ctx context.Context, c *models.FeeConfig) error
}

type FeeStore interface {
	Create(ctx context.Context, f *models.Fee) error
	ByID(ctx context.Context, id uint) (*models.Fee, error)
	ByIDAndStudent(ctx context.Context, id, studentID uint) (*models.Fee, error)
	ExistsByStudentAndMonth(ctx context.Context, studentID uint, month string) (bool, error)
	ByStudent(ctx context.Context, studentID uint) ([]models.Fee, error)
	ByHostel(ctx context.Context, hostelID uint) ([]models.Fee, error)
	ByStatus(ctx context.Context, status string) ([]models.Fee, error)
	Overdue(ctx context.Context, asOf time.Time) ([]models.Fee, error) // status != PAID, due date past
	SumByHostelAndStatus(ctx context.Context, hostelID uint, status string) (decimal.Decimal, error)
	SumByStudentAndStatus(ctx context.Context, studentID uint, status string) (decimal.Decimal, error)
	Update(ctx context.Context, f *models.Fee) error
	Delete(ctx context.Context, id uint) error
}

type KitchenStore interface {
	Create(ctx context.Context, item *models.KitchenInventory) error
	ByID(ctx context.Context, id uint) (*models.KitchenInventory, error)
	ExistsByNameAndHostel(ctx context.Context, name string, hostelID uint) (bool, error) // case-insensitive
	SearchByName(ctx context.Context, name string, hostelID uint) ([]models.KitchenInventory, error)
	All(ctx context.Context) ([]models.KitchenInventory, error)
	Update(ctx context.Context, item *models.KitchenInventory) error
	Delete(ctx context.Context, id uint) error
}

type TokenStore interface {
	Create(ctx context.Context, t *models.EmailVerificationToken) error
	ByToken(ctx context.Context, token string) (*models.EmailVerificationToken, error) // nil, nil when absent
	Delete(ctx context.Context, id uint) error
}

type NoticeStore interface {
	Create(ctx context.Context, n *models.Notice) error
	All(ctx context.Context) ([]models.Notice, error)
	Delete(ctx context.Context, id uint) error
}

// Store aggregates the per-entity stores. InTx runs fn against a store bound
// to one transaction; any error rolls the whole scope back.
type Store interface {
	Users() UserStore
	Hostels() HostelStore
	Rooms() RoomStore
	Students() StudentStore
	Allocations() AllocationStore
	FeeConfigs() FeeConfigStore
	Fees() FeeStore
	Kitchen() KitchenStore
	Tokens() TokenStore
	Notices() NoticeStore
	InTx(ctx context.Context, fn func(Store) error) error
}
