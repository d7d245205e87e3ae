package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omerfarooq187/hostel-management/apperr"
	"github.com/omerfarooq187/hostel-management/models"
)

// Gorm is the Postgres-backed Store. The *gorm.DB it wraps must be opened
// with TranslateError so unique-constraint violations arrive as
// gorm.ErrDuplicatedKey and can be surfaced as conflicts.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm { return &Gorm{db: db} }

func (g *Gorm) Users() UserStore             { return gormUsers{g.db} }
func (g *Gorm) Hostels() HostelStore         { return gormHostels{g.db} }
func (g *Gorm) Rooms() RoomStore             { return gormRooms{g.db} }
func (g *Gorm) Students() StudentStore       { return gormStudents{g.db} }
func (g *Gorm) Allocations() AllocationStore { return gormAllocations{g.db} }
func (g *Gorm) FeeConfigs() FeeConfigStore   { return gormFeeConfigs{g.db} }
func (g *Gorm) Fees() FeeStore               { return gormFees{g.db} }
func (g *Gorm) Kitchen() KitchenStore        { return gormKitchen{g.db} }
func (g *Gorm) Tokens() TokenStore           { return gormTokens{g.db} }
func (g *Gorm) Notices() NoticeStore         { return gormNotices{g.db} }

func (g *Gorm) InTx(ctx context.Context, fn func(Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGorm(tx))
	})
}

// wrapErr translates gorm errors into apperr kinds; entity names the
// not-found message.
func wrapErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s not found", entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict("%s already exists", entity)
	default:
		return apperr.Internal(err, "database error")
	}
}

// optional swallows not-found into (nil, nil) for at-most-one lookups.
func optional[T any](rec *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err, "database error")
	}
	return rec, nil
}

/* ---------------- users ---------------- */

type gormUsers struct{ db *gorm.DB }

func (s gormUsers) Create(ctx context.Context, u *models.User) error {
	return wrapErr(s.db.WithContext(ctx).Create(u).Error, "user")
}

func (s gormUsers) ByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, wrapErr(err, "user")
	}
	return &u, nil
}

func (s gormUsers) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	return optional(&u, err)
}

func (s gormUsers) Update(ctx context.Context, u *models.User) error {
	return wrapErr(s.db.WithContext(ctx).Save(u).Error, "user")
}

func (s gormUsers) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&n).Error
	return n, wrapErr(err, "user")
}

/* ---------------- hostels ---------------- */

type gormHostels struct{ db *gorm.DB }

func (s gormHostels) Create(ctx context.Context, h *models.Hostel) error {
	return wrapErr(s.db.WithContext(ctx).Create(h).Error, "hostel")
}

func (s gormHostels) ByID(ctx context.Context, id uint) (*models.Hostel, error) {
	var h models.Hostel
	if err := s.db.WithContext(ctx).First(&h, id).Error; err != nil {
		return nil, wrapErr(err, "hostel")
	}
	return &h, nil
}

func (s gormHostels) All(ctx context.Context) ([]models.Hostel, error) {
	var hs []models.Hostel
	err := s.db.WithContext(ctx).Order("id").Find(&hs).Error
	return hs, wrapErr(err, "hostel")
}

func (s gormHostels) Update(ctx context.Context, h *models.Hostel) error {
	return wrapErr(s.db.WithContext(ctx).Save(h).Error, "hostel")
}

/* ---------------- rooms ---------------- */

type gormRooms struct{ db *gorm.DB }

func (s gormRooms) Create(ctx context.Context, r *models.Room) error {
	return wrapErr(s.db.WithContext(ctx).Create(r).Error, "room")
}

func (s gormRooms) ByID(ctx context.Context, id uint) (*models.Room, error) {
	var r models.Room
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, wrapErr(err, "room")
	}
	return &r, nil
}

func (s gormRooms) ByHostel(ctx context.Context, hostelID uint) ([]models.Room, error) {
	var rs []models.Room
	err := s.db.WithContext(ctx).Where("hostel_id = ?", hostelID).Order("block, room_number").Find(&rs).Error
	return rs, wrapErr(err, "room")
}

func (s gormRooms) Update(ctx context.Context, r *models.Room) error {
	return wrapErr(s.db.WithContext(ctx).Save(r).Error, "room")
}

func (s gormRooms) Delete(ctx context.Context, id uint) error {
	return wrapErr(s.db.WithContext(ctx).Delete(&models.Room{}, id).Error, "room")
}

/* ---------------- students ---------------- */

type gormStudents struct{ db *gorm.DB }

func (s gormStudents) Create(ctx context.Context, st *models.Student) error {
	return wrapErr(s.db.WithContext(ctx).Create(st).Error, "student")
}

func (s gormStudents) ByID(ctx context.Context, id uint) (*models.Student, error) {
	var st models.Student
	if err := s.db.WithContext(ctx).Preload("User").First(&st, id).Error; err != nil {
		return nil, wrapErr(err, "student")
	}
	return &st, nil
}

func (s gormStudents) ByUserID(ctx context.Context, userID uint) (*models.Student, error) {
	var st models.Student
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&st).Error
	return optional(&st, err)
}

func (s gormStudents) ByUserEmail(ctx context.Context, email string) (*models.Student, error) {
	var st models.Student
	err := s.db.WithContext(ctx).
		Joins("JOIN users ON users.id = students.user_id").
		Where("users.email = ?", email).
		Preload("User").
		First(&st).Error
	return optional(&st, err)
}

func (s gormStudents) ByHostel(ctx context.Context, hostelID uint) ([]models.Student, error) {
	var sts []models.Student
	err := s.db.WithContext(ctx).Where("hostel_id = ?", hostelID).Preload("User").Order("id").Find(&sts).Error
	return sts, wrapErr(err, "student")
}

func (s gormStudents) Update(ctx context.Context, st *models.Student) error {
	return wrapErr(s.db.WithContext(ctx).Save(st).Error, "student")
}

func (s gormStudents) Delete(ctx context.Context, id uint) error {
	return wrapErr(s.db.WithContext(ctx).Delete(&models.Student{}, id).Error, "student")
}

/* ---------------- allocations ---------------- */

type gormAllocations struct{ db *gorm.DB }

func (s gormAllocations) Create(ctx context.Context, a *models.Allocation) error {
	return wrapErr(s.db.WithContext(ctx).Create(a).Error, "allocation")
}

func (s gormAllocations) ByID(ctx context.Context, id uint) (*models.Allocation, error) {
	var a models.Allocation
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, wrapErr(err, "allocation")
	}
	return &a, nil
}

func (s gormAllocations) ActiveByStudent(ctx context.Context, studentID uint) (*models.Allocation, error) {
	var a models.Allocation
	err := s.db.WithContext(ctx).
		Where("student_id = ? AND active = true", studentID).
		Preload("Room").
		First(&a).Error
	return optional(&a, err)
}

func (s gormAllocations) ActiveByRoomAndBed(ctx context.Context, roomID uint, bed int) (*models.Allocation, error) {
	var a models.Allocation
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND bed_number = ? AND active = true", roomID, bed).
		First(&a).Error
	return optional(&a, err)
}

func (s gormAllocations) ActiveByRoom(ctx context.Context, roomID uint) ([]models.Allocation, error) {
	var as []models.Allocation
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND active = true", roomID).
		Preload("Student").Preload("Student.User").
		Order("bed_number").
		Find(&as).Error
	return as, wrapErr(err, "allocation")
}

func (s gormAllocations) CountActiveByRoom(ctx context.Context, roomID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Allocation{}).
		Where("room_id = ? AND active = true", roomID).
		Count(&n).Error
	return n, wrapErr(err, "allocation")
}

func (s gormAllocations) CountActiveByHostel(ctx context.Context, hostelID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Allocation{}).
		Joins("JOIN rooms ON rooms.id = allocations.room_id").
		Where("rooms.hostel_id = ? AND allocations.active = true", hostelID).
		Count(&n).Error
	return n, wrapErr(err, "allocation")
}

func (s gormAllocations) HistoryByStudent(ctx context.Context, studentID uint) ([]models.Allocation, error) {
	var as []models.Allocation
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Preload("Room").
		Order("id DESC").
		Find(&as).Error
	return as, wrapErr(err, "allocation")
}

func (s gormAllocations) HistoryByHostel(ctx context.Context, hostelID uint) ([]models.Allocation, error) {
	var as []models.Allocation
	err := s.db.WithContext(ctx).
		Joins("JOIN students ON students.id = allocations.student_id").
		Where("students.hostel_id = ?", hostelID).
		Preload("Room").Preload("Student").Preload("Student.User").
		Order("allocations.id DESC").
		Find(&as).Error
	return as, wrapErr(err, "allocation")
}

func (s gormAllocations) Update(ctx context.Context, a *models.Allocation) error {
	return wrapErr(s.db.WithContext(ctx).Save(a).Error, "allocation")
}

func (s gormAllocations) DeleteByRoom(ctx context.Context, roomID uint) error {
	return wrapErr(s.db.WithContext(ctx).Where("room_id = ?", roomID).Delete(&models.Allocation{}).Error, "allocation")
}

/* ---------------- fee configs ---------------- */

type gormFeeConfigs struct{ db *gorm.DB }

func (s gormFeeConfigs) Create(ctx context.Context, c *models.FeeConfig) error {
	return wrapErr(s.db.WithContext(ctx).Create(c).Error, "fee config")
}

func (s gormFeeConfigs) ActiveByHostel(ctx context.Context, hostelID uint) (*models.FeeConfig, error) {
	var c models.FeeConfig
	err := s.db.WithContext(ctx).
		Where("hostel_id = ? AND active = true", hostelID).
		First(&c).Error
	return optional(&c, err)
}

func (s gormFeeConfigs) LatestEffective(ctx context.Context, hostelID uint, asOf time.Time) (*models.FeeConfig, error) {
	var c models.FeeConfig
	err := s.db.WithContext(ctx).
		Where("hostel_id = ? AND effective_from <= ?", hostelID, asOf).
		Order("effective_from DESC, id DESC").
		First(&c).Error
	return optional(&c, err)
}

func (s gormFeeConfigs) ByHostel(ctx context.Context, hostelID uint) ([]models.FeeConfig, error) {
	var cs []models.FeeConfig
	err := s.db.WithContext(ctx).
		Where("hostel_id = ?", hostelID).
		Order("effective_from DESC, id DESC").
		Find(&cs).Error
	return cs, wrapErr(err, "fee config")
}

func (s gormFeeConfigs) Update(ctx context.Context, c *models.FeeConfig) error {
	return wrapErr(s.db.WithContext(ctx).Save(c).Error, "fee config")
}

/* ---------------- fees ---------------- */

type gormFees struct{ db *gorm.DB }

func (s gormFees) Create(ctx context.Context, f *models.Fee) error {
	return wrapErr(s.db.WithContext(ctx).Create(f).Error, "fee")
}

func (s gormFees) ByID(ctx context.Context, id uint) (*models.Fee, error) {
	var f models.Fee
	if err := s.db.WithContext(ctx).Preload("Student").Preload("Student.User").First(&f, id).Error; err != nil {
		return nil, wrapErr(err, "fee")
	}
	return &f, nil
}

func (s gormFees) ByIDAndStudent(ctx context.Context, id, studentID uint) (*models.Fee, error) {
	var f models.Fee
	err := s.db.WithContext(ctx).
		Where("id = ? AND student_id = ?", id, studentID).
		Preload("Student").Preload("Student.User").
		First(&f).Error
	if err != nil {
		return nil, wrapErr(err, "fee")
	}
	return &f, nil
}

func (s gormFees) ExistsByStudentAndMonth(ctx context.Context, studentID uint, month string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Fee{}).
		Where("student_id = ? AND month = ?", studentID, month).
		Count(&n).Error
	return n > 0, wrapErr(err, "fee")
}

func (s gormFees) ByStudent(ctx context.Context, studentID uint) ([]models.Fee, error) {
	var fs []models.Fee
	err := s.db.WithContext(ctx).Where("student_id = ?", studentID).Order("id DESC").Find(&fs).Error
	return fs, wrapErr(err, "fee")
}

func (s gormFees) ByHostel(ctx context.Context, hostelID uint) ([]models.Fee, error) {
	var fs []models.Fee
	err := s.db.WithContext(ctx).
		Where("hostel_id = ?", hostelID).
		Preload("Student").Preload("Student.User").
		Order("id DESC").
		Find(&fs).Error
	return fs, wrapErr(err, "fee")
}

func (s gormFees) ByStatus(ctx context.Context, status string) ([]models.Fee, error) {
	var fs []models.Fee
	err := s.db.WithContext(ctx).Where("status = ?", status).Order("id DESC").Find(&fs).Error
	return fs, wrapErr(err, "fee")
}

func (s gormFees) Overdue(ctx context.Context, asOf time.Time) ([]models.Fee, error) {
	var fs []models.Fee
	err := s.db.WithContext(ctx).
		Where("status <> ? AND due_date < ?", models.FeePaid, asOf).
		Preload("Student").Preload("Student.User").
		Order("due_date").
		Find(&fs).Error
	return fs, wrapErr(err, "fee")
}

func (s gormFees) SumByHostelAndStatus(ctx context.Context, hostelID uint, status string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := s.db.WithContext(ctx).Model(&models.Fee{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("hostel_id = ? AND status = ?", hostelID, status).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, wrapErr(err, "fee")
	}
	return sum.Decimal, nil
}

func (s gormFees) SumByStudentAndStatus(ctx context.Context, studentID uint, status string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := s.db.WithContext(ctx).Model(&models.Fee{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("student_id = ? AND status = ?", studentID, status).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, wrapErr(err, "fee")
	}
	return sum.Decimal, nil
}

func (s gormFees) Update(ctx context.Context, f *models.Fee) error {
	return wrapErr(s.db.WithContext(ctx).Save(f).Error, "fee")
}

func (s gormFees) Delete(ctx context.Context, id uint) error {
	return wrapErr(s.db.WithContext(ctx).Delete(&models.Fee{}, id).Error, "fee")
}

/* ---------------- kitchen inventory ---------------- */

type gormKitchen struct{ db *gorm.DB }

func (s gormKitchen) Create(ctx context.Context, item *models.KitchenInventory) error {
	return wrapErr(s.db.WithContext(ctx).Create(item).Error, "inventory item")
}

func (s gormKitchen) ByID(ctx context.Context, id uint) (*models.KitchenInventory, error) {
	var item models.KitchenInventory
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, wrapErr(err, "inventory item")
	}
	return &item, nil
}

func (s gormKitchen) ExistsByNameAndHostel(ctx context.Context, name string, hostelID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.KitchenInventory{}).
		Where("LOWER(item_name) = LOWER(?) AND hostel_id = ?", name, hostelID).
		Count(&n).Error
	return n > 0, wrapErr(err, "inventory item")
}

func (s gormKitchen) SearchByName(ctx context.Context, name string, hostelID uint) ([]models.KitchenInventory, error) {
	var items []models.KitchenInventory
	err := s.db.WithContext(ctx).
		Where("item_name ILIKE ? AND hostel_id = ?", "%"+name+"%", hostelID).
		Order("item_name").
		Find(&items).Error
	return items, wrapErr(err, "inventory item")
}

func (s gormKitchen) All(ctx context.Context) ([]models.KitchenInventory, error) {
	var items []models.KitchenInventory
	err := s.db.WithContext(ctx).Order("id").Find(&items).Error
	return items, wrapErr(err, "inventory item")
}

func (s gormKitchen) Update(ctx context.Context, item *models.KitchenInventory) error {
	return wrapErr(s.db.WithContext(ctx).Save(item).Error, "inventory item")
}

func (s gormKitchen) Delete(ctx context.Context, id uint) error {
	return wrapErr(s.db.WithContext(ctx).Delete(&models.KitchenInventory{}, id).Error, "inventory item")
}

/* ---------------- verification tokens ---------------- */

type gormTokens struct{ db *gorm.DB }

func (s gormTokens) Create(ctx context.Context, t *models.EmailVerificationToken) error {
	return wrapErr(s.db.WithContext(ctx).Create(t).Error, "verification token")
}

func (s gormTokens) ByToken(ctx context.Context, token string) (*models.EmailVerificationToken, error) {
	var t models.EmailVerificationToken
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&t).Error
	return optional(&t, err)
}

func (s gormTokens) Delete(ctx context.Context, id uint) error {
	return wrapErr(s.db.WithContext(ctx).Delete(&models.EmailVerificationToken{}, id).Error, "verification token")
}

/* ---------------- notices ---------------- */

type gormNotices struct{ db *gorm.DB }

func (s gormNotices) Create(ctx context.Context, n *models.Notice) error {
	return wrapErr(s.db.WithContext(ctx).Create(n).Error, "notice")
}

func (s gormNotices) All(ctx context.Context) ([]models.Notice, error) {
	var ns []models.Notice
	err := s.db.WithContext(ctx).Order("id DESC").Find(&ns).Error
	return ns, wrapErr(err, "notice")
}

func (s gormNotices) Delete(ctx context.Context, id uint) error {
	return wrapErr(s.db.WithContext(ctx).Delete(&models.Notice{}, id).Error, "notice")
}
