package database

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/omerfarooq187/hostel-management/config"
	"github.com/omerfarooq187/hostel-management/models"
)

// Connect opens the Postgres connection and migrates the schema. It fails
// fast: the process should not start against a broken database.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true, // unique violations become gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Hostel{},
		&models.Room{},
		&models.Student{},
		&models.Allocation{},
		&models.FeeConfig{},
		&models.Fee{},
		&models.KitchenInventory{},
		&models.Notice{},
		&models.EmailVerificationToken{},
	); err != nil {
		return nil, err
	}

	// Partial unique indexes back the allocation invariants against races:
	// one active allocation per student and one occupant per (room, bed).
	// AutoMigrate cannot express partial indexes, so they go in raw.
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_allocation_per_student
			ON allocations (student_id) WHERE active`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_allocation_per_bed
			ON allocations (room_id, bed_number) WHERE active`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, err
		}
	}

	return db, nil
}

// SeedAdmin creates the bootstrap admin account if it does not exist yet.
func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
	var existing models.User
	err := db.Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:          "Administrator",
		Email:         cfg.AdminEmail,
		Password:      string(hash),
		Role:          models.RoleAdmin,
		Active:        true,
		EmailVerified: true,
	}
	return db.Create(&admin).Error
}
