package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/omerfarooq187/hostel-management/apperr"
	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/store"
)

// BillingService generates one fee per student per calendar month from the
// hostel's fee configuration and tracks payment status. The clock is injected
// so month and due-date arithmetic is testable.
type BillingService struct {
	store store.Store
	now   func() time.Time
	log   zerolog.Logger
}

func NewBillingService(s store.Store, now func() time.Time, log zerolog.Logger) *BillingService {
	if now == nil {
		now = time.Now
	}
	return &BillingService{store: s, now: now, log: log}
}

// GenerateReport tallies one billing run.
type GenerateReport struct {
	Month          string `json:"month"`
	HostelsBilled  int    `json:"hostels_billed"`
	HostelsSkipped int    `json:"hostels_skipped"`
	FeesCreated    int    `json:"fees_created"`
	FeesExisting   int    `json:"fees_existing"`
	Failures       int    `json:"failures"`
}

// dueDateFor clamps the configured due day to the month's length, so
// dueDay=30 in February yields Feb 28 (29 in leap years).
func dueDateFor(now time.Time, dueDay int) time.Time {
	year, month, _ := now.Date()
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, now.Location()).Day()
	day := dueDay
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}

// GenerateFeesForCurrentPeriod bills every student of every active hostel
// for the current month. Safe to run any number of times within a month:
// students already billed are skipped. A failure on one student or hostel is
// logged and does not stop the run.
func (s *BillingService) GenerateFeesForCurrentPeriod(ctx context.Context) (*GenerateReport, error) {
	now := s.now()
	month := now.Format("2006-01")
	report := &GenerateReport{Month: month}

	hostels, err := s.store.Hostels().All(ctx)
	if err != nil {
		return nil, err
	}

	for _, hostel := range hostels {
		if !hostel.Active {
			report.HostelsSkipped++
			continue
		}
		if err := s.generateForHostel(ctx, hostel, now, month, report); err != nil {
			report.Failures++
			s.log.Error().Err(err).Uint("hostel_id", hostel.ID).Str("month", month).
				Msg("fee generation failed for hostel")
		}
	}

	s.log.Info().Str("month", month).
		Int("created", report.FeesCreated).
		Int("existing", report.FeesExisting).
		Int("failures", report.Failures).
		Msg("fee generation run finished")
	return report, nil
}

func (s *BillingService) generateForHostel(ctx context.Context, hostel models.Hostel, now time.Time, month string, report *GenerateReport) error {
	config, err := s.store.FeeConfigs().LatestEffective(ctx, hostel.ID, now)
	if err != nil {
		return err
	}
	if config == nil {
		report.HostelsSkipped++
		return nil
	}
	report.HostelsBilled++

	dueDate := dueDateFor(now, config.DueDay)

	studentList, err := s.store.Students().ByHostel(ctx, hostel.ID)
	if err != nil {
		return err
	}

	for _, student := range studentList {
		created, err := s.billStudent(ctx, student.ID, hostel.ID, month, config.MonthlyAmount, dueDate)
		if err != nil {
			report.Failures++
			s.log.Error().Err(err).Uint("student_id", student.ID).Str("month", month).
				Msg("fee generation failed for student")
			continue
		}
		if created {
			report.FeesCreated++
		} else {
			report.FeesExisting++
		}
	}
	return nil
}

// billStudent is the idempotent existence-check-then-insert for one student,
// in its own transaction so one bad record cannot poison the rest of the run.
func (s *BillingService) billStudent(ctx context.Context, studentID, hostelID uint, month string, amount decimal.Decimal, dueDate time.Time) (bool, error) {
	created := false
	err := s.store.InTx(ctx, func(tx store.Store) error {
		exists, err := tx.Fees().ExistsByStudentAndMonth(ctx, studentID, month)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		fee := &models.Fee{
			StudentID: studentID,
			HostelID:  hostelID,
			Month:     month,
			Amount:    amount,
			DueDate:   dueDate,
			Status:    models.FeeUnpaid,
		}
		if err := tx.Fees().Create(ctx, fee); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// CreateFee records a manually entered fee, guarding the one-per-month rule.
func (s *BillingService) CreateFee(ctx context.Context, studentID, hostelID uint, month string, amount decimal.Decimal, dueDate time.Time) (*models.Fee, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, apperr.Validation("month must be in YYYY-MM format")
	}
	if amount.IsNegative() {
		return nil, apperr.Validation("amount must not be negative")
	}
	var out *models.Fee
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Students().ByID(ctx, studentID); err != nil {
			return err
		}
		if _, err := tx.Hostels().ByID(ctx, hostelID); err != nil {
			return err
		}
		exists, err := tx.Fees().ExistsByStudentAndMonth(ctx, studentID, month)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("fee already exists for this student for month %s", month)
		}
		fee := &models.Fee{
			StudentID: studentID,
			HostelID:  hostelID,
			Month:     month,
			Amount:    amount,
			DueDate:   dueDate,
			Status:    models.FeeUnpaid,
		}
		if err := tx.Fees().Create(ctx, fee); err != nil {
			return err
		}
		out = fee
		return nil
	})
	return out, err
}

// MarkPaid moves a fee to PAID. Marking a paid fee again changes nothing and
// is not an error.
func (s *BillingService) MarkPaid(ctx context.Context, feeID uint) (*models.Fee, error) {
	var out *models.Fee
	err := s.store.InTx(ctx, func(tx store.Store) error {
		fee, err := tx.Fees().ByID(ctx, feeID)
		if err != nil {
			return err
		}
		if fee.Status != models.FeePaid {
			fee.Status = models.FeePaid
			if err := tx.Fees().Update(ctx, fee); err != nil {
				return err
			}
		}
		out = fee
		return nil
	})
	return out, err
}

// SetFeeConfig activates a new billing rule for the hostel, retiring the
// previous active one. History stays queryable for retroactive billing.
func (s *BillingService) SetFeeConfig(ctx context.Context, hostelID uint, amount decimal.Decimal, dueDay int) (*models.FeeConfig, error) {
	if dueDay < 1 || dueDay > 28 {
		return nil, apperr.Validation("due day must be between 1 and 28")
	}
	if amount.IsNegative() {
		return nil, apperr.Validation("amount must not be negative")
	}
	var out *models.FeeConfig
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Hostels().ByID(ctx, hostelID); err != nil {
			return err
		}
		prev, err := tx.FeeConfigs().ActiveByHostel(ctx, hostelID)
		if err != nil {
			return err
		}
		if prev != nil {
			prev.Active = false
			if err := tx.FeeConfigs().Update(ctx, prev); err != nil {
				return err
			}
		}
		y, m, d := s.now().Date()
		config := &models.FeeConfig{
			HostelID:      hostelID,
			MonthlyAmount: amount,
			DueDay:        dueDay,
			EffectiveFrom: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Active:        true,
		}
		if err := tx.FeeConfigs().Create(ctx, config); err != nil {
			return err
		}
		out = config
		return nil
	})
	return out, err
}

// ActiveConfig returns the hostel's active fee config, nil when unset.
func (s *BillingService) ActiveConfig(ctx context.Context, hostelID uint) (*models.FeeConfig, error) {
	if _, err := s.store.Hostels().ByID(ctx, hostelID); err != nil {
		return nil, err
	}
	return s.store.FeeConfigs().ActiveByHostel(ctx, hostelID)
}

// HostelTotals are the collected/outstanding aggregates for one hostel.
type HostelTotals struct {
	HostelID    uint            `json:"hostel_id"`
	Collected   decimal.Decimal `json:"collected"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

func (s *BillingService) TotalsForHostel(ctx context.Context, hostelID uint) (*HostelTotals, error) {
	if _, err := s.store.Hostels().ByID(ctx, hostelID); err != nil {
		return nil, err
	}
	collected, err := s.store.Fees().SumByHostelAndStatus(ctx, hostelID, models.FeePaid)
	if err != nil {
		return nil, err
	}
	outstanding, err := s.store.Fees().SumByHostelAndStatus(ctx, hostelID, models.FeeUnpaid)
	if err != nil {
		return nil, err
	}
	return &HostelTotals{HostelID: hostelID, Collected: collected, Outstanding: outstanding}, nil
}

func (s *BillingService) TotalCollectedForStudent(ctx context.Context, studentID uint) (decimal.Decimal, error) {
	if _, err := s.store.Students().ByID(ctx, studentID); err != nil {
		return decimal.Zero, err
	}
	return s.store.Fees().SumByStudentAndStatus(ctx, studentID, models.FeePaid)
}

// OverdueFees lists fees past due and not paid, as of the injected clock.
func (s *BillingService) OverdueFees(ctx context.Context) ([]models.Fee, error) {
	return s.store.Fees().Overdue(ctx, s.now())
}

// FeeForStudent fetches a fee owned by the given student; a fee belonging to
// someone else reads as not found.
func (s *BillingService) FeeForStudent(ctx context.Context, feeID, studentID uint) (*models.Fee, error) {
	fee, err := s.store.Fees().ByIDAndStudent(ctx, feeID, studentID)
	if err != nil {
		return nil, fmt.Errorf("fee %d for student %d: %w", feeID, studentID, err)
	}
	return fee, nil
}
