package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerfarooq187/hostel-management/apperr"
	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/store"
	"github.com/omerfarooq187/hostel-management/store/memory"
)

type billingFixture struct {
	svc      *BillingService
	mem      *memory.Memory
	hostelID uint
	students []uint
}

func newBillingFixture(t *testing.T, now func() time.Time, n int) *billingFixture {
	t.Helper()
	ctx := context.Background()
	mem := memory.New()

	hostel := &models.Hostel{Name: "Main Block", Active: true}
	require.NoError(t, mem.Hostels().Create(ctx, hostel))

	f := &billingFixture{
		svc:      NewBillingService(mem, now, zerolog.Nop()),
		mem:      mem,
		hostelID: hostel.ID,
	}
	for i := 0; i < n; i++ {
		user := &models.User{
			Name:  "Student",
			Email: string(rune('a'+i)) + "@example.com",
			Role:  models.RoleStudent,
		}
		require.NoError(t, mem.Users().Create(ctx, user))
		student := &models.Student{UserID: user.ID, HostelID: hostel.ID}
		require.NoError(t, mem.Students().Create(ctx, student))
		f.students = append(f.students, student.ID)
	}
	return f
}

func TestDueDateClamping(t *testing.T) {
	cases := []struct {
		name   string
		now    time.Time
		dueDay int
		want   time.Time
	}{
		{
			name:   "plain month",
			now:    time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC),
			dueDay: 10,
			want:   time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "february non-leap",
			now:    time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			dueDay: 30,
			want:   time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "february leap",
			now:    time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			dueDay: 30,
			want:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "thirty day month",
			now:    time.Date(2025, time.April, 20, 0, 0, 0, 0, time.UTC),
			dueDay: 31,
			want:   time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, dueDateFor(tc.now, tc.dueDay))
		})
	}
}

func TestGenerateFeesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, testClock, 3)

	_, err := f.svc.SetFeeConfig(ctx, f.hostelID, decimal.NewFromInt(5000), 10)
	require.NoError(t, err)

	report, err := f.svc.GenerateFeesForCurrentPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-03", report.Month)
	assert.Equal(t, 1, report.HostelsBilled)
	assert.Equal(t, 3, report.FeesCreated)
	assert.Zero(t, report.Failures)

	fee, err := f.mem.Fees().ByStudent(ctx, f.students[0])
	require.NoError(t, err)
	require.Len(t, fee, 1)
	assert.Equal(t, "2025-03", fee[0].Month)
	assert.Equal(t, models.FeeUnpaid, fee[0].Status)
	assert.True(t, fee[0].Amount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), fee[0].DueDate)

	// Second run within the month creates nothing new.
	report, err = f.svc.GenerateFeesForCurrentPeriod(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.FeesCreated)
	assert.Equal(t, 3, report.FeesExisting)
}

// brokenFeeStore rejects fee inserts for one student, leaving the rest of the
// store intact.
type brokenFeeStore struct {
	store.FeeStore
	failFor uint
}

func (s brokenFeeStore) Create(ctx context.Context, f *models.Fee) error {
	if f.StudentID == s.failFor {
		return apperr.Internal(errors.New("insert rejected"), "fee insert failed")
	}
	return s.FeeStore.Create(ctx, f)
}

type brokenStore struct {
	store.Store
	failFor uint
}

func (s brokenStore) Fees() store.FeeStore {
	return brokenFeeStore{FeeStore: s.Store.Fees(), failFor: s.failFor}
}

func (s brokenStore) InTx(ctx context.Context, fn func(store.Store) error) error {
	return s.Store.InTx(ctx, func(tx store.Store) error {
		return fn(brokenStore{Store: tx, failFor: s.failFor})
	})
}

func TestGenerateIsolatesPerStudentFailures(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, testClock, 3)

	_, err := f.svc.SetFeeConfig(ctx, f.hostelID, decimal.NewFromInt(5000), 10)
	require.NoError(t, err)

	bad := f.students[1]
	svc := NewBillingService(brokenStore{Store: f.mem, failFor: bad}, testClock, zerolog.Nop())

	report, err := svc.GenerateFeesForCurrentPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.FeesCreated)
	assert.Equal(t, 1, report.Failures)

	// The healthy students are billed; the broken one is not.
	for _, id := range []uint{f.students[0], f.students[2]} {
		fees, err := f.mem.Fees().ByStudent(ctx, id)
		require.NoError(t, err)
		assert.Len(t, fees, 1)
	}
	fees, err := f.mem.Fees().ByStudent(ctx, bad)
	require.NoError(t, err)
	assert.Empty(t, fees)

	// A later healthy run picks the skipped student back up.
	report, err = f.svc.GenerateFeesForCurrentPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FeesCreated)
	assert.Equal(t, 2, report.FeesExisting)
	assert.Zero(t, report.Failures)
}

func TestGenerateSkipsUnconfiguredAndInactiveHostels(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, testClock, 1)

	inactive := &models.Hostel{Name: "Closed Block", Active: false}
	require.NoError(t, f.mem.Hostels().Create(ctx, inactive))

	// The only active hostel has no fee config.
	report, err := f.svc.GenerateFeesForCurrentPeriod(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.HostelsBilled)
	assert.Equal(t, 2, report.HostelsSkipped)
	assert.Zero(t, report.FeesCreated)
}

func TestSetFeeConfigRetiresPrevious(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, testClock, 0)

	first, err := f.svc.SetFeeConfig(ctx, f.hostelID, decimal.NewFromInt(4000), 5)
	require.NoError(t, err)
	second, err := f.svc.SetFeeConfig(ctx, f.hostelID, decimal.NewFromInt(4500), 12)
	require.NoError(t, err)

	active, err := f.svc.ActiveConfig(ctx, f.hostelID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
	assert.True(t, active.MonthlyAmount.Equal(decimal.NewFromInt(4500)))

	// The retired config stays in history, deactivated.
	history, err := f.mem.FeeConfigs().ByHostel(ctx, f.hostelID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, c := range history {
		if c.ID == first.ID {
			assert.False(t, c.Active)
		}
	}
	latest, err := f.mem.FeeConfigs().LatestEffective(ctx, f.hostelID, testClock())
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	t.Run("due day bounds", func(t *testing.T) {
		_, err := f.svc.SetFeeConfig(ctx, f.hostelID, decimal.NewFromInt(100), 0)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		_, err = f.svc.SetFeeConfig(ctx, f.hostelID, decimal.NewFromInt(100), 29)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := f.svc.SetFeeConfig(ctx, f.hostelID, decimal.NewFromInt(-1), 10)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestCreateFee(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, testClock, 1)
	due := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	fee, err := f.svc.CreateFee(ctx, f.students[0], f.hostelID, "2025-03", decimal.NewFromInt(5500), due)
	require.NoError(t, err)
	assert.Equal(t, models.FeeUnpaid, fee.Status)

	t.Run("duplicate month", func(t *testing.T) {
		_, err := f.svc.CreateFee(ctx, f.students[0], f.hostelID, "2025-03", decimal.NewFromInt(5500), due)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("bad month format", func(t *testing.T) {
		_, err := f.svc.CreateFee(ctx, f.students[0], f.hostelID, "March 2025", decimal.NewFromInt(5500), due)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := f.svc.CreateFee(ctx, f.students[0], f.hostelID, "2025-04", decimal.NewFromInt(-10), due)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, testClock, 1)
	due := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	fee, err := f.svc.CreateFee(ctx, f.students[0], f.hostelID, "2025-03", decimal.NewFromInt(5000), due)
	require.NoError(t, err)

	paid, err := f.svc.MarkPaid(ctx, fee.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FeePaid, paid.Status)

	again, err := f.svc.MarkPaid(ctx, fee.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FeePaid, again.Status)

	_, err = f.svc.MarkPaid(ctx, 9999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, testClock, 2)
	due := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	feeA, err := f.svc.CreateFee(ctx, f.students[0], f.hostelID, "2025-02", decimal.NewFromInt(5000), due)
	require.NoError(t, err)
	_, err = f.svc.CreateFee(ctx, f.students[0], f.hostelID, "2025-03", decimal.NewFromInt(5000), due)
	require.NoError(t, err)
	_, err = f.svc.CreateFee(ctx, f.students[1], f.hostelID, "2025-03", decimal.NewFromInt(5000), due)
	require.NoError(t, err)

	_, err = f.svc.MarkPaid(ctx, feeA.ID)
	require.NoError(t, err)

	totals, err := f.svc.TotalsForHostel(ctx, f.hostelID)
	require.NoError(t, err)
	assert.True(t, totals.Collected.Equal(decimal.NewFromInt(5000)), "collected = %s", totals.Collected)
	assert.True(t, totals.Outstanding.Equal(decimal.NewFromInt(10000)), "outstanding = %s", totals.Outstanding)

	collected, err := f.svc.TotalCollectedForStudent(ctx, f.students[0])
	require.NoError(t, err)
	assert.True(t, collected.Equal(decimal.NewFromInt(5000)))
}

func TestOverdueFees(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, testClock, 2)

	past := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
	future := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)

	late, err := f.svc.CreateFee(ctx, f.students[0], f.hostelID, "2025-02", decimal.NewFromInt(5000), past)
	require.NoError(t, err)
	_, err = f.svc.CreateFee(ctx, f.students[1], f.hostelID, "2025-04", decimal.NewFromInt(5000), future)
	require.NoError(t, err)

	overdue, err := f.svc.OverdueFees(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)

	// A paid fee drops off the overdue list.
	_, err = f.svc.MarkPaid(ctx, late.ID)
	require.NoError(t, err)
	overdue, err = f.svc.OverdueFees(ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestFeeForStudentOwnership(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t, testClock, 2)
	due := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	fee, err := f.svc.CreateFee(ctx, f.students[0], f.hostelID, "2025-03", decimal.NewFromInt(5000), due)
	require.NoError(t, err)

	got, err := f.svc.FeeForStudent(ctx, fee.ID, f.students[0])
	require.NoError(t, err)
	assert.Equal(t, fee.ID, got.ID)

	// Someone else's fee reads as not found, not forbidden.
	_, err = f.svc.FeeForStudent(ctx, fee.ID, f.students[1])
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
