package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerfarooq187/hostel-management/store/memory"
)

func TestSchedulerRejectsBadSpec(t *testing.T) {
	billing := NewBillingService(memory.New(), testClock, zerolog.Nop())

	s := NewFeeScheduler(billing, "not-a-cron-spec", zerolog.Nop())
	err := s.Start()
	require.Error(t, err)
}

func TestSchedulerStartsWithValidSpec(t *testing.T) {
	billing := NewBillingService(memory.New(), testClock, zerolog.Nop())

	s := NewFeeScheduler(billing, "0 0 1 * *", zerolog.Nop())
	assert.NoError(t, s.Start())
	s.Stop()
}
