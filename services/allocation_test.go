package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerfarooq187/hostel-management/apperr"
	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/store/memory"
)

var testClock = func() time.Time {
	return time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
}

type allocFixture struct {
	svc      *AllocationService
	mem      *memory.Memory
	hostelID uint
	roomID   uint
	students []uint
}

// newAllocFixture seeds one hostel with a single room of the given capacity
// and n students.
func newAllocFixture(t *testing.T, capacity, n int) *allocFixture {
	t.Helper()
	ctx := context.Background()
	mem := memory.New()

	hostel := &models.Hostel{Name: "Main Block", Active: true}
	require.NoError(t, mem.Hostels().Create(ctx, hostel))

	room := &models.Room{HostelID: hostel.ID, Block: "A", RoomNumber: "101", Capacity: capacity}
	require.NoError(t, mem.Rooms().Create(ctx, room))

	f := &allocFixture{
		svc:      NewAllocationService(mem, testClock, zerolog.Nop()),
		mem:      mem,
		hostelID: hostel.ID,
		roomID:   room.ID,
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

func (f *allocFixture) addRoom(t *testing.T, capacity int) uint {
	t.Helper()
	room := &models.Room{HostelID: f.hostelID, Block: "B", RoomNumber: "201", Capacity: capacity}
	require.NoError(t, f.mem.Rooms().Create(context.Background(), room))
	return room.ID
}

func TestAllocate(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t, 3, 2)

	alloc, err := f.svc.Allocate(ctx, f.students[0], f.roomID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, alloc.BedNumber)
	assert.True(t, alloc.Active)
	assert.Equal(t, testClock(), alloc.AllocatedAt)

	t.Run("bed out of range", func(t *testing.T) {
		_, err := f.svc.Allocate(ctx, f.students[1], f.roomID, 4)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		_, err = f.svc.Allocate(ctx, f.students[1], f.roomID, 0)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("bed occupied", func(t *testing.T) {
		_, err := f.svc.Allocate(ctx, f.students[1], f.roomID, 2)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("student already housed", func(t *testing.T) {
		_, err := f.svc.Allocate(ctx, f.students[0], f.roomID, 3)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := f.svc.Allocate(ctx, 9999, f.roomID, 1)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := f.svc.Allocate(ctx, f.students[1], 9999, 1)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestAutoAllocatePicksLowestFreeBed(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t, 3, 3)

	// Occupy beds 1 and 3, leaving a gap at 2.
	_, err := f.svc.Allocate(ctx, f.students[0], f.roomID, 1)
	require.NoError(t, err)
	_, err = f.svc.Allocate(ctx, f.students[1], f.roomID, 3)
	require.NoError(t, err)

	alloc, err := f.svc.AutoAllocate(ctx, f.students[2], f.roomID)
	require.NoError(t, err)
	assert.Equal(t, 2, alloc.BedNumber)
}

func TestAutoAllocateRoomFull(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t, 2, 3)

	for _, id := range f.students[:2] {
		_, err := f.svc.AutoAllocate(ctx, id, f.roomID)
		require.NoError(t, err)
	}

	_, err := f.svc.AutoAllocate(ctx, f.students[2], f.roomID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "room is full", apperr.MessageOf(err))
}

func TestDeallocate(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t, 2, 1)

	alloc, err := f.svc.Allocate(ctx, f.students[0], f.roomID, 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.Deallocate(ctx, alloc.ID))

	current, err := f.svc.CurrentAllocation(ctx, f.students[0])
	require.NoError(t, err)
	assert.Nil(t, current)

	// Deallocating twice is a no-op.
	require.NoError(t, f.svc.Deallocate(ctx, alloc.ID))

	t.Run("unknown allocation", func(t *testing.T) {
		err := f.svc.Deallocate(ctx, 9999)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	// The bed is reusable afterwards.
	again, err := f.svc.Allocate(ctx, f.students[0], f.roomID, 1)
	require.NoError(t, err)
	assert.NotEqual(t, alloc.ID, again.ID)
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t, 2, 2)
	roomB := f.addRoom(t, 1)

	first, err := f.svc.Allocate(ctx, f.students[0], f.roomID, 2)
	require.NoError(t, err)

	moved, err := f.svc.Transfer(ctx, f.students[0], roomB)
	require.NoError(t, err)
	assert.Equal(t, roomB, moved.RoomID)
	assert.Equal(t, 1, moved.BedNumber)

	// Exactly one active allocation afterwards; the old one is retired.
	history, err := f.svc.History(ctx, f.students[0])
	require.NoError(t, err)
	require.Len(t, history, 2)
	var activeCount int
	for _, a := range history {
		if a.Active {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)

	old, err := f.mem.Allocations().ByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, old.Active)
}

func TestTransferToFullRoomKeepsCurrentBed(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t, 2, 2)
	roomB := f.addRoom(t, 1)

	_, err := f.svc.Allocate(ctx, f.students[0], roomB, 1)
	require.NoError(t, err)
	before, err := f.svc.Allocate(ctx, f.students[1], f.roomID, 1)
	require.NoError(t, err)

	_, err = f.svc.Transfer(ctx, f.students[1], roomB)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// The failed transfer must not leave the student unhoused.
	current, err := f.svc.CurrentAllocation(ctx, f.students[1])
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, before.ID, current.ID)
	assert.True(t, current.Active)
}

func TestTransferWithinSameRoom(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t, 2, 2)

	_, err := f.svc.Allocate(ctx, f.students[0], f.roomID, 2)
	require.NoError(t, err)
	_, err = f.svc.Allocate(ctx, f.students[1], f.roomID, 1)
	require.NoError(t, err)

	// Room is at capacity, but the student's own bed frees up mid-transfer,
	// so moving within the room still succeeds and lands on the lowest bed.
	moved, err := f.svc.Transfer(ctx, f.students[0], f.roomID)
	require.NoError(t, err)
	assert.Equal(t, f.roomID, moved.RoomID)
	assert.Equal(t, 2, moved.BedNumber)
}

func TestTransferWithoutCurrentAllocation(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t, 2, 1)

	moved, err := f.svc.Transfer(ctx, f.students[0], f.roomID)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.BedNumber)
}

func TestBedMap(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t, 3, 1)

	_, err := f.svc.Allocate(ctx, f.students[0], f.roomID, 2)
	require.NoError(t, err)

	beds, err := f.svc.BedMap(ctx, f.roomID)
	require.NoError(t, err)
	require.Len(t, beds, 3)
	assert.False(t, beds[0].Occupied)
	assert.True(t, beds[1].Occupied)
	assert.False(t, beds[2].Occupied)
	require.NotNil(t, beds[1].Allocation)
	assert.Equal(t, f.students[0], beds[1].Allocation.StudentID)
}

func TestRoomStatus(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t, 4, 2)

	for _, id := range f.students {
		_, err := f.svc.AutoAllocate(ctx, id, f.roomID)
		require.NoError(t, err)
	}

	status, err := f.svc.Status(ctx, f.roomID)
	require.NoError(t, err)
	assert.Equal(t, 4, status.Capacity)
	assert.Equal(t, 2, status.OccupiedBeds)
	assert.Equal(t, 2, status.AvailableBeds)
}

func TestDeleteRoomRemovesAllocations(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t, 2, 1)

	alloc, err := f.svc.Allocate(ctx, f.students[0], f.roomID, 1)
	require.NoError(t, err)
	require.NoError(t, f.svc.Deallocate(ctx, alloc.ID))
	_, err = f.svc.Allocate(ctx, f.students[0], f.roomID, 2)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRoom(ctx, f.roomID))

	_, err = f.mem.Rooms().ByID(ctx, f.roomID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	history, err := f.svc.History(ctx, f.students[0])
	require.NoError(t, err)
	assert.Empty(t, history)
}
