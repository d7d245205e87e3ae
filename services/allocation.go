package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/omerfarooq187/hostel-management/apperr"
	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/store"
)

// AllocationService assigns students to room/bed slots. Invariants: at most
// one active allocation per student, at most one occupant per (room, bed),
// bed number within room capacity. Every mutation runs in one store
// transaction; the DB uniqueness backstops turn lost races into conflicts.
type AllocationService struct {
	store store.Store
	now   func() time.Time
	log   zerolog.Logger
}

func NewAllocationService(s store.Store, now func() time.Time, log zerolog.Logger) *AllocationService {
	if now == nil {
		now = time.Now
	}
	return &AllocationService{store: s, now: now, log: log}
}

// BedStatus is one slot of a room's bed map.
type BedStatus struct {
	BedNumber  int                `json:"bed_number"`
	Occupied   bool               `json:"occupied"`
	Allocation *models.Allocation `json:"allocation,omitempty"`
}

// RoomStatus summarizes a room's occupancy.
type RoomStatus struct {
	RoomID        uint   `json:"room_id"`
	Block         string `json:"block"`
	RoomNumber    string `json:"room_number"`
	Capacity      int    `json:"capacity"`
	OccupiedBeds  int    `json:"occupied_beds"`
	AvailableBeds int    `json:"available_beds"`
}

// Allocate puts a student into a specific bed.
func (s *AllocationService) Allocate(ctx context.Context, studentID, roomID uint, bedNumber int) (*models.Allocation, error) {
	var out *models.Allocation
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Students().ByID(ctx, studentID); err != nil {
			return err
		}
		room, err := tx.Rooms().ByID(ctx, roomID)
		if err != nil {
			return err
		}
		if bedNumber < 1 || bedNumber > room.Capacity {
			return apperr.Validation("invalid bed number for this room")
		}
		current, err := tx.Allocations().ActiveByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		if current != nil {
			return apperr.Conflict("student already has an active allocation")
		}
		occupant, err := tx.Allocations().ActiveByRoomAndBed(ctx, roomID, bedNumber)
		if err != nil {
			return err
		}
		if occupant != nil {
			return apperr.Conflict("bed already occupied")
		}

		alloc := &models.Allocation{
			StudentID:   studentID,
			RoomID:      roomID,
			BedNumber:   bedNumber,
			Active:      true,
			AllocatedAt: s.now(),
		}
		if err := tx.Allocations().Create(ctx, alloc); err != nil {
			return err
		}
		out = alloc
		return nil
	})
	return out, err
}

// AutoAllocate picks the lowest free bed in the room. The policy is fixed:
// ascending scan from bed 1, first gap wins.
func (s *AllocationService) AutoAllocate(ctx context.Context, studentID, roomID uint) (*models.Allocation, error) {
	var out *models.Allocation
	err := s.store.InTx(ctx, func(tx store.Store) error {
		alloc, err := s.autoAllocateIn(ctx, tx, studentID, roomID)
		if err != nil {
			return err
		}
		out = alloc
		return nil
	})
	return out, err
}

func (s *AllocationService) autoAllocateIn(ctx context.Context, tx store.Store, studentID, roomID uint) (*models.Allocation, error) {
	if _, err := tx.Students().ByID(ctx, studentID); err != nil {
		return nil, err
	}
	room, err := tx.Rooms().ByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	current, err := tx.Allocations().ActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return nil, apperr.Conflict("student already has an active allocation")
	}

	active, err := tx.Allocations().ActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(active) >= room.Capacity {
		return nil, apperr.Conflict("room is full")
	}

	occupied := make([]bool, room.Capacity+1)
	for _, a := range active {
		if a.BedNumber >= 1 && a.BedNumber <= room.Capacity {
			occupied[a.BedNumber] = true
		}
	}
	freeBed := 0
	for bed := 1; bed <= room.Capacity; bed++ {
		if !occupied[bed] {
			freeBed = bed
			break
		}
	}
	if freeBed == 0 {
		// unreachable given the capacity check, kept as a guard
		return nil, apperr.Conflict("no free bed available")
	}

	alloc := &models.Allocation{
		StudentID:   studentID,
		RoomID:      roomID,
		BedNumber:   freeBed,
		Active:      true,
		AllocatedAt: s.now(),
	}
	if err := tx.Allocations().Create(ctx, alloc); err != nil {
		return nil, err
	}
	return alloc, nil
}

// Deallocate ends an allocation. Deallocating an already-inactive allocation
// is a no-op, not an error.
func (s *AllocationService) Deallocate(ctx context.Context, allocationID uint) error {
	return s.store.InTx(ctx, func(tx store.Store) error {
		alloc, err := tx.Allocations().ByID(ctx, allocationID)
		if err != nil {
			return err
		}
		if !alloc.Active {
			return nil
		}
		alloc.Active = false
		return tx.Allocations().Update(ctx, alloc)
	})
}

// Transfer moves a student to the lowest free bed of another room. The
// target room's capacity is checked before the old allocation is touched, so
// a failed transfer never leaves the student unhoused. Having no current
// allocation is fine; the transfer degrades to a plain auto-allocate.
func (s *AllocationService) Transfer(ctx context.Context, studentID, newRoomID uint) (*models.Allocation, error) {
	var out *models.Allocation
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Students().ByID(ctx, studentID); err != nil {
			return err
		}
		room, err := tx.Rooms().ByID(ctx, newRoomID)
		if err != nil {
			return err
		}
		count, err := tx.Allocations().CountActiveByRoom(ctx, newRoomID)
		if err != nil {
			return err
		}
		current, err := tx.Allocations().ActiveByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		// The student's own bed frees up on a same-room transfer, so it does
		// not count against the target capacity.
		if current != nil && current.RoomID == newRoomID {
			count--
		}
		if count >= int64(room.Capacity) {
			return apperr.Conflict("room is full")
		}
		if current != nil {
			current.Active = false
			current.Room = nil
			if err := tx.Allocations().Update(ctx, current); err != nil {
				return err
			}
		}

		alloc, err := s.autoAllocateIn(ctx, tx, studentID, newRoomID)
		if err != nil {
			return err
		}
		out = alloc
		return nil
	})
	if err == nil {
		s.log.Info().Uint("student_id", studentID).Uint("room_id", newRoomID).
			Int("bed", out.BedNumber).Msg("student transferred")
	}
	return out, err
}

// CurrentAllocation returns the student's active allocation, nil when none.
func (s *AllocationService) CurrentAllocation(ctx context.Context, studentID uint) (*models.Allocation, error) {
	if _, err := s.store.Students().ByID(ctx, studentID); err != nil {
		return nil, err
	}
	return s.store.Allocations().ActiveByStudent(ctx, studentID)
}

// History lists every allocation the student ever had, most recent first.
func (s *AllocationService) History(ctx context.Context, studentID uint) ([]models.Allocation, error) {
	if _, err := s.store.Students().ByID(ctx, studentID); err != nil {
		return nil, err
	}
	return s.store.Allocations().HistoryByStudent(ctx, studentID)
}

// BedMap returns one entry per bed slot, occupied or not.
func (s *AllocationService) BedMap(ctx context.Context, roomID uint) ([]BedStatus, error) {
	room, err := s.store.Rooms().ByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.Allocations().ActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	byBed := make(map[int]*models.Allocation, len(active))
	for i := range active {
		byBed[active[i].BedNumber] = &active[i]
	}
	beds := make([]BedStatus, 0, room.Capacity)
	for bed := 1; bed <= room.Capacity; bed++ {
		beds = append(beds, BedStatus{
			BedNumber:  bed,
			Occupied:   byBed[bed] != nil,
			Allocation: byBed[bed],
		})
	}
	return beds, nil
}

// Status reports occupied and available bed counts for a room.
func (s *AllocationService) Status(ctx context.Context, roomID uint) (*RoomStatus, error) {
	room, err := s.store.Rooms().ByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Allocations().CountActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &RoomStatus{
		RoomID:        room.ID,
		Block:         room.Block,
		RoomNumber:    room.RoomNumber,
		Capacity:      room.Capacity,
		OccupiedBeds:  int(count),
		AvailableBeds: room.Capacity - int(count),
	}, nil
}

// DeleteRoom removes a room together with its entire allocation history,
// active or not. The only path that physically deletes allocations.
func (s *AllocationService) DeleteRoom(ctx context.Context, roomID uint) error {
	return s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Rooms().ByID(ctx, roomID); err != nil {
			return err
		}
		if err := tx.Allocations().DeleteByRoom(ctx, roomID); err != nil {
			return err
		}
		return tx.Rooms().Delete(ctx, roomID)
	})
}
