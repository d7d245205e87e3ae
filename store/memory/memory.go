// Package memory is an in-memory store.Store used by tests. It mirrors the
// Postgres semantics the engines rely on, including the uniqueness backstops
// on active allocations and (student, month) fees.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omerfarooq187/hostel-management/apperr"
	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/store"
)

type Memory struct {
	mu sync.Mutex

	users       map[uint]models.User
	hostels     map[uint]models.Hostel
	rooms       map[uint]models.Room
	students    map[uint]models.Student
	allocations map[uint]models.Allocation
	feeConfigs  map[uint]models.FeeConfig
	fees        map[uint]models.Fee
	kitchen     map[uint]models.KitchenInventory
	tokens      map[uint]models.EmailVerificationToken
	notices     map[uint]models.Notice

	nextID uint
}

func New() *Memory {
	return &Memory{
		users:       map[uint]models.User{},
		hostels:     map[uint]models.Hostel{},
		rooms:       map[uint]models.Room{},
		students:    map[uint]models.Student{},
		allocations: map[uint]models.Allocation{},
		feeConfigs:  map[uint]models.FeeConfig{},
		fees:        map[uint]models.Fee{},
		kitchen:     map[uint]models.KitchenInventory{},
		tokens:      map[uint]models.EmailVerificationToken{},
		notices:     map[uint]models.Notice{},
	}
}

func (m *Memory) id() uint {
	m.nextID++
	return m.nextID
}

func (m *Memory) Users() store.UserStore             { return users{m} }
func (m *Memory) Hostels() store.HostelStore         { return hostels{m} }
func (m *Memory) Rooms() store.RoomStore             { return rooms{m} }
func (m *Memory) Students() store.StudentStore       { return students{m} }
func (m *Memory) Allocations() store.AllocationStore { return allocations{m} }
func (m *Memory) FeeConfigs() store.FeeConfigStore   { return feeConfigs{m} }
func (m *Memory) Fees() store.FeeStore               { return fees{m} }
func (m *Memory) Kitchen() store.KitchenStore        { return kitchen{m} }
func (m *Memory) Tokens() store.TokenStore           { return tokens{m} }
func (m *Memory) Notices() store.NoticeStore         { return notices{m} }

// InTx runs fn against the same store; each store method locks individually.
// Rollback is not emulated; the engines are written to validate before
// writing, and the tests assert exactly that.
func (m *Memory) InTx(ctx context.Context, fn func(store.Store) error) error {
	return fn(m)
}

/* ---------------- users ---------------- */

type users struct{ m *Memory }

func (s users) Create(ctx context.Context, u *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, other := range s.m.users {
		if strings.EqualFold(other.Email, u.Email) {
			return apperr.Conflict("user already exists")
		}
	}
	u.ID = s.m.id()
	u.CreatedAt = time.Now()
	s.m.users[u.ID] = *u
	return nil
}

func (s users) ByID(ctx context.Context, id uint) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (s users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s users) Update(ctx context.Context, u *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.users[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	s.m.users[u.ID] = *u
	return nil
}

func (s users) CountByRole(ctx context.Context, role string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for _, u := range s.m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

/* ---------------- hostels ---------------- */

type hostels struct{ m *Memory }

func (s hostels) Create(ctx context.Context, h *models.Hostel) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, other := range s.m.hostels {
		if other.Name == h.Name {
			return apperr.Conflict("hostel already exists")
		}
	}
	h.ID = s.m.id()
	s.m.hostels[h.ID] = *h
	return nil
}

func (s hostels) ByID(ctx context.Context, id uint) (*models.Hostel, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	h, ok := s.m.hostels[id]
	if !ok {
		return nil, apperr.NotFound("hostel not found")
	}
	return &h, nil
}

func (s hostels) All(ctx context.Context) ([]models.Hostel, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]models.Hostel, 0, len(s.m.hostels))
	for _, h := range s.m.hostels {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s hostels) Update(ctx context.Context, h *models.Hostel) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.hostels[h.ID]; !ok {
		return apperr.NotFound("hostel not found")
	}
	s.m.hostels[h.ID] = *h
	return nil
}

/* ---------------- rooms ---------------- */

type rooms struct{ m *Memory }

func (s rooms) Create(ctx context.Context, r *models.Room) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r.ID = s.m.id()
	s.m.rooms[r.ID] = *r
	return nil
}

func (s rooms) ByID(ctx context.Context, id uint) (*models.Room, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.rooms[id]
	if !ok {
		return nil, apperr.NotFound("room not found")
	}
	return &r, nil
}

func (s rooms) ByHostel(ctx context.Context, hostelID uint) ([]models.Room, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Room
	for _, r := range s.m.rooms {
		if r.HostelID == hostelID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s rooms) Update(ctx context.Context, r *models.Room) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.rooms[r.ID]; !ok {
		return apperr.NotFound("room not found")
	}
	s.m.rooms[r.ID] = *r
	return nil
}

func (s rooms) Delete(ctx context.Context, id uint) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.rooms, id)
	return nil
}

/* ---------------- students ---------------- */

type students struct{ m *Memory }

func (s students) Create(ctx context.Context, st *models.Student) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, other := range s.m.students {
		if other.UserID == st.UserID {
			return apperr.Conflict("student already exists")
		}
	}
	st.ID = s.m.id()
	s.m.students[st.ID] = *st
	return nil
}

func (s students) ByID(ctx context.Context, id uint) (*models.Student, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	st, ok := s.m.students[id]
	if !ok {
		return nil, apperr.NotFound("student not found")
	}
	return &st, nil
}

func (s students) ByUserID(ctx context.Context, userID uint) (*models.Student, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, st := range s.m.students {
		if st.UserID == userID {
			st := st
			return &st, nil
		}
	}
	return nil, nil
}

func (s students) ByUserEmail(ctx context.Context, email string) (*models.Student, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, st := range s.m.students {
		if u, ok := s.m.users[st.UserID]; ok && strings.EqualFold(u.Email, email) {
			st := st
			u := u
			st.User = &u
			return &st, nil
		}
	}
	return nil, nil
}

func (s students) ByHostel(ctx context.Context, hostelID uint) ([]models.Student, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Student
	for _, st := range s.m.students {
		if st.HostelID == hostelID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s students) Update(ctx context.Context, st *models.Student) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.students[st.ID]; !ok {
		return apperr.NotFound("student not found")
	}
	s.m.students[st.ID] = *st
	return nil
}

func (s students) Delete(ctx context.Context, id uint) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.students, id)
	return nil
}

/* ---------------- allocations ---------------- */

type allocations struct{ m *Memory }

func (s allocations) Create(ctx context.Context, a *models.Allocation) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if a.Active {
		for _, other := range s.m.allocations {
			if !other.Active {
				continue
			}
			if other.StudentID == a.StudentID {
				return apperr.Conflict("student already has an active allocation")
			}
			if other.RoomID == a.RoomID && other.BedNumber == a.BedNumber {
				return apperr.Conflict("bed already occupied")
			}
		}
	}
	a.ID = s.m.id()
	s.m.allocations[a.ID] = *a
	return nil
}

func (s allocations) ByID(ctx context.Context, id uint) (*models.Allocation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a, ok := s.m.allocations[id]
	if !ok {
		return nil, apperr.NotFound("allocation not found")
	}
	return &a, nil
}

func (s allocations) ActiveByStudent(ctx context.Context, studentID uint) (*models.Allocation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, a := range s.m.allocations {
		if a.StudentID == studentID && a.Active {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (s allocations) ActiveByRoomAndBed(ctx context.Context, roomID uint, bed int) (*models.Allocation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, a := range s.m.allocations {
		if a.RoomID == roomID && a.BedNumber == bed && a.Active {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (s allocations) ActiveByRoom(ctx context.Context, roomID uint) ([]models.Allocation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Allocation
	for _, a := range s.m.allocations {
		if a.RoomID == roomID && a.Active {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BedNumber < out[j].BedNumber })
	return out, nil
}

func (s allocations) CountActiveByRoom(ctx context.Context, roomID uint) (int64, error) {
	as, _ := s.ActiveByRoom(ctx, roomID)
	return int64(len(as)), nil
}

func (s allocations) CountActiveByHostel(ctx context.Context, hostelID uint) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for _, a := range s.m.allocations {
		if !a.Active {
			continue
		}
		if r, ok := s.m.rooms[a.RoomID]; ok && r.HostelID == hostelID {
			n++
		}
	}
	return n, nil
}

func (s allocations) HistoryByStudent(ctx context.Context, studentID uint) ([]models.Allocation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Allocation
	for _, a := range s.m.allocations {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s allocations) HistoryByHostel(ctx context.Context, hostelID uint) ([]models.Allocation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Allocation
	for _, a := range s.m.allocations {
		if st, ok := s.m.students[a.StudentID]; ok && st.HostelID == hostelID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s allocations) Update(ctx context.Context, a *models.Allocation) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.allocations[a.ID]; !ok {
		return apperr.NotFound("allocation not found")
	}
	s.m.allocations[a.ID] = *a
	return nil
}

func (s allocations) DeleteByRoom(ctx context.Context, roomID uint) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for id, a := range s.m.allocations {
		if a.RoomID == roomID {
			delete(s.m.allocations, id)
		}
	}
	return nil
}

/* ---------------- fee configs ---------------- */

type feeConfigs struct{ m *Memory }

func (s feeConfigs) Create(ctx context.Context, c *models.FeeConfig) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c.ID = s.m.id()
	s.m.feeConfigs[c.ID] = *c
	return nil
}

func (s feeConfigs) ActiveByHostel(ctx context.Context, hostelID uint) (*models.FeeConfig, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, c := range s.m.feeConfigs {
		if c.HostelID == hostelID && c.Active {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (s feeConfigs) LatestEffective(ctx context.Context, hostelID uint, asOf time.Time) (*models.FeeConfig, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var best *models.FeeConfig
	for _, c := range s.m.feeConfigs {
		if c.HostelID != hostelID || c.EffectiveFrom.After(asOf) {
			continue
		}
		c := c
		if best == nil ||
			c.EffectiveFrom.After(best.EffectiveFrom) ||
			(c.EffectiveFrom.Equal(best.EffectiveFrom) && c.ID > best.ID) {
			best = &c
		}
	}
	return best, nil
}

func (s feeConfigs) ByHostel(ctx context.Context, hostelID uint) ([]models.FeeConfig, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.FeeConfig
	for _, c := range s.m.feeConfigs {
		if c.HostelID == hostelID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s feeConfigs) Update(ctx context.Context, c *models.FeeConfig) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.feeConfigs[c.ID]; !ok {
		return apperr.NotFound("fee config not found")
	}
	s.m.feeConfigs[c.ID] = *c
	return nil
}

/* ---------------- fees ---------------- */

type fees struct{ m *Memory }

func (s fees) Create(ctx context.Context, f *models.Fee) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, other := range s.m.fees {
		if other.StudentID == f.StudentID && other.Month == f.Month {
			return apperr.Conflict("fee already exists")
		}
	}
	f.ID = s.m.id()
	s.m.fees[f.ID] = *f
	return nil
}

func (s fees) ByID(ctx context.Context, id uint) (*models.Fee, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	f, ok := s.m.fees[id]
	if !ok {
		return nil, apperr.NotFound("fee not found")
	}
	return &f, nil
}

func (s fees) ByIDAndStudent(ctx context.Context, id, studentID uint) (*models.Fee, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	f, ok := s.m.fees[id]
	if !ok || f.StudentID != studentID {
		return nil, apperr.NotFound("fee not found")
	}
	return &f, nil
}

func (s fees) ExistsByStudentAndMonth(ctx context.Context, studentID uint, month string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, f := range s.m.fees {
		if f.StudentID == studentID && f.Month == month {
			return true, nil
		}
	}
	return false, nil
}

func (s fees) ByStudent(ctx context.Context, studentID uint) ([]models.Fee, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Fee
	for _, f := range s.m.fees {
		if f.StudentID == studentID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s fees) ByHostel(ctx context.Context, hostelID uint) ([]models.Fee, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Fee
	for _, f := range s.m.fees {
		if f.HostelID == hostelID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s fees) ByStatus(ctx context.Context, status string) ([]models.Fee, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Fee
	for _, f := range s.m.fees {
		if f.Status == status {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s fees) Overdue(ctx context.Context, asOf time.Time) ([]models.Fee, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Fee
	for _, f := range s.m.fees {
		if f.Status != models.FeePaid && f.DueDate.Before(asOf) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (s fees) SumByHostelAndStatus(ctx context.Context, hostelID uint, status string) (decimal.Decimal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sum := decimal.Zero
	for _, f := range s.m.fees {
		if f.HostelID == hostelID && f.Status == status {
			sum = sum.Add(f.Amount)
		}
	}
	return sum, nil
}

func (s fees) SumByStudentAndStatus(ctx context.Context, studentID uint, status string) (decimal.Decimal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sum := decimal.Zero
	for _, f := range s.m.fees {
		if f.StudentID == studentID && f.Status == status {
			sum = sum.Add(f.Amount)
		}
	}
	return sum, nil
}

func (s fees) Update(ctx context.Context, f *models.Fee) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.fees[f.ID]; !ok {
		return apperr.NotFound("fee not found")
	}
	s.m.fees[f.ID] = *f
	return nil
}

func (s fees) Delete(ctx context.Context, id uint) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.fees, id)
	return nil
}

/* ---------------- kitchen ---------------- */

type kitchen struct{ m *Memory }

func (s kitchen) Create(ctx context.Context, item *models.KitchenInventory) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, other := range s.m.kitchen {
		if other.HostelID == item.HostelID && strings.EqualFold(other.ItemName, item.ItemName) {
			return apperr.Conflict("inventory item already exists")
		}
	}
	item.ID = s.m.id()
	item.LastUpdated = time.Now()
	s.m.kitchen[item.ID] = *item
	return nil
}

func (s kitchen) ByID(ctx context.Context, id uint) (*models.KitchenInventory, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	item, ok := s.m.kitchen[id]
	if !ok {
		return nil, apperr.NotFound("inventory item not found")
	}
	return &item, nil
}

func (s kitchen) ExistsByNameAndHostel(ctx context.Context, name string, hostelID uint) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, item := range s.m.kitchen {
		if item.HostelID == hostelID && strings.EqualFold(item.ItemName, name) {
			return true, nil
		}
	}
	return false, nil
}

func (s kitchen) SearchByName(ctx context.Context, name string, hostelID uint) ([]models.KitchenInventory, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.KitchenInventory
	for _, item := range s.m.kitchen {
		if item.HostelID == hostelID && strings.Contains(strings.ToLower(item.ItemName), strings.ToLower(name)) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out, nil
}

func (s kitchen) All(ctx context.Context) ([]models.KitchenInventory, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]models.KitchenInventory, 0, len(s.m.kitchen))
	for _, item := range s.m.kitchen {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s kitchen) Update(ctx context.Context, item *models.KitchenInventory) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.kitchen[item.ID]; !ok {
		return apperr.NotFound("inventory item not found")
	}
	item.LastUpdated = time.Now()
	s.m.kitchen[item.ID] = *item
	return nil
}

func (s kitchen) Delete(ctx context.Context, id uint) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.kitchen, id)
	return nil
}

/* ---------------- tokens ---------------- */

type tokens struct{ m *Memory }

func (s tokens) Create(ctx context.Context, t *models.EmailVerificationToken) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	t.ID = s.m.id()
	s.m.tokens[t.ID] = *t
	return nil
}

func (s tokens) ByToken(ctx context.Context, token string) (*models.EmailVerificationToken, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, t := range s.m.tokens {
		if t.Token == token {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (s tokens) Delete(ctx context.Context, id uint) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.tokens, id)
	return nil
}

/* ---------------- notices ---------------- */

type notices struct{ m *Memory }

func (s notices) Create(ctx context.Context, n *models.Notice) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	n.ID = s.m.id()
	n.CreatedAt = time.Now()
	s.m.notices[n.ID] = *n
	return nil
}

func (s notices) All(ctx context.Context) ([]models.Notice, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]models.Notice, 0, len(s.m.notices))
	for _, n := range s.m.notices {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s notices) Delete(ctx context.Context, id uint) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.notices, id)
	return nil
}
