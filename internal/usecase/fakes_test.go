package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memStore is an in-memory database for service tests. Transactions run
// concurrently: every write records how to undo itself and a failed
// transaction replays that log. LockRoom blocks like a transaction scoped
// advisory lock. Scoped repositories only see rows of the transaction's
// tenant, like RLS.
type memStore struct {
	mu sync.Mutex

	tenants  map[uuid.UUID]*entity.Tenant
	rooms    map[uuid.UUID]*entity.Room
	bookings map[uuid.UUID]*entity.Booking
	hours    map[uuid.UUID][]*entity.BusinessHours
	users    map[uuid.UUID]*entity.User
	sessions map[uuid.UUID]*entity.Session
	apiKeys  map[uuid.UUID]*entity.APIKey

	locks     []string
	roomLocks map[string]*sync.Mutex

	// skipConflictCheck makes HasConflict always report a free slot, so
	// only the exclusion constraint in Create/UpdateSchedule protects.
	skipConflictCheck bool
	// skipConstraint turns off the exclusion constraint emulation.
	skipConstraint bool
	// skipRoomLock makes LockRoom return without blocking.
	skipRoomLock bool
	// checkDelay widens the gap between the conflict check and the write.
	checkDelay time.Duration
	// failUpdateStatus makes UpdateStatus fail, to exercise rollback.
	failUpdateStatus error
}

func newMemStore() *memStore {
	return &memStore{
		tenants:   map[uuid.UUID]*entity.Tenant{},
		rooms:     map[uuid.UUID]*entity.Room{},
		bookings:  map[uuid.UUID]*entity.Booking{},
		hours:     map[uuid.UUID][]*entity.BusinessHours{},
		users:     map[uuid.UUID]*entity.User{},
		sessions:  map[uuid.UUID]*entity.Session{},
		apiKeys:   map[uuid.UUID]*entity.APIKey{},
		roomLocks: map[string]*sync.Mutex{},
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Tenant: &memTenantRepo{m: m},
		APIKey: &memAPIKeyRepo{store: m},
		Tx:     &memRunner{m},
	}
}

func (m *memStore) addTenant(name string, status entity.TenantStatus) *entity.Tenant {
	now := time.Now().UTC()
	t := &entity.Tenant{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:         name,
		Subdomain:    name,
		Plan:         entity.PlanFree,
		Status:       status,
		Settings:     map[string]any{},
	}
	m.tenants[t.ID] = t
	return t
}

func (m *memStore) addRoom(tenantID uuid.UUID, name string, pricePerHour float64) *entity.Room {
	now := time.Now().UTC()
	r := &entity.Room{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:     tenantID,
		Name:         name,
		Capacity:     8,
		PricePerHour: pricePerHour,
		IsActive:     true,
	}
	m.rooms[r.ID] = r
	return r
}

// storedBlocking returns the non-cancelled bookings of a room.
func (m *memStore) storedBlocking(roomID uuid.UUID) []*entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*entity.Booking
	for _, b := range m.bookings {
		if b.RoomID == roomID && b.Blocks() {
			out = append(out, b)
		}
	}
	return out
}

// memTx is one open transaction: its undo log and the room locks it holds.
// A nil *memTx means autocommit.
type memTx struct {
	undo []func()
	held map[string]*sync.Mutex
}

func (tx *memTx) onRollback(fn func()) {
	if tx != nil {
		tx.undo = append(tx.undo, fn)
	}
}

// keep records the current state of table[id] so a rollback restores it.
// Callers hold m.mu.
func keep[T any](tx *memTx, table map[uuid.UUID]*T, id uuid.UUID) {
	prev, had := table[id]
	var old T
	if had {
		old = *prev
	}
	tx.onRollback(func() {
		if !had {
			delete(table, id)
			return
		}
		c := old
		table[id] = &c
	})
}

type memRunner struct{ m *memStore }

func (r *memRunner) WithTenant(ctx context.Context, tenantID uuid.UUID, fn func(s *repository.Scoped) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{held: map[string]*sync.Mutex{}}
	defer func() {
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			r.m.mu.Lock()
			for i := len(tx.undo) - 1; i >= 0; i-- {
				tx.undo[i]()
			}
			r.m.mu.Unlock()
		}
		for _, l := range tx.held {
			l.Unlock()
		}
	}()

	scoped := &repository.Scoped{
		Tenant:        &memTenantRepo{m: r.m, tx: tx},
		Room:          &memRoomRepo{m: r.m, scope: tenantID, tx: tx},
		Booking:       &memBookingRepo{m: r.m, scope: tenantID, tx: tx},
		BusinessHours: &memHoursRepo{m: r.m, scope: tenantID, tx: tx},
		User:          &memUserRepo{m: r.m, scope: tenantID, tx: tx},
		Session:       &memSessionRepo{m: r.m, scope: tenantID, tx: tx},
		APIKey:        &memAPIKeyRepo{store: r.m, scope: tenantID, tx: tx},
	}

	return fn(scoped)
}

// ---------- tenants ----------

type memTenantRepo struct {
	m  *memStore
	tx *memTx
}

func (r *memTenantRepo) Create(ctx context.Context, t *entity.Tenant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.tenants {
		if existing.Subdomain == t.Subdomain {
			return repository.ErrSubdomainTaken
		}
	}
	keep(r.tx, r.m.tenants, t.ID)
	c := *t
	r.m.tenants[t.ID] = &c
	return nil
}

func (r *memTenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	t, ok := r.m.tenants[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (r *memTenantRepo) FindBySubdomain(ctx context.Context, subdomain string) (*entity.Tenant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, t := range r.m.tenants {
		if t.Subdomain == subdomain {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memTenantRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.TenantStatus, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	t, ok := r.m.tenants[id]
	if !ok {
		return errors.New("tenant not found")
	}
	keep(r.tx, r.m.tenants, id)
	t.Status = status
	t.UpdatedAt = at
	return nil
}

func (r *memTenantRepo) MergeSettings(ctx context.Context, id uuid.UUID, set map[string]any, remove []string, at time.Time) (*entity.Tenant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	t, ok := r.m.tenants[id]
	if !ok {
		return nil, nil
	}
	keep(r.tx, r.m.tenants, id)

	merged := make(map[string]any, len(t.Settings)+len(set))
	for k, v := range t.Settings {
		merged[k] = v
	}
	for k, v := range set {
		merged[k] = v
	}
	for _, k := range remove {
		delete(merged, k)
	}
	t.Settings = merged
	t.UpdatedAt = at

	c := *t
	return &c, nil
}

// ---------- rooms ----------

type memRoomRepo struct {
	m     *memStore
	scope uuid.UUID
	tx    *memTx
}

func (r *memRoomRepo) visible(room *entity.Room, tenantID uuid.UUID) bool {
	return room.TenantID == tenantID && room.TenantID == r.scope
}

func (r *memRoomRepo) Create(ctx context.Context, room *entity.Room) error {
	if room.TenantID != r.scope {
		return errors.New("new row violates row-level security policy")
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	keep(r.tx, r.m.rooms, room.ID)
	c := *room
	r.m.rooms[room.ID] = &c
	return nil
}

func (r *memRoomRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Room, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	room, ok := r.m.rooms[id]
	if !ok || !r.visible(room, tenantID) {
		return nil, nil
	}
	c := *room
	return &c, nil
}

func (r *memRoomRepo) list(tenantID uuid.UUID, activeOnly bool) []*entity.Room {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []*entity.Room
	for _, room := range r.m.rooms {
		if r.visible(room, tenantID) && (!activeOnly || room.IsActive) {
			c := *room
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *memRoomRepo) List(ctx context.Context, tenantID uuid.UUID, activeOnly bool, limit, offset int) ([]*entity.Room, error) {
	return page(r.list(tenantID, activeOnly), limit, offset), nil
}

func (r *memRoomRepo) Count(ctx context.Context, tenantID uuid.UUID, activeOnly bool) (int64, error) {
	return int64(len(r.list(tenantID, activeOnly))), nil
}

func (r *memRoomRepo) Update(ctx context.Context, room *entity.Room) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	stored, ok := r.m.rooms[room.ID]
	if !ok || !r.visible(stored, room.TenantID) {
		return errors.New("room not found")
	}
	keep(r.tx, r.m.rooms, room.ID)
	c := *room
	r.m.rooms[room.ID] = &c
	return nil
}

func (r *memRoomRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	room, ok := r.m.rooms[id]
	if !ok || !r.visible(room, tenantID) {
		return errors.New("room not found")
	}
	for _, b := range r.m.bookings {
		if b.RoomID == id {
			return repository.ErrRoomInUse
		}
	}
	keep(r.tx, r.m.rooms, id)
	delete(r.m.rooms, id)
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ---------- bookings ----------

type memBookingRepo struct {
	m     *memStore
	scope uuid.UUID
	tx    *memTx
}

func (r *memBookingRepo) visible(b *entity.Booking, tenantID uuid.UUID) bool {
	return b.TenantID == tenantID && b.TenantID == r.scope
}

// overlapsStored emulates the bookings_no_overlap exclusion constraint.
// Callers hold m.mu.
func (r *memBookingRepo) overlapsStored(b *entity.Booking) bool {
	if r.m.skipConstraint || !b.Blocks() {
		return false
	}
	for _, other := range r.m.bookings {
		if other.ID == b.ID || other.TenantID != b.TenantID || other.RoomID != b.RoomID || !other.Blocks() {
			continue
		}
		if other.Interval().Overlaps(b.Interval()) {
			return true
		}
	}
	return false
}

func (r *memBookingRepo) Create(ctx context.Context, b *entity.Booking) error {
	if b.TenantID != r.scope {
		return errors.New("new row violates row-level security policy")
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if room, ok := r.m.rooms[b.RoomID]; !ok || room.TenantID != b.TenantID {
		return errors.New("violates foreign key constraint bookings_room_fk")
	}
	if r.overlapsStored(b) {
		return repository.ErrBookingOverlap
	}
	keep(r.tx, r.m.bookings, b.ID)
	c := *b
	r.m.bookings[b.ID] = &c
	return nil
}

func (r *memBookingRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	b, ok := r.m.bookings[id]
	if !ok || !r.visible(b, tenantID) {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r *memBookingRepo) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(ctx, tenantID, id)
}

func (r *memBookingRepo) filtered(tenantID uuid.UUID, f repository.BookingFilter) []*entity.Booking {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []*entity.Booking
	for _, b := range r.m.bookings {
		if !r.visible(b, tenantID) {
			continue
		}
		if f.RoomID != nil && b.RoomID != *f.RoomID {
			continue
		}
		if f.Status != nil && b.Status != *f.Status {
			continue
		}
		if f.From != nil && !b.EndTime.After(*f.From) {
			continue
		}
		if f.To != nil && !b.StartTime.Before(*f.To) {
			continue
		}
		c := *b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (r *memBookingRepo) List(ctx context.Context, tenantID uuid.UUID, f repository.BookingFilter, limit, offset int) ([]*entity.Booking, error) {
	return page(r.filtered(tenantID, f), limit, offset), nil
}

func (r *memBookingRepo) Count(ctx context.Context, tenantID uuid.UUID, f repository.BookingFilter) (int64, error) {
	return int64(len(r.filtered(tenantID, f))), nil
}

func (r *memBookingRepo) UpdateSchedule(ctx context.Context, b *entity.Booking) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	stored, ok := r.m.bookings[b.ID]
	if !ok || !r.visible(stored, b.TenantID) {
		return errors.New("booking not found")
	}
	if r.overlapsStored(b) {
		return repository.ErrBookingOverlap
	}
	keep(r.tx, r.m.bookings, b.ID)
	stored.RoomID = b.RoomID
	stored.StartTime = b.StartTime
	stored.EndTime = b.EndTime
	stored.TotalPrice = b.TotalPrice
	stored.UpdatedAt = b.UpdatedAt
	return nil
}

func (r *memBookingRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status entity.BookingStatus, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.failUpdateStatus != nil {
		return r.m.failUpdateStatus
	}
	stored, ok := r.m.bookings[id]
	if !ok || !r.visible(stored, tenantID) {
		return errors.New("booking not found")
	}
	keep(r.tx, r.m.bookings, id)
	stored.Status = status
	stored.UpdatedAt = at
	if status == entity.BookingStatusCancelled {
		stored.CancelledAt = &at
	}
	return nil
}

// LockRoom blocks until no other open transaction holds the room, and keeps
// it until this transaction ends. Taking it twice in one transaction is a no-op.
func (r *memBookingRepo) LockRoom(ctx context.Context, tenantID, roomID uuid.UUID) error {
	key := "booking:" + tenantID.String() + ":" + roomID.String()

	r.m.mu.Lock()
	r.m.locks = append(r.m.locks, key)
	l, ok := r.m.roomLocks[key]
	if !ok {
		l = &sync.Mutex{}
		r.m.roomLocks[key] = l
	}
	skip := r.m.skipRoomLock
	r.m.mu.Unlock()

	if skip {
		return nil
	}
	if r.tx == nil {
		return errors.New("advisory lock outside a transaction")
	}
	if _, held := r.tx.held[key]; held {
		return nil
	}
	l.Lock()
	r.tx.held[key] = l
	return nil
}

func (r *memBookingRepo) HasConflict(ctx context.Context, tenantID, roomID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	conflict := r.hasConflict(tenantID, roomID, start, end, excludeID)
	if r.m.checkDelay > 0 {
		time.Sleep(r.m.checkDelay)
	}
	return conflict, nil
}

func (r *memBookingRepo) hasConflict(tenantID, roomID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) bool {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.skipConflictCheck {
		return false
	}
	candidate := entity.Interval{Start: start, End: end}
	for _, b := range r.m.bookings {
		if !r.visible(b, tenantID) || b.RoomID != roomID || !b.Blocks() {
			continue
		}
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if b.Interval().Overlaps(candidate) {
			return true
		}
	}
	return false
}

func (r *memBookingRepo) CountByRoom(ctx context.Context, tenantID, roomID uuid.UUID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var n int64
	for _, b := range r.m.bookings {
		if r.visible(b, tenantID) && b.RoomID == roomID {
			n++
		}
	}
	return n, nil
}

func (r *memBookingRepo) CountCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var n int64
	for _, b := range r.m.bookings {
		if r.visible(b, tenantID) && b.Blocks() && !b.CreatedAt.Before(from) && b.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

// ---------- business hours ----------

type memHoursRepo struct {
	m     *memStore
	scope uuid.UUID
	tx    *memTx
}

func (r *memHoursRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*entity.BusinessHours, error) {
	if tenantID != r.scope {
		return nil, nil
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	return r.m.hours[tenantID], nil
}

func (r *memHoursRepo) ReplaceAll(ctx context.Context, tenantID uuid.UUID, hours []*entity.BusinessHours) error {
	if tenantID != r.scope {
		return errors.New("new row violates row-level security policy")
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	prev, had := r.m.hours[tenantID]
	r.tx.onRollback(func() {
		if !had {
			delete(r.m.hours, tenantID)
			return
		}
		r.m.hours[tenantID] = prev
	})
	r.m.hours[tenantID] = hours
	return nil
}

// ---------- users & sessions ----------

type memUserRepo struct {
	m     *memStore
	scope uuid.UUID
	tx    *memTx
}

func (r *memUserRepo) Create(ctx context.Context, u *entity.User) error {
	if u.TenantID != r.scope {
		return errors.New("new row violates row-level security policy")
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	keep(r.tx, r.m.users, u.ID)
	c := *u
	r.m.users[u.ID] = &c
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok || u.TenantID != tenantID || tenantID != r.scope {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.TenantID == tenantID && tenantID == r.scope && u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

type memSessionRepo struct {
	m     *memStore
	scope uuid.UUID
	tx    *memTx
}

func (r *memSessionRepo) Create(ctx context.Context, s *entity.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	keep(r.tx, r.m.sessions, s.ID)
	c := *s
	r.m.sessions[s.ID] = &c
	return nil
}

func (r *memSessionRepo) FindValidSession(ctx context.Context, tenantID, id uuid.UUID) (*entity.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	s, ok := r.m.sessions[id]
	if !ok || s.TenantID != tenantID || tenantID != r.scope || !s.Valid(time.Now()) {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (r *memSessionRepo) Revoke(ctx context.Context, tenantID, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	s, ok := r.m.sessions[id]
	if !ok || s.TenantID != tenantID || s.RevokedAt != nil {
		return errors.New("session not found or already revoked")
	}
	keep(r.tx, r.m.sessions, id)
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (r *memSessionRepo) CleanExpiredSessions(ctx context.Context, tenantID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for id, s := range r.m.sessions {
		if s.TenantID == tenantID && !s.Valid(time.Now()) {
			keep(r.tx, r.m.sessions, id)
			delete(r.m.sessions, id)
		}
	}
	return nil
}

// ---------- api keys ----------

// memAPIKeyRepo with a zero scope is the tenant-less lookup repository.
type memAPIKeyRepo struct {
	store *memStore
	scope uuid.UUID
	tx    *memTx
}

func (r *memAPIKeyRepo) Create(ctx context.Context, k *entity.APIKey) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	keep(r.tx, r.store.apiKeys, k.ID)
	c := *k
	r.store.apiKeys[k.ID] = &c
	return nil
}

func (r *memAPIKeyRepo) FindByPrefix(ctx context.Context, prefix string) (*entity.APIKey, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, k := range r.store.apiKeys {
		if k.Prefix == prefix {
			c := *k
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memAPIKeyRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*entity.APIKey, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.APIKey
	for _, k := range r.store.apiKeys {
		if k.TenantID == tenantID {
			c := *k
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memAPIKeyRepo) Revoke(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	k, ok := r.store.apiKeys[id]
	if !ok || k.TenantID != tenantID {
		return errors.New("api key not found")
	}
	keep(r.tx, r.store.apiKeys, id)
	k.RevokedAt = &at
	return nil
}

func (r *memAPIKeyRepo) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if k, ok := r.store.apiKeys[id]; ok {
		keep(r.tx, r.store.apiKeys, id)
		k.LastUsedAt = &at
	}
	return nil
}

// ---------- helpers ----------

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// fixedClock returns a now func pinned to t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
