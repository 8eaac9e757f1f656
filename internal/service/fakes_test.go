package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

var (
	admin        = model.OwnerRef{Kind: model.KindAdmin, ID: 1}
	manager      = model.OwnerRef{Kind: model.KindManager, ID: 1}
	otherManager = model.OwnerRef{Kind: model.KindManager, ID: 2}
	reception    = model.OwnerRef{Kind: model.KindReceptionist, ID: 1}
	guest        = model.OwnerRef{Kind: model.KindClient, ID: 1}
	otherGuest   = model.OwnerRef{Kind: model.KindClient, ID: 2}
)

// fixedClock pins "now" to 2026-03-01 10:00 UTC.
func fixedClock() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

func scoped(owner *model.OwnerRef, ref model.OwnerRef) bool {
	return owner == nil || owner.Is(ref)
}

type fakeFloors struct {
	mu     sync.Mutex
	rows   map[uint64]*model.Floor
	nextID uint64
	rooms  *fakeRooms
}

func newFakeFloors() *fakeFloors { return &fakeFloors{rows: map[uint64]*model.Floor{}} }

func (f *fakeFloors) Create(_ context.Context, fl *model.Floor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	fl.ID = f.nextID
	fl.Number = model.FormatFloorNumber(int(f.nextID))
	cp := *fl
	f.rows[fl.ID] = &cp
	return nil
}

func (f *fakeFloors) GetByID(_ context.Context, id uint64) (*model.Floor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *fl
	return &cp, nil
}

func (f *fakeFloors) List(ctx context.Context, filter repository.FloorFilter, _ repository.Page) ([]model.Floor, int, error) {
	out, _ := f.Options(ctx, filter.Owner)
	return out, len(out), nil
}

func (f *fakeFloors) Options(_ context.Context, owner *model.OwnerRef) ([]model.Floor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Floor
	for id := uint64(1); id <= f.nextID; id++ {
		if fl, ok := f.rows[id]; ok && scoped(owner, fl.Owner) {
			out = append(out, *fl)
		}
	}
	return out, nil
}

func (f *fakeFloors) Stats(ctx context.Context, owner *model.OwnerRef) (model.FloorStats, error) {
	out, _ := f.Options(ctx, owner)
	return model.FloorStats{Total: len(out), Empty: len(out)}, nil
}

func (f *fakeFloors) Update(_ context.Context, fl *model.Floor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[fl.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *fl
	f.rows[fl.ID] = &cp
	return nil
}

func (f *fakeFloors) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	if f.rooms != nil && f.rooms.onFloor(id) {
		return repository.ErrConflict
	}
	delete(f.rows, id)
	return nil
}

type fakeRooms struct {
	mu       sync.Mutex
	rows     map[uint64]*model.Room
	nextID   uint64
	reserved map[uint64]bool
}

func newFakeRooms() *fakeRooms {
	return &fakeRooms{rows: map[uint64]*model.Room{}, reserved: map[uint64]bool{}}
}

func (f *fakeRooms) onFloor(floorID uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rm := range f.rows {
		if rm.FloorID == floorID {
			return true
		}
	}
	return false
}

func (f *fakeRooms) Create(_ context.Context, rm *model.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.Number == rm.Number {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	rm.ID = f.nextID
	rm.IsAvailable = true
	cp := *rm
	f.rows[rm.ID] = &cp
	return nil
}

func (f *fakeRooms) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rm, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rm
	return &cp, nil
}

func (f *fakeRooms) List(_ context.Context, filter repository.RoomFilter, _ repository.Page) ([]model.Room, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Room
	for id := uint64(1); id <= f.nextID; id++ {
		if rm, ok := f.rows[id]; ok && scoped(filter.Owner, rm.Owner) {
			out = append(out, *rm)
		}
	}
	return out, len(out), nil
}

func (f *fakeRooms) ListAvailable(_ context.Context, _ repository.Page) ([]model.Room, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Room
	for id := uint64(1); id <= f.nextID; id++ {
		if rm, ok := f.rows[id]; ok && rm.IsAvailable {
			out = append(out, *rm)
		}
	}
	return out, len(out), nil
}

func (f *fakeRooms) Stats(ctx context.Context, owner *model.OwnerRef) (model.RoomStats, error) {
	rooms, _, _ := f.List(ctx, repository.RoomFilter{Owner: owner}, repository.Page{})
	var st model.RoomStats
	for _, rm := range rooms {
		st.Total++
		if !rm.IsAvailable {
			st.Reserved++
		}
	}
	st.Available = st.Total - st.Reserved
	return st, nil
}

func (f *fakeRooms) Update(_ context.Context, rm *model.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.rows[rm.ID]
	if !ok {
		return repository.ErrNotFound
	}
	rm.Number = existing.Number
	rm.IsAvailable = existing.IsAvailable
	cp := *rm
	f.rows[rm.ID] = &cp
	return nil
}

func (f *fakeRooms) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	if f.reserved[id] {
		return repository.ErrConflict
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeRooms) take(id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rm, ok := f.rows[id]
	if !ok || !rm.IsAvailable {
		return repository.ErrRoomUnavailable
	}
	rm.IsAvailable = false
	return nil
}

func (f *fakeRooms) release(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rm, ok := f.rows[id]; ok {
		rm.IsAvailable = true
	}
}

func (f *fakeRooms) available(id uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	rm, ok := f.rows[id]
	return ok && rm.IsAvailable
}

type fakeReservations struct {
	mu     sync.Mutex
	rows   map[uint64]*model.Reservation
	nextID uint64
	rooms  *fakeRooms
}

func newFakeReservations(rooms *fakeRooms) *fakeReservations {
	return &fakeReservations{rows: map[uint64]*model.Reservation{}, rooms: rooms}
}

func (f *fakeReservations) Create(_ context.Context, res *model.Reservation, hold bool) error {
	if hold {
		if err := f.rooms.take(res.RoomID); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	res.ID = f.nextID
	cp := *res
	f.rows[res.ID] = &cp
	f.rooms.mu.Lock()
	f.rooms.reserved[res.RoomID] = true
	f.rooms.mu.Unlock()
	return nil
}

func (f *fakeReservations) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.rows[id]
	if !ok || res.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (f *fakeReservations) List(_ context.Context, filter repository.ReservationFilter, _ repository.Page) ([]model.Reservation, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for id := uint64(1); id <= f.nextID; id++ {
		res, ok := f.rows[id]
		if !ok || res.DeletedAt != nil {
			continue
		}
		if filter.ClientID != 0 && res.ClientID != filter.ClientID {
			continue
		}
		out = append(out, *res)
	}
	return out, len(out), nil
}

func (f *fakeReservations) Update(_ context.Context, res *model.Reservation, heldRoomID uint64, swap bool) error {
	if swap && res.RoomID != heldRoomID {
		if err := f.rooms.take(res.RoomID); err != nil {
			return err
		}
		f.rooms.release(heldRoomID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[res.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *res
	f.rows[res.ID] = &cp
	return nil
}

func (f *fakeReservations) Cancel(_ context.Context, id, roomID uint64, release bool) error {
	f.mu.Lock()
	res, ok := f.rows[id]
	if !ok || res.DeletedAt != nil {
		f.mu.Unlock()
		return repository.ErrNotFound
	}
	now := fixedClock()
	res.DeletedAt = &now
	f.mu.Unlock()
	if release {
		f.rooms.release(roomID)
	}
	return nil
}

func (f *fakeReservations) Approve(_ context.Context, id, roomID uint64) (bool, error) {
	f.mu.Lock()
	res, ok := f.rows[id]
	if !ok || res.DeletedAt != nil || res.IsApproved {
		f.mu.Unlock()
		return false, nil
	}
	f.mu.Unlock()
	if err := f.rooms.take(roomID); err != nil {
		return false, err
	}
	f.mu.Lock()
	res.IsApproved = true
	f.mu.Unlock()
	return true, nil
}

func (f *fakeReservations) SetPaymentReference(_ context.Context, id uint64, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.rows[id]
	if !ok || res.DeletedAt != nil {
		return repository.ErrNotFound
	}
	res.PaymentReference = &ref
	return nil
}

type fakeBans struct {
	mu   sync.Mutex
	rows []*model.Ban
}

func (f *fakeBans) FindActive(_ context.Context, ref model.OwnerRef, now time.Time) (*model.Ban, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.rows {
		if b.Banned.Is(ref) && b.IsActive(now) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBans) List(_ context.Context, filter repository.BanFilter, _ repository.Page) ([]model.Ban, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Ban
	for _, b := range f.rows {
		if b.DeletedAt == nil && scoped(filter.BannedBy, b.BannedBy) {
			out = append(out, *b)
		}
	}
	return out, len(out), nil
}

func (f *fakeBans) GetByID(_ context.Context, id uint64) (*model.Ban, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.rows {
		if b.ID == id && b.DeletedAt == nil {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBans) Create(_ context.Context, b *model.Ban) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = uint64(len(f.rows) + 1)
	cp := *b
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeBans) Revoke(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.rows {
		if b.ID == id && b.DeletedAt == nil {
			now := fixedClock()
			b.DeletedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

// fakeDirectory keys accounts by OwnerRef.String().
type fakeDirectory struct {
	accounts map[string]*model.Credentials
	trashed  map[string]bool
}

func newFakeDirectory(creds ...model.Credentials) *fakeDirectory {
	d := &fakeDirectory{accounts: map[string]*model.Credentials{}, trashed: map[string]bool{}}
	for i := range creds {
		d.accounts[creds[i].Ref.String()] = &creds[i]
	}
	return d
}

// softDelete hides ref from every lookup except Exists with includeTrashed.
func (d *fakeDirectory) softDelete(ref model.OwnerRef) { d.trashed[ref.String()] = true }

func (d *fakeDirectory) Exists(_ context.Context, ref model.OwnerRef, includeTrashed bool) (bool, error) {
	_, ok := d.accounts[ref.String()]
	if ok && d.trashed[ref.String()] && !includeTrashed {
		return false, nil
	}
	return ok, nil
}

func (d *fakeDirectory) FindCredentials(_ context.Context, kind model.ActorKind, email string) (*model.Credentials, error) {
	for key, c := range d.accounts {
		if d.trashed[key] {
			continue
		}
		if c.Ref.Kind == kind && strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (d *fakeDirectory) Principal(_ context.Context, ref model.OwnerRef) (*model.Principal, error) {
	c, ok := d.accounts[ref.String()]
	if !ok || d.trashed[ref.String()] {
		return nil, repository.ErrNotFound
	}
	return &model.Principal{Ref: c.Ref, Name: c.Name, Email: c.Email}, nil
}

func (d *fakeDirectory) Summaries(_ context.Context, kind model.ActorKind) ([]model.AccountSummary, error) {
	var out []model.AccountSummary
	for _, c := range d.accounts {
		if c.Ref.Kind == kind {
			out = append(out, model.AccountSummary{ID: c.Ref.ID, Name: c.Name, Email: c.Email})
		}
	}
	return out, nil
}

type fakeTokens struct {
	mu   sync.Mutex
	rows map[string]*model.RefreshToken
}

func newFakeTokens() *fakeTokens { return &fakeTokens{rows: map[string]*model.RefreshToken{}} }

func (f *fakeTokens) StoreRefresh(_ context.Context, t model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[t.TokenHash] = &t
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string, now time.Time) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[hash]
	if !ok || t.RevokedAt != nil || !t.ExpiresAt.After(now) {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.rows[hash]; ok && t.RevokedAt == nil {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

func (f *fakeTokens) RevokeSession(_ context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.rows {
		if t.SessionID == sid && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokens) live(sid string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.rows {
		if t.SessionID == sid && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

type fakeClients struct {
	mu     sync.Mutex
	rows   map[uint64]*model.Client
	nextID uint64
}

func newFakeClients(names ...string) *fakeClients {
	f := &fakeClients{rows: map[uint64]*model.Client{}}
	for _, n := range names {
		f.nextID++
		f.rows[f.nextID] = &model.Client{ID: f.nextID, Name: n, Email: strings.ToLower(n) + "@example.com"}
	}
	return f
}

func (f *fakeClients) Create(_ context.Context, c *model.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	if c.CreatedBy.IsZero() {
		c.CreatedBy = model.OwnerRef{Kind: model.KindClient, ID: c.ID}
	}
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeClients) GetByID(_ context.Context, id uint64) (*model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClients) List(_ context.Context, _ string, _ repository.Page) ([]model.Client, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Client
	for id := uint64(1); id <= f.nextID; id++ {
		if c, ok := f.rows[id]; ok {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (f *fakeClients) Taken(_ context.Context, column, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		if (column == "email" && c.Email == value) || (column == "national_id" && c.NationalID == value) {
			return true, nil
		}
	}
	return false, nil
}

type fakeStaff struct {
	mu     sync.Mutex
	kind   model.ActorKind
	rows   map[uint64]*model.Staff
	nextID uint64
}

func newFakeStaff(kind model.ActorKind) *fakeStaff {
	return &fakeStaff{kind: kind, rows: map[uint64]*model.Staff{}}
}

func (f *fakeStaff) Kind() model.ActorKind { return f.kind }

func (f *fakeStaff) Create(_ context.Context, s *model.Staff) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	s.Kind = f.kind
	s.Email = model.VirtualEmail(f.kind, s.ID)
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeStaff) GetByID(_ context.Context, id uint64) (*model.Staff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok || s.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStaff) List(_ context.Context, filter repository.StaffFilter, _ repository.Page) ([]model.Staff, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Staff
	for id := uint64(1); id <= f.nextID; id++ {
		s, ok := f.rows[id]
		if !ok || s.DeletedAt != nil {
			continue
		}
		if filter.PinFirst != 0 && s.ID == filter.PinFirst {
			out = append([]model.Staff{*s}, out...)
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeStaff) Update(_ context.Context, s *model.Staff) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.rows[s.ID]
	if !ok || existing.DeletedAt != nil {
		return repository.ErrNotFound
	}
	hash := existing.PasswordHash
	if s.PasswordHash != "" {
		hash = s.PasswordHash
	}
	cp := *s
	cp.PasswordHash = hash
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeStaff) SoftDelete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok || s.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := fixedClock()
	s.DeletedAt = &now
	return nil
}

func (f *fakeStaff) Taken(_ context.Context, column, value string, exceptID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.rows {
		if s.ID == exceptID || s.DeletedAt != nil {
			continue
		}
		if (column == "actual_email" && s.ActualEmail == value) || (column == "national_id" && s.NationalID == value) {
			return true, nil
		}
	}
	return false, nil
}

type fakeCountries []string

func (f fakeCountries) List(context.Context) ([]string, error) { return f, nil }

func (f fakeCountries) Exists(_ context.Context, name string) (bool, error) {
	for _, c := range f {
		if strings.EqualFold(c, name) {
			return true, nil
		}
	}
	return false, nil
}

type notification struct {
	recipient model.OwnerRef
	template  string
	payload   any
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) Notify(_ context.Context, recipient model.OwnerRef, template string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{recipient, template, payload})
	return nil
}

type fakeAvatars struct {
	saved   []string
	removed []string
}

func (f *fakeAvatars) Save(_ context.Context, data []byte, dir string) (string, error) {
	path := dir + "/avatar" + string(rune('a'+len(f.saved))) + ".jpg"
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeAvatars) Remove(_ context.Context, path string) error {
	f.removed = append(f.removed, path)
	return nil
}

type countingMetrics struct {
	created map[string]int
}

func (m *countingMetrics) ReservationCreated(path string) {
	if m.created == nil {
		m.created = map[string]int{}
	}
	m.created[path]++
}
