// Package memory is an in-process implementation of the persistence
// collaborator. It backs the unit tests and the STORE_BACKEND=memory
// development mode, with the same locking contract as the Postgres store:
// per-(flight, seat class) write locks with a bounded wait, all-or-nothing
// commits, and snapshot reads.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"
	"skybook/internal/store"
)

type classKey struct {
	aircraftType string
	seatClass    string
}

type state struct {
	flights      map[string]models.Flight
	aircraft     map[string]models.Aircraft
	seatClasses  map[classKey]models.AircraftSeatClass
	passengers   map[int64]models.Passenger
	tickets      map[int64]models.Ticket
	payments     map[string]models.Payment
	counts       map[store.SeatKey]models.SeatCount
	maintenance  map[int64]models.MaintenanceRecord
	adminChanges []models.AdminChange

	ticketSeq      int64
	passengerSeq   int64
	maintenanceSeq int64
	adminChangeSeq int64
}

// Memory implements store.Store.
type Memory struct {
	lockWait time.Duration

	// commitMu serializes commit application against snapshot reads. Writers
	// hold it only while applying staged changes, never while fn runs.
	commitMu sync.RWMutex

	locksMu sync.Mutex
	locks   map[store.SeatKey]chan struct{}

	st *state
}

// New creates an empty store. lockWait bounds how long Update waits for a
// contended seat key before failing with ErrTxTimeout.
func New(lockWait time.Duration) *Memory {
	return &Memory{
		lockWait: lockWait,
		locks:    make(map[store.SeatKey]chan struct{}),
		st: &state{
			flights:     make(map[string]models.Flight),
			aircraft:    make(map[string]models.Aircraft),
			seatClasses: make(map[classKey]models.AircraftSeatClass),
			passengers:  make(map[int64]models.Passenger),
			tickets:     make(map[int64]models.Ticket),
			payments:    make(map[string]models.Payment),
			counts:      make(map[store.SeatKey]models.SeatCount),
			maintenance: make(map[int64]models.MaintenanceRecord),
		},
	}
}

func (m *Memory) sem(key store.SeatKey) chan struct{} {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	ch, ok := m.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		m.locks[key] = ch
	}
	return ch
}

func (m *Memory) acquire(ctx context.Context, key store.SeatKey) error {
	ch := m.sem(key)
	select {
	case ch <- struct{}{}:
		return nil
	case <-time.After(m.lockWait):
		return fmt.Errorf("seat key %s/%s: %w", key.FlightID, key.SeatClass, apperrors.ErrTxTimeout)
	case <-ctx.Done():
		return fmt.Errorf("seat key %s/%s: %w: %v", key.FlightID, key.SeatClass, apperrors.ErrTxAborted, ctx.Err())
	}
}

func (m *Memory) release(key store.SeatKey) {
	<-m.locks[key]
}

// Update runs fn inside a write transaction holding the locks for keys,
// acquired in sorted order so concurrent transactions cannot deadlock.
func (m *Memory) Update(ctx context.Context, keys []store.SeatKey, fn func(tx store.Tx) error) error {
	sorted := append([]store.SeatKey(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	held := make([]store.SeatKey, 0, len(sorted))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			m.release(held[i])
		}
	}()
	for _, key := range sorted {
		if err := m.acquire(ctx, key); err != nil {
			return err
		}
		held = append(held, key)
	}

	tx := newTx(m)
	if err := fn(tx); err != nil {
		return err
	}

	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	// Creation conflicts are re-checked against committed state here: two
	// transactions may both stage the same new flight id before either
	// commits, and only the first commit may win.
	for id := range tx.createdFlights {
		if _, ok := m.st.flights[id]; ok {
			return fmt.Errorf("flight %s already exists: %w", id, apperrors.ErrConflict)
		}
	}
	tx.apply(m.st)
	return nil
}

// View runs fn against a consistent snapshot. Staged writer changes are
// invisible until their commit applies.
func (m *Memory) View(ctx context.Context, fn func(tx store.Tx) error) error {
	m.commitMu.RLock()
	defer m.commitMu.RUnlock()
	return fn(newReadTx(m))
}

func (m *Memory) Close() error { return nil }

// memTx stages writes and overlays them on committed state for reads. Reads
// of committed state take commitMu.RLock per operation unless the
// transaction itself already holds the read side (View).
type memTx struct {
	m        *Memory
	readHeld bool

	flights        map[string]*models.Flight
	createdFlights map[string]bool
	aircraft       map[string]*models.Aircraft
	seatClasses    map[classKey]*models.AircraftSeatClass
	passengers     map[int64]*models.Passenger
	tickets        map[int64]*models.Ticket
	delTickets     map[int64]bool
	payments       []models.Payment
	counts         map[store.SeatKey]*models.SeatCount
	maintenance    map[int64]*models.MaintenanceRecord
	adminChanges   []models.AdminChange
}

func newTx(m *Memory) *memTx {
	return &memTx{
		m:              m,
		flights:        make(map[string]*models.Flight),
		createdFlights: make(map[string]bool),
		aircraft:       make(map[string]*models.Aircraft),
		seatClasses:    make(map[classKey]*models.AircraftSeatClass),
		passengers:     make(map[int64]*models.Passenger),
		tickets:        make(map[int64]*models.Ticket),
		delTickets:     make(map[int64]bool),
		counts:         make(map[store.SeatKey]*models.SeatCount),
		maintenance:    make(map[int64]*models.MaintenanceRecord),
	}
}

func newReadTx(m *Memory) *memTx {
	tx := newTx(m)
	tx.readHeld = true
	return tx
}

func (t *memTx) rlock() func() {
	if t.readHeld {
		return func() {}
	}
	t.m.commitMu.RLock()
	return t.m.commitMu.RUnlock
}

func (t *memTx) apply(st *state) {
	for id, f := range t.flights {
		st.flights[id] = *f
	}
	for reg, a := range t.aircraft {
		st.aircraft[reg] = *a
	}
	for k, sc := range t.seatClasses {
		st.seatClasses[k] = *sc
	}
	for id, p := range t.passengers {
		st.passengers[id] = *p
	}
	for id, tk := range t.tickets {
		st.tickets[id] = *tk
	}
	for id := range t.delTickets {
		delete(st.tickets, id)
	}
	for _, p := range t.payments {
		st.payments[p.ID] = p
	}
	for k, c := range t.counts {
		st.counts[k] = *c
	}
	for id, rec := range t.maintenance {
		st.maintenance[id] = *rec
	}
	st.adminChanges = append(st.adminChanges, t.adminChanges...)
}

// Flights

func (t *memTx) GetFlight(ctx context.Context, id string) (*models.Flight, error) {
	if f, ok := t.flights[id]; ok {
		cp := *f
		return &cp, nil
	}
	unlock := t.rlock()
	defer unlock()
	if f, ok := t.m.st.flights[id]; ok {
		return &f, nil
	}
	return nil, nil
}

func (t *memTx) CreateFlight(ctx context.Context, f *models.Flight) error {
	existing, err := t.GetFlight(ctx, f.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("flight %s already exists: %w", f.ID, apperrors.ErrConflict)
	}
	cp := *f
	t.flights[f.ID] = &cp
	t.createdFlights[f.ID] = true
	return nil
}

func (t *memTx) ListFlights(ctx context.Context) ([]models.Flight, error) {
	unlock := t.rlock()
	defer unlock()
	out := make([]models.Flight, 0, len(t.m.st.flights)+len(t.flights))
	for _, f := range t.m.st.flights {
		out = append(out, f)
	}
	for id, f := range t.flights {
		if _, ok := t.m.st.flights[id]; !ok {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Aircraft and seat classes

func (t *memTx) GetAircraft(ctx context.Context, registration string) (*models.Aircraft, error) {
	if a, ok := t.aircraft[registration]; ok {
		cp := *a
		return &cp, nil
	}
	unlock := t.rlock()
	defer unlock()
	if a, ok := t.m.st.aircraft[registration]; ok {
		return &a, nil
	}
	return nil, nil
}

func (t *memTx) CreateAircraft(ctx context.Context, a *models.Aircraft) error {
	cp := *a
	t.aircraft[a.Registration] = &cp
	return nil
}

func (t *memTx) ListAircraft(ctx context.Context) ([]models.Aircraft, error) {
	unlock := t.rlock()
	defer unlock()
	out := make([]models.Aircraft, 0, len(t.m.st.aircraft)+len(t.aircraft))
	for _, a := range t.m.st.aircraft {
		out = append(out, a)
	}
	for reg, a := range t.aircraft {
		if _, ok := t.m.st.aircraft[reg]; !ok {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Registration < out[j].Registration })
	return out, nil
}

func (t *memTx) SeatClassesForType(ctx context.Context, aircraftType string) ([]models.AircraftSeatClass, error) {
	unlock := t.rlock()
	defer unlock()
	merged := make(map[classKey]models.AircraftSeatClass)
	for k, sc := range t.m.st.seatClasses {
		if k.aircraftType == aircraftType {
			merged[k] = sc
		}
	}
	for k, sc := range t.seatClasses {
		if k.aircraftType == aircraftType {
			merged[k] = *sc
		}
	}
	out := make([]models.AircraftSeatClass, 0, len(merged))
	for _, sc := range merged {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatClass < out[j].SeatClass })
	return out, nil
}

func (t *memTx) PutAircraftSeatClass(ctx context.Context, sc *models.AircraftSeatClass) error {
	cp := *sc
	t.seatClasses[classKey{sc.AircraftType, sc.SeatClass}] = &cp
	return nil
}

// Passengers

func (t *memTx) GetPassenger(ctx context.Context, id int64) (*models.Passenger, error) {
	if p, ok := t.passengers[id]; ok {
		cp := *p
		return &cp, nil
	}
	unlock := t.rlock()
	defer unlock()
	if p, ok := t.m.st.passengers[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (t *memTx) CreatePassenger(ctx context.Context, p *models.Passenger) error {
	t.m.locksMu.Lock()
	t.m.st.passengerSeq++
	p.ID = t.m.st.passengerSeq
	t.m.locksMu.Unlock()
	cp := *p
	t.passengers[p.ID] = &cp
	return nil
}

func (t *memTx) ListPassengers(ctx context.Context) ([]models.Passenger, error) {
	unlock := t.rlock()
	defer unlock()
	out := make([]models.Passenger, 0, len(t.m.st.passengers)+len(t.passengers))
	for _, p := range t.m.st.passengers {
		out = append(out, p)
	}
	for id, p := range t.passengers {
		if _, ok := t.m.st.passengers[id]; !ok {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Tickets

func (t *memTx) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	if t.delTickets[id] {
		return nil, nil
	}
	if tk, ok := t.tickets[id]; ok {
		cp := *tk
		return &cp, nil
	}
	unlock := t.rlock()
	defer unlock()
	if tk, ok := t.m.st.tickets[id]; ok {
		return &tk, nil
	}
	return nil, nil
}

func (t *memTx) CreateTicket(ctx context.Context, tk *models.Ticket) error {
	t.m.locksMu.Lock()
	t.m.st.ticketSeq++
	tk.ID = t.m.st.ticketSeq
	t.m.locksMu.Unlock()
	cp := *tk
	t.tickets[tk.ID] = &cp
	return nil
}

func (t *memTx) UpdateTicket(ctx context.Context, tk *models.Ticket) error {
	existing, err := t.GetTicket(ctx, tk.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("ticket %d: %w", tk.ID, apperrors.ErrNotFound)
	}
	cp := *tk
	t.tickets[tk.ID] = &cp
	return nil
}

func (t *memTx) DeleteTicket(ctx context.Context, id int64) error {
	delete(t.tickets, id)
	t.delTickets[id] = true
	return nil
}

func (t *memTx) eachTicket(fn func(tk models.Ticket)) {
	unlock := t.rlock()
	defer unlock()
	for id, tk := range t.m.st.tickets {
		if t.delTickets[id] {
			continue
		}
		if staged, ok := t.tickets[id]; ok {
			fn(*staged)
			continue
		}
		fn(tk)
	}
	for id, tk := range t.tickets {
		if _, ok := t.m.st.tickets[id]; !ok && !t.delTickets[id] {
			fn(*tk)
		}
	}
}

func (t *memTx) TicketsByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error) {
	var out []models.Ticket
	t.eachTicket(func(tk models.Ticket) {
		if tk.Status == status {
			out = append(out, tk)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func waitlistOrder(a, b models.Ticket) bool {
	at, bt := a.RequestedAt, b.RequestedAt
	if at != nil && bt != nil && !at.Equal(*bt) {
		return at.Before(*bt)
	}
	return a.ID < b.ID
}

func (t *memTx) WaitlistedTickets(ctx context.Context, key store.SeatKey) ([]models.Ticket, error) {
	var out []models.Ticket
	t.eachTicket(func(tk models.Ticket) {
		if tk.Status == models.TicketWaitlisted && tk.FlightID == key.FlightID && tk.SeatClass == key.SeatClass {
			out = append(out, tk)
		}
	})
	sort.Slice(out, func(i, j int) bool { return waitlistOrder(out[i], out[j]) })
	return out, nil
}

func (t *memTx) WaitlistForFlight(ctx context.Context, flightID string) ([]models.Ticket, error) {
	var out []models.Ticket
	t.eachTicket(func(tk models.Ticket) {
		if tk.Status == models.TicketWaitlisted && tk.FlightID == flightID {
			out = append(out, tk)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeatClass != out[j].SeatClass {
			return out[i].SeatClass < out[j].SeatClass
		}
		return waitlistOrder(out[i], out[j])
	})
	return out, nil
}

// Payments

func (t *memTx) CreatePayment(ctx context.Context, p *models.Payment) error {
	t.payments = append(t.payments, *p)
	return nil
}

func (t *memTx) ListPayments(ctx context.Context) ([]models.Payment, error) {
	unlock := t.rlock()
	defer unlock()
	out := make([]models.Payment, 0, len(t.m.st.payments)+len(t.payments))
	for _, p := range t.m.st.payments {
		out = append(out, p)
	}
	out = append(out, t.payments...)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Seat counters

func (t *memTx) GetSeatCount(ctx context.Context, key store.SeatKey) (*models.SeatCount, error) {
	if c, ok := t.counts[key]; ok {
		cp := *c
		return &cp, nil
	}
	unlock := t.rlock()
	defer unlock()
	if c, ok := t.m.st.counts[key]; ok {
		return &c, nil
	}
	return nil, nil
}

func (t *memTx) PutSeatCount(ctx context.Context, sc *models.SeatCount) error {
	cp := *sc
	t.counts[store.SeatKey{FlightID: sc.FlightID, SeatClass: sc.SeatClass}] = &cp
	return nil
}

func (t *memTx) ReserveSeat(ctx context.Context, key store.SeatKey) error {
	c, err := t.GetSeatCount(ctx, key)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("seat count %s/%s: %w", key.FlightID, key.SeatClass, apperrors.ErrNotFound)
	}
	if c.Occupied >= c.Capacity {
		return fmt.Errorf("flight %s class %s: %w", key.FlightID, key.SeatClass, apperrors.ErrCapacityFull)
	}
	c.Occupied++
	t.counts[key] = c
	return nil
}

func (t *memTx) AddOccupied(ctx context.Context, key store.SeatKey, delta int) error {
	c, err := t.GetSeatCount(ctx, key)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("seat count %s/%s: %w", key.FlightID, key.SeatClass, apperrors.ErrNotFound)
	}
	c.Occupied += delta
	if c.Occupied < 0 {
		c.Occupied = 0
	}
	t.counts[key] = c
	return nil
}

// Maintenance

func (t *memTx) CreateMaintenance(ctx context.Context, rec *models.MaintenanceRecord) error {
	t.m.locksMu.Lock()
	t.m.st.maintenanceSeq++
	rec.ID = t.m.st.maintenanceSeq
	t.m.locksMu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	cp := *rec
	t.maintenance[rec.ID] = &cp
	return nil
}

func (t *memTx) ListMaintenance(ctx context.Context, registration, technician string) ([]models.MaintenanceRecord, error) {
	unlock := t.rlock()
	defer unlock()
	matches := func(rec models.MaintenanceRecord) bool {
		if registration != "" && rec.Registration != registration {
			return false
		}
		if technician != "" && rec.Technician != technician {
			return false
		}
		return true
	}
	var out []models.MaintenanceRecord
	for id, rec := range t.m.st.maintenance {
		if _, staged := t.maintenance[id]; !staged && matches(rec) {
			out = append(out, rec)
		}
	}
	for _, rec := range t.maintenance {
		if matches(*rec) {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledFor.Equal(out[j].ScheduledFor) {
			return out[i].ScheduledFor.Before(out[j].ScheduledFor)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Admin-change audit

func (t *memTx) AppendAdminChange(ctx context.Context, change *models.AdminChange) error {
	t.m.locksMu.Lock()
	t.m.st.adminChangeSeq++
	change.ID = t.m.st.adminChangeSeq
	t.m.locksMu.Unlock()
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}
	t.adminChanges = append(t.adminChanges, *change)
	return nil
}

func (t *memTx) AdminChangeCounts(ctx context.Context) (map[string]int, error) {
	unlock := t.rlock()
	defer unlock()
	counts := make(map[string]int)
	for _, change := range t.m.st.adminChanges {
		counts[change.Action]++
	}
	for _, change := range t.adminChanges {
		counts[change.Action]++
	}
	return counts, nil
}

// Reporting projections

func (t *memTx) ActiveFlightIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	t.eachTicket(func(tk models.Ticket) {
		if tk.Status == models.TicketActive {
			seen[tk.FlightID] = true
		}
	})
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (t *memTx) ActiveCountsForDate(ctx context.Context, date time.Time) (map[string]int, error) {
	y, mo, d := date.UTC().Date()
	onDate := make(map[string]bool)
	flights, err := t.ListFlights(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range flights {
		fy, fm, fd := f.Departure.UTC().Date()
		if fy == y && fm == mo && fd == d {
			onDate[f.ID] = true
		}
	}
	counts := make(map[string]int)
	t.eachTicket(func(tk models.Ticket) {
		if tk.Status == models.TicketActive && onDate[tk.FlightID] {
			counts[tk.FlightID]++
		}
	})
	return counts, nil
}

var _ store.Store = (*Memory)(nil)
var _ store.Tx = (*memTx)(nil)
