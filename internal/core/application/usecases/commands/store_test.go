package commands_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/customer"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/loyalty"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory database for handler scenarios. A unit of work
// copies the committed state on Begin and swaps it back on Commit, so a
// rolled back handler leaves nothing behind. Aggregates are rebuilt on every
// read, the way the gorm repositories do.
type memStore struct {
	mu        sync.Mutex
	state     *memState
	published []order.StatusChanged
	commits   int

	// skipLocked makes LockFirstAvailable treat these couriers as locked by
	// another transaction.
	skipLocked map[string]bool
}

type courierRow struct {
	id           kernel.UUID
	name         string
	phone        string
	vehicle      courier.VehicleType
	availability courier.Availability
}

type assignmentRow struct {
	id         kernel.UUID
	orderID    kernel.UUID
	courierID  kernel.UUID
	vehicle    courier.VehicleType
	assignedAt time.Time
	releasedAt *time.Time
}

type customerRow struct {
	id        kernel.UUID
	trust     int
	verified  bool
	flagged   bool
	reason    string
	flaggedAt *time.Time
}

type accountRow struct {
	id        kernel.UUID
	balance   int64
	updatedAt time.Time
}

type memState struct {
	orders      map[string]order.State
	locations   map[string]delivery.LocationState
	couriers    map[string]courierRow
	assignments []assignmentRow
	customers   map[string]customerRow
	accounts    map[string]accountRow
	ledger      []loyalty.TransactionState
}

func newMemStore() *memStore {
	return &memStore{
		state: &memState{
			orders:    map[string]order.State{},
			locations: map[string]delivery.LocationState{},
			couriers:  map[string]courierRow{},
			customers: map[string]customerRow{},
			accounts:  map[string]accountRow{},
		},
		skipLocked: map[string]bool{},
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		orders:      make(map[string]order.State, len(s.orders)),
		locations:   make(map[string]delivery.LocationState, len(s.locations)),
		couriers:    make(map[string]courierRow, len(s.couriers)),
		assignments: append([]assignmentRow(nil), s.assignments...),
		customers:   make(map[string]customerRow, len(s.customers)),
		accounts:    make(map[string]accountRow, len(s.accounts)),
		ledger:      append([]loyalty.TransactionState(nil), s.ledger...),
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.couriers {
		c.couriers[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	return c
}

// Create implements commands.UoWFactory.
func (m *memStore) Create() commands.UoW {
	return &memUoW{store: m}
}

func (m *memStore) courierFactory() commands.CourierUoWFactory   { return courierUoWFactory{m} }
func (m *memStore) customerFactory() commands.CustomerUoWFactory { return customerUoWFactory{m} }
func (m *memStore) loyaltyFactory() commands.LoyaltyUoWFactory   { return loyaltyUoWFactory{m} }

type courierUoWFactory struct{ m *memStore }

func (f courierUoWFactory) Create() commands.CourierUoW { return &memUoW{store: f.m} }

type customerUoWFactory struct{ m *memStore }

func (f customerUoWFactory) Create() commands.CustomerUoW { return &memUoW{store: f.m} }

type loyaltyUoWFactory struct{ m *memStore }

func (f loyaltyUoWFactory) Create() commands.LoyaltyUoW { return &memUoW{store: f.m} }

// memUoW reads committed state outside a transaction and its private copy
// inside one.
type memUoW struct {
	store  *memStore
	tx     *memState
	events []order.StatusChanged
}

func (u *memUoW) Begin(_ context.Context) error {
	if u.tx != nil {
		return nil
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.tx = u.store.state.clone()
	u.events = nil
	return nil
}

func (u *memUoW) Commit(_ context.Context) error {
	if u.tx == nil {
		return errs.NewStateTransitionError("none", "committed", "no transaction")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.state = u.tx
	u.store.commits++
	u.store.published = append(u.store.published, u.events...)
	u.tx = nil
	u.events = nil
	return nil
}

func (u *memUoW) Rollback(_ context.Context) error {
	u.tx = nil
	u.events = nil
	return nil
}

func (u *memUoW) current() *memState {
	if u.tx != nil {
		return u.tx
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return u.store.state
}

func (u *memUoW) OrderRepository() ports.OrderRepository       { return memOrders{u} }
func (u *memUoW) LocationRepository() ports.LocationRepository { return memLocations{u} }
func (u *memUoW) CourierRepository() ports.CourierRepository   { return memCouriers{u} }
func (u *memUoW) AssignmentRepository() ports.AssignmentRepository {
	return memAssignments{u}
}
func (u *memUoW) CustomerRepository() ports.CustomerRepository { return memCustomers{u} }
func (u *memUoW) LoyaltyRepository() ports.LoyaltyRepository   { return memLedger{u} }

type memOrders struct{ u *memUoW }

func (r memOrders) Add(_ context.Context, o *order.Order) error {
	st := r.u.current()
	if _, ok := st.orders[o.ID().String()]; ok {
		return errs.NewConcurrencyConflictError("order", o.ID().String())
	}
	st.orders[o.ID().String()] = o.State()
	r.u.events = append(r.u.events, o.DomainEvents()...)
	o.ClearDomainEvents()
	return nil
}

func (r memOrders) Update(_ context.Context, o *order.Order) error {
	st := r.u.current()
	if _, ok := st.orders[o.ID().String()]; !ok {
		return errs.NewObjectNotFoundError("order", o.ID())
	}
	st.orders[o.ID().String()] = o.State()
	r.u.events = append(r.u.events, o.DomainEvents()...)
	o.ClearDomainEvents()
	return nil
}

func (r memOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	s, ok := r.u.current().orders[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return order.RestoreOrder(s)
}

func (r memOrders) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.Get(ctx, id)
}

func (r memOrders) ListExpiredConfirmations(_ context.Context, now time.Time, limit int) ([]kernel.UUID, error) {
	var found []order.State
	for _, s := range r.u.current().orders {
		if s.Status == order.WaitingConfirmation && s.ConfirmationDeadline != nil && s.ConfirmationDeadline.Before(now) {
			found = append(found, s)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ConfirmationDeadline.Before(*found[j].ConfirmationDeadline) })
	return firstIDs(found, limit), nil
}

func (r memOrders) ListAwaitingCourier(_ context.Context, limit int) ([]kernel.UUID, error) {
	st := r.u.current()
	var found []order.State
	for _, s := range st.orders {
		if s.Status != order.Queueing && s.Status != order.Preparing {
			continue
		}
		loc, ok := st.locations[s.ID.String()]
		if !ok || !loc.Status.IsDispatchable() {
			continue
		}
		if activeAssignment(st, s.ID) != nil {
			continue
		}
		found = append(found, s)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].PlacedAt.Before(found[j].PlacedAt) })
	return firstIDs(found, limit), nil
}

func (r memOrders) CountCancellationsSince(_ context.Context, customerID kernel.UUID, since time.Time) (int, error) {
	n := 0
	for _, s := range r.u.current().orders {
		if s.CustomerID.IsEqual(customerID) && s.Status == order.Cancelled && s.CancelledAt != nil && !s.CancelledAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func firstIDs(states []order.State, limit int) []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(states))
	for i, s := range states {
		if i == limit {
			break
		}
		ids = append(ids, s.ID)
	}
	return ids
}

type memLocations struct{ u *memUoW }

func (r memLocations) Add(_ context.Context, l *delivery.Location) error {
	r.u.current().locations[l.OrderID().String()] = l.State()
	return nil
}

func (r memLocations) Update(_ context.Context, l *delivery.Location) error {
	st := r.u.current()
	if _, ok := st.locations[l.OrderID().String()]; !ok {
		return errs.NewObjectNotFoundError("delivery_location", l.OrderID())
	}
	st.locations[l.OrderID().String()] = l.State()
	return nil
}

func (r memLocations) Get(_ context.Context, orderID kernel.UUID) (*delivery.Location, error) {
	s, ok := r.u.current().locations[orderID.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("delivery_location", orderID)
	}
	return delivery.RestoreLocation(s)
}

func (r memLocations) GetForUpdate(ctx context.Context, orderID kernel.UUID) (*delivery.Location, error) {
	return r.Get(ctx, orderID)
}

// ListDue mirrors the gorm query: pending rows of unfinished orders that are
// due, by next attempt then order id.
func (r memLocations) ListDue(_ context.Context, now time.Time, limit int) ([]*delivery.Location, error) {
	st := r.u.current()
	var due []*delivery.Location
	for key, s := range st.locations {
		if o, ok := st.orders[key]; !ok || o.Status.IsTerminal() {
			continue
		}
		if s.Status != delivery.Pending || s.NextAttemptAt == nil || s.NextAttemptAt.After(now) {
			continue
		}
		l, err := delivery.RestoreLocation(s)
		if err != nil {
			return nil, err
		}
		due = append(due, l)
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := *due[i].NextAttemptAt(), *due[j].NextAttemptAt()
		if !a.Equal(b) {
			return a.Before(b)
		}
		return due[i].OrderID().String() < due[j].OrderID().String()
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

type memCouriers struct{ u *memUoW }

func (r memCouriers) put(c *courier.Courier) {
	r.u.current().couriers[c.ID().String()] = courierRow{
		id:           c.ID(),
		name:         c.Name(),
		phone:        c.Phone(),
		vehicle:      c.VehicleType(),
		availability: c.Availability(),
	}
}

func (r memCouriers) Add(_ context.Context, c *courier.Courier) error {
	r.put(c)
	return nil
}

func (r memCouriers) Update(_ context.Context, c *courier.Courier) error {
	if _, ok := r.u.current().couriers[c.ID().String()]; !ok {
		return errs.NewObjectNotFoundError("courier", c.ID())
	}
	r.put(c)
	return nil
}

func (r memCouriers) Get(_ context.Context, id kernel.UUID) (*courier.Courier, error) {
	row, ok := r.u.current().couriers[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("courier", id)
	}
	return courier.RestoreCourier(row.id, row.name, row.phone, row.vehicle, row.availability)
}

func (r memCouriers) GetForUpdate(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	return r.Get(ctx, id)
}

func (r memCouriers) LockFirstAvailable(ctx context.Context) (*courier.Courier, error) {
	var rows []courierRow
	for _, row := range r.u.current().couriers {
		if row.availability == courier.Available && !r.u.store.skipLocked[row.id.String()] {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, errs.ErrObjectNotFound
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })
	return r.Get(ctx, rows[0].id)
}

type memAssignments struct{ u *memUoW }

func activeAssignment(st *memState, orderID kernel.UUID) *assignmentRow {
	for i := range st.assignments {
		a := &st.assignments[i]
		if a.orderID.IsEqual(orderID) && a.releasedAt == nil {
			return a
		}
	}
	return nil
}

func (r memAssignments) Add(_ context.Context, a *courier.Assignment) error {
	st := r.u.current()
	if activeAssignment(st, a.OrderID()) != nil {
		return errs.NewConcurrencyConflictError("assignment", a.OrderID().String())
	}
	st.assignments = append(st.assignments, assignmentRow{
		id:         a.ID(),
		orderID:    a.OrderID(),
		courierID:  a.CourierID(),
		vehicle:    a.VehicleType(),
		assignedAt: a.AssignedAt(),
		releasedAt: a.ReleasedAt(),
	})
	return nil
}

func (r memAssignments) Update(_ context.Context, a *courier.Assignment) error {
	st := r.u.current()
	for i := range st.assignments {
		if st.assignments[i].id.IsEqual(a.ID()) {
			st.assignments[i].releasedAt = a.ReleasedAt()
			return nil
		}
	}
	return errs.NewObjectNotFoundError("assignment", a.ID())
}

func (r memAssignments) GetActiveByOrder(_ context.Context, orderID kernel.UUID) (*courier.Assignment, error) {
	row := activeAssignment(r.u.current(), orderID)
	if row == nil {
		return nil, errs.NewObjectNotFoundError("assignment", orderID)
	}
	return courier.RestoreAssignment(row.id, row.orderID, row.courierID, row.vehicle, row.assignedAt, row.releasedAt)
}

type memCustomers struct{ u *memUoW }

func (r memCustomers) Get(_ context.Context, id kernel.UUID) (*customer.Customer, error) {
	row, ok := r.u.current().customers[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("customer", id)
	}
	return customer.RestoreCustomer(row.id, row.trust, row.verified, row.flagged, row.reason, row.flaggedAt)
}

func (r memCustomers) GetForUpdate(ctx context.Context, id kernel.UUID) (*customer.Customer, error) {
	return r.Get(ctx, id)
}

func (r memCustomers) Save(_ context.Context, c *customer.Customer) error {
	r.u.current().customers[c.ID().String()] = customerRow{
		id:        c.ID(),
		trust:     c.TrustScore(),
		verified:  c.IsVerified(),
		flagged:   c.FraudFlagged(),
		reason:    c.FraudReason(),
		flaggedAt: c.FlaggedAt(),
	}
	return nil
}

type memLedger struct{ u *memUoW }

func (r memLedger) GetAccountForUpdate(_ context.Context, id kernel.UUID, now time.Time) (*loyalty.Account, error) {
	st := r.u.current()
	row, ok := st.accounts[id.String()]
	if !ok {
		row = accountRow{id: id, updatedAt: now}
		st.accounts[id.String()] = row
	}
	return loyalty.RestoreAccount(row.id, row.balance, row.updatedAt)
}

func (r memLedger) Append(_ context.Context, account *loyalty.Account, tx *loyalty.Transaction) (bool, error) {
	st := r.u.current()
	if key := tx.EarnKey(); key != nil {
		for _, existing := range st.ledger {
			if existing.EarnKey != nil && *existing.EarnKey == *key {
				return false, nil
			}
		}
	}
	st.ledger = append(st.ledger, loyalty.TransactionState{
		ID:        tx.ID(),
		AccountID: tx.AccountID(),
		Type:      tx.Type(),
		Points:    tx.Points(),
		OrderRef:  tx.OrderRef(),
		EarnKey:   tx.EarnKey(),
		Reason:    tx.Reason(),
		CreatedAt: tx.CreatedAt(),
	})

	var balance int64
	for _, s := range st.ledger {
		if s.AccountID.IsEqual(account.ID()) {
			balance += s.Type.Sign() * s.Points
		}
	}
	st.accounts[account.ID().String()] = accountRow{id: account.ID(), balance: balance, updatedAt: tx.CreatedAt()}
	return true, nil
}

// Read helpers over committed state.

func (m *memStore) order(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	o, err := m.Create().OrderRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return o
}

func (m *memStore) location(t *testing.T, id kernel.UUID) *delivery.Location {
	t.Helper()
	l, err := m.Create().LocationRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return l
}

func (m *memStore) courier(t *testing.T, id kernel.UUID) *courier.Courier {
	t.Helper()
	c, err := m.Create().CourierRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return c
}

func (m *memStore) balance(id kernel.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.accounts[id.String()].balance
}

func (m *memStore) ledger(id kernel.UUID) []loyalty.TransactionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []loyalty.TransactionState
	for _, s := range m.state.ledger {
		if s.AccountID.IsEqual(id) {
			out = append(out, s)
		}
	}
	return out
}

func (m *memStore) activeAssignment(id kernel.UUID) *assignmentRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return activeAssignment(m.state, id)
}

func (m *memStore) seedCustomer(t *testing.T, trust int, verified bool) kernel.UUID {
	t.Helper()
	c, err := customer.NewCustomer(kernel.NewUUID(), trust, verified)
	require.NoError(t, err)
	require.NoError(t, memCustomers{&memUoW{store: m}}.Save(t.Context(), c))
	return c.ID()
}

func (m *memStore) seedCourier(t *testing.T, name string) kernel.UUID {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), name, "+62811000"+name, courier.Motorbike)
	require.NoError(t, err)
	require.NoError(t, memCouriers{&memUoW{store: m}}.Add(t.Context(), c))
	return c.ID()
}
