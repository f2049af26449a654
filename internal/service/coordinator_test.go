package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant/internal/cart"
	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/events"
	"github.com/Skotchmaster/restaurant/internal/models"
	"github.com/Skotchmaster/restaurant/internal/repo"
	"github.com/Skotchmaster/restaurant/internal/service"
	"github.com/Skotchmaster/restaurant/internal/testenv"
)

type recorder struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (r *recorder) Publish(_ context.Context, ev events.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	repo  *repo.GormRepo
	coord *service.Coordinator
	pub   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r := testenv.NewRepo(t)
	pub := &recorder{}
	return &fixture{repo: r, coord: service.NewCoordinator(r, pub), pub: pub}
}

func (f *fixture) lines(t *testing.T, prices ...string) []cart.Line {
	t.Helper()
	c := cart.New()
	for _, p := range prices {
		m := testenv.MenuItem(t, f.repo, "dish "+p, p)
		require.NoError(t, c.Add(cart.Item{MenuItemID: m.ID, Name: m.Name, Price: m.Price}, 1, ""))
	}
	return c.Lines()
}

func (f *fixture) order(t *testing.T, prices ...string) *models.Order {
	t.Helper()
	o, err := f.coord.CreateOrder(context.Background(), "Alice", f.lines(t, prices...))
	require.NoError(t, err)
	return o
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *models.Order {
	t.Helper()
	o, err := f.repo.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return o
}

// requireCounters checks that every chef's counter equals the number of its
// assigned and in-preparation orders.
func (f *fixture) requireCounters(t *testing.T, chefs ...*models.Chef) {
	t.Helper()
	ctx := context.Background()
	for _, ch := range chefs {
		got, err := f.repo.GetChef(ctx, ch.ID)
		require.NoError(t, err)
		active, err := f.repo.CountActiveOrders(ctx, ch.ID)
		require.NoError(t, err)
		require.EqualValues(t, active, got.CurrentOrdersCount, "chef %s", ch.Name)
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateOrder_ComputesTotal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a := testenv.MenuItem(t, f.repo, "Burger", "5.00")
	b := testenv.MenuItem(t, f.repo, "Fries", "3.50")
	c := cart.New()
	require.NoError(t, c.Add(cart.Item{MenuItemID: a.ID, Name: a.Name, Price: a.Price}, 2, ""))
	require.NoError(t, c.Add(cart.Item{MenuItemID: b.ID, Name: b.Name, Price: b.Price}, 1, "no salt"))
	require.True(t, c.Total().Equal(dec("13.50")))

	order, err := f.coord.CreateOrder(ctx, "  Alice ", c.Lines())
	require.NoError(t, err)

	got := f.reload(t, order.ID)
	assert.True(t, got.TotalAmount.Equal(dec("13.50")), got.TotalAmount.String())
	assert.Equal(t, "Alice", got.CustomerName)
	assert.Equal(t, domain.OrderPending, got.Status)
	assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
	require.Len(t, got.Items, 2)
	assert.Equal(t, a.ID, got.Items[0].MenuItemID)
	assert.Equal(t, "no salt", got.Items[1].SpecialNotes)
	assert.Regexp(t, `^ORD-\d+$`, got.OrderNumber)
	assert.Equal(t, []events.Type{events.OrderCreated}, f.pub.types())
}

func TestCreateOrder_RejectsInput(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coord.CreateOrder(ctx, "Alice", nil)
	require.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = f.coord.CreateOrder(ctx, "   ", f.lines(t, "1.00"))
	require.ErrorIs(t, err, domain.ErrInvalidCustomerName)

	_, err = f.coord.CreateOrder(ctx, "Bob", []cart.Line{{MenuItemID: uuid.New(), Quantity: 0, Price: dec("1")}})
	require.ErrorIs(t, err, domain.ErrValidation)

	var orders, items int64
	require.NoError(t, f.repo.DB.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, f.repo.DB.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)
	assert.Empty(t, f.pub.types())
}

func TestCreateOrder_SkipsTakenNumber(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	clock := time.UnixMilli(1_000)
	f.coord.Numbers = service.NewOrderNumbers(func() time.Time { return clock })

	existing := &models.Order{
		OrderNumber:   "ORD-1000",
		CustomerName:  "Zed",
		TotalAmount:   dec("1"),
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentPending,
	}
	require.NoError(t, f.repo.CreateOrder(ctx, existing))

	order, err := f.coord.CreateOrder(ctx, "Alice", f.lines(t, "2.00"))
	require.NoError(t, err)
	assert.Equal(t, "ORD-1001", order.OrderNumber)
}

func TestOrderNumbers_Monotonic(t *testing.T) {
	t.Parallel()

	clock := time.UnixMilli(5_000)
	g := service.NewOrderNumbers(func() time.Time { return clock })

	assert.Equal(t, "ORD-5000", g.Next())
	assert.Equal(t, "ORD-5001", g.Next())
	clock = time.UnixMilli(4_000)
	assert.Equal(t, "ORD-5002", g.Next())
	clock = time.UnixMilli(9_000)
	assert.Equal(t, "ORD-9000", g.Next())
}

func TestRecordPayment_CashChange(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t, "7.25")

	res, err := f.coord.RecordPayment(ctx, order.ID, dec("10.00"), domain.MethodCash)
	require.NoError(t, err)
	assert.True(t, res.Change.Equal(dec("2.75")), res.Change.String())
	assert.Equal(t, domain.PaymentCompleted, res.Order.PaymentStatus)

	got := f.reload(t, order.ID)
	assert.Equal(t, domain.PaymentCompleted, got.PaymentStatus)
	assert.Equal(t, "cash", got.PaymentMethod)

	payments, err := f.coord.Payments(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(dec("10")))

	_, err = f.coord.RecordPayment(ctx, order.ID, dec("10.00"), domain.MethodCash)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRecordPayment_InsufficientCash(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t, "7.25")

	_, err := f.coord.RecordPayment(ctx, order.ID, dec("5.00"), domain.MethodCash)
	require.ErrorIs(t, err, domain.ErrInsufficientAmount)

	got := f.reload(t, order.ID)
	assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
	assert.Equal(t, order.Version, got.Version)

	payments, err := f.coord.Payments(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestRecordPayment_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t, "7.25")

	_, err := f.coord.RecordPayment(ctx, order.ID, dec("10"), domain.PaymentMethod("cheque"))
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.coord.RecordPayment(ctx, order.ID, dec("0"), domain.MethodCard)
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.coord.RecordPayment(ctx, uuid.New(), dec("10"), domain.MethodCash)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

type decliningGateway struct{}

func (decliningGateway) Charge(context.Context, service.ChargeRequest) (string, error) {
	return "", service.ErrDeclined
}

func TestRecordPayment_DeclinedThenRetried(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t, "4.00", "3.00")

	f.coord.Gateway = decliningGateway{}
	_, err := f.coord.RecordPayment(ctx, order.ID, dec("7.00"), domain.MethodCard)
	require.ErrorIs(t, err, domain.ErrPaymentFailed)
	require.ErrorIs(t, err, service.ErrDeclined)
	assert.Equal(t, domain.PaymentFailed, f.reload(t, order.ID).PaymentStatus)

	f.coord.Gateway = service.ApproveAll{}
	res, err := f.coord.RecordPayment(ctx, order.ID, dec("7.00"), domain.MethodOnline)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Payment.TransactionID)
	assert.True(t, res.Change.IsZero())

	payments, err := f.coord.Payments(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, domain.PaymentFailed, payments[0].Status)
	assert.Equal(t, domain.PaymentCompleted, payments[1].Status)
	assert.Equal(t, domain.PaymentCompleted, f.reload(t, order.ID).PaymentStatus)
}

func TestTransitions_InvalidLeaveStateUnchanged(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	chef := testenv.Chef(t, f.repo, "Gordon", domain.ChefAvailable)
	order := f.order(t, "5.00")

	_, err := f.coord.MarkReady(ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.coord.Complete(ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.coord.UpdateItemStatus(ctx, order.ID, order.Items[0].ID, domain.ItemCooking)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	got := f.reload(t, order.ID)
	assert.Equal(t, domain.OrderPending, got.Status)
	assert.Equal(t, order.Version, got.Version)

	_, err = f.coord.AssignToChef(ctx, order.ID, chef.ID)
	require.NoError(t, err)
	_, err = f.coord.AssignToChef(ctx, order.ID, chef.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	f.requireCounters(t, chef)
}

func TestLifecycle_FullFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	chef := testenv.Chef(t, f.repo, "Gordon", domain.ChefAvailable)
	order := f.order(t, "5.00", "3.50")
	first, second := order.Items[0].ID, order.Items[1].ID

	_, err := f.coord.RecordPayment(ctx, order.ID, dec("8.50"), domain.MethodCash)
	require.NoError(t, err)

	o, err := f.coord.AssignToChef(ctx, order.ID, chef.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderAssigned, o.Status)
	require.NotNil(t, o.AssignedChefID)
	assert.Equal(t, chef.ID, *o.AssignedChefID)
	f.requireCounters(t, chef)

	o, err = f.coord.UpdateItemStatus(ctx, order.ID, first, domain.ItemCooking)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderInPreparation, o.Status)
	assert.Equal(t, domain.OrderInPreparation, f.reload(t, order.ID).Status)
	f.requireCounters(t, chef)

	_, err = f.coord.UpdateItemStatus(ctx, order.ID, first, domain.ItemReady)
	require.NoError(t, err)
	_, err = f.coord.UpdateItemStatus(ctx, order.ID, second, domain.ItemCooking)
	require.NoError(t, err)

	_, err = f.coord.MarkReady(ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.OrderInPreparation, f.reload(t, order.ID).Status)

	_, err = f.coord.UpdateItemStatus(ctx, order.ID, second, domain.ItemReady)
	require.NoError(t, err)
	o, err = f.coord.MarkReady(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderReady, o.Status)
	f.requireCounters(t, chef)

	_, err = f.coord.UpdateItemStatus(ctx, order.ID, first, domain.ItemCooking)
	require.ErrorIs(t, err, domain.ErrOrderLocked)

	ready, err := f.coord.ReadyOrders(ctx)
	require.NoError(t, err)
	require.Len(t, ready, 1)

	o, err = f.coord.Complete(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, o.Status)
	require.NotNil(t, o.CompletedAt)
	f.requireCounters(t, chef)

	_, err = f.coord.Cancel(ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrOrderLocked)

	got := f.reload(t, order.ID)
	assert.Equal(t, o.Version, got.Version)
	require.NotNil(t, got.CompletedAt)

	assert.Equal(t, []events.Type{
		events.OrderCreated,
		events.PaymentRecorded,
		events.OrderAssigned,
		events.ItemStatusChanged,
		events.ItemStatusChanged,
		events.ItemStatusChanged,
		events.ItemStatusChanged,
		events.OrderReady,
		events.OrderCompleted,
	}, f.pub.types())
}

func TestComplete_RequiresPayment(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	chef := testenv.Chef(t, f.repo, "Gordon", domain.ChefAvailable)
	order := f.order(t, "5.00")

	_, err := f.coord.AssignToChef(ctx, order.ID, chef.ID)
	require.NoError(t, err)
	_, err = f.coord.UpdateItemStatus(ctx, order.ID, order.Items[0].ID, domain.ItemReady)
	require.NoError(t, err)
	_, err = f.coord.MarkReady(ctx, order.ID)
	require.NoError(t, err)

	_, err = f.coord.Complete(ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.OrderReady, f.reload(t, order.ID).Status)
}

func TestCancel_ReleasesChef(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	chef := testenv.Chef(t, f.repo, "Gordon", domain.ChefAvailable)

	pending := f.order(t, "1.00")
	active := f.order(t, "2.00")
	_, err := f.coord.AssignToChef(ctx, active.ID, chef.ID)
	require.NoError(t, err)
	f.requireCounters(t, chef)

	_, err = f.coord.Cancel(ctx, pending.ID)
	require.NoError(t, err)
	_, err = f.coord.Cancel(ctx, active.ID)
	require.NoError(t, err)
	f.requireCounters(t, chef)

	got, err := f.repo.GetChef(ctx, chef.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CurrentOrdersCount)

	_, err = f.coord.RecordPayment(ctx, pending.ID, dec("5"), domain.MethodCash)
	require.ErrorIs(t, err, domain.ErrOrderLocked)
	_, err = f.coord.UpdateItemStatus(ctx, active.ID, active.Items[0].ID, domain.ItemCooking)
	require.ErrorIs(t, err, domain.ErrOrderLocked)
}

func TestAssignToChef_Availability(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.coord.ChefCapacity = 2

	off := testenv.Chef(t, f.repo, "Off", domain.ChefUnavailable)
	busy := testenv.Chef(t, f.repo, "Busy", domain.ChefBusy)

	_, err := f.coord.AssignToChef(ctx, f.order(t, "1.00").ID, off.ID)
	require.ErrorIs(t, err, domain.ErrChefUnavailable)

	for i := 0; i < 2; i++ {
		_, err = f.coord.AssignToChef(ctx, f.order(t, "1.00").ID, busy.ID)
		require.NoError(t, err)
	}
	_, err = f.coord.AssignToChef(ctx, f.order(t, "1.00").ID, busy.ID)
	require.ErrorIs(t, err, domain.ErrChefUnavailable)

	_, err = f.coord.AssignToChef(ctx, f.order(t, "1.00").ID, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)

	f.requireCounters(t, off, busy)

	queue, err := f.coord.ChefOrders(ctx, busy.ID)
	require.NoError(t, err)
	assert.Len(t, queue, 2)
}

func TestSetChefStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	chef := testenv.Chef(t, f.repo, "Gordon", domain.ChefAvailable)

	got, err := f.coord.SetChefStatus(ctx, chef.ID, domain.ChefUnavailable)
	require.NoError(t, err)
	assert.Equal(t, domain.ChefUnavailable, got.Status)

	_, err = f.coord.SetChefStatus(ctx, chef.ID, domain.ChefStatus("asleep"))
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.coord.SetChefStatus(ctx, uuid.New(), domain.ChefBusy)
	require.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []events.Type{events.ChefStatusChanged}, f.pub.types())
}

// barrierStore holds every GetOrder until both callers have read the order,
// so both assignments race on the same version.
type barrierStore struct {
	*repo.GormRepo
	arrived sync.WaitGroup
}

func (b *barrierStore) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := b.GormRepo.GetOrder(ctx, id)
	b.arrived.Done()
	b.arrived.Wait()
	return o, err
}

func TestAssignToChef_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	chefA := testenv.Chef(t, f.repo, "A", domain.ChefAvailable)
	chefB := testenv.Chef(t, f.repo, "B", domain.ChefAvailable)
	order := f.order(t, "5.00")

	store := &barrierStore{GormRepo: f.repo}
	store.arrived.Add(2)
	coord := service.NewCoordinator(store, nil)

	chefs := []*models.Chef{chefA, chefB}
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range chefs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = coord.AssignToChef(ctx, order.ID, chefs[i].ID)
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			require.Equal(t, -1, winner, "both assignments succeeded")
			winner = i
			continue
		}
		require.True(t, errors.Is(err, domain.ErrConcurrentModification), "unexpected error: %v", err)
	}
	require.NotEqual(t, -1, winner, "no assignment succeeded")

	got := f.reload(t, order.ID)
	require.NotNil(t, got.AssignedChefID)
	assert.Equal(t, chefs[winner].ID, *got.AssignedChefID)
	f.requireCounters(t, chefA, chefB)
}
