package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/chethanac15/eStore/apperrors"
	"github.com/chethanac15/eStore/models"
	"github.com/chethanac15/eStore/services"
)

func newCheckout(orders *memOrderRepo, store *memProductStore, gateway services.PaymentGateway) *services.CheckoutService {
	return services.NewCheckoutService(
		orders,
		store,
		services.NewPricer(store),
		gateway,
		nil,
		nil,
		"usd",
		zap.NewNop(),
	)
}

func testAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Street:  "221B Baker Street",
		City:    "London",
		State:   "LDN",
		ZipCode: "NW1 6XE",
		Country: "GB",
	}
}

func TestCreateIntent_AuthorizesCurrentTotal(t *testing.T) {
	p := activeProduct("Widget", 1000, 5)
	store := newMemProductStore(p)
	gateway := newStubGateway()
	svc := newCheckout(newMemOrderRepo(), store, gateway)

	resp, appErr := svc.CreateIntent(context.Background(), "user-1", &services.CreateIntentRequest{
		Items:           []models.CartItem{{ProductID: p.ID.Hex(), Quantity: 2}},
		ShippingAddress: testAddress(),
	})

	require.Nil(t, appErr)
	assert.Equal(t, int64(2000), resp.Amount)
	assert.NotEmpty(t, resp.PaymentIntentID)
	assert.NotEmpty(t, resp.ClientSecret)

	pi, err := gateway.RetrieveIntent(context.Background(), resp.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), pi.Amount)

	// Intent creation reserves nothing.
	assert.Equal(t, 5, store.stock(p.ID))
}

func TestCreateIntent_RejectsBadCartBeforeGateway(t *testing.T) {
	gateway := newStubGateway()
	svc := newCheckout(newMemOrderRepo(), newMemProductStore(), gateway)

	_, appErr := svc.CreateIntent(context.Background(), "user-1", &services.CreateIntentRequest{
		Items:           nil,
		ShippingAddress: testAddress(),
	})

	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.KindEmptyCart, appErr.Kind)
	assert.Equal(t, 0, gateway.seq)
}

func TestConfirmPayment_CreatesOrder(t *testing.T) {
	p := activeProduct("Widget", 1000, 5)
	store := newMemProductStore(p)
	gateway := newStubGateway()
	orders := newMemOrderRepo()
	svc := newCheckout(orders, store, gateway)

	intent, appErr := svc.CreateIntent(context.Background(), "user-1", &services.CreateIntentRequest{
		Items:           []models.CartItem{{ProductID: p.ID.Hex(), Quantity: 2}},
		ShippingAddress: testAddress(),
	})
	require.Nil(t, appErr)

	order, appErr := svc.ConfirmPayment(context.Background(), "user-1", &services.ConfirmPaymentRequest{
		PaymentIntentID: intent.PaymentIntentID,
		Items:           []models.CartItem{{ProductID: p.ID.Hex(), Quantity: 2}},
		ShippingAddress: testAddress(),
	})

	require.Nil(t, appErr)
	assert.Equal(t, int64(2000), order.TotalAmount)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, order.OrderStatus)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, intent.PaymentIntentID, order.PaymentIntentID)
	assert.False(t, order.ID.IsZero())
	assert.NotEmpty(t, order.OrderNumber)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, models.OrderStatusProcessing, order.StatusHistory[0].Status)

	assert.Equal(t, 3, store.stock(p.ID))
	assert.Equal(t, 1, orders.count())
}

func TestConfirmPayment_IsIdempotent(t *testing.T) {
	p := activeProduct("Widget", 1000, 5)
	store := newMemProductStore(p)
	gateway := newStubGateway()
	orders := newMemOrderRepo()
	svc := newCheckout(orders, store, gateway)

	req := &services.ConfirmPaymentRequest{
		Items:           []models.CartItem{{ProductID: p.ID.Hex(), Quantity: 2}},
		ShippingAddress: testAddress(),
	}
	intent, appErr := svc.CreateIntent(context.Background(), "user-1", &services.CreateIntentRequest{
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
	})
	require.Nil(t, appErr)
	req.PaymentIntentID = intent.PaymentIntentID

	first, appErr := svc.ConfirmPayment(context.Background(), "user-1", req)
	require.Nil(t, appErr)

	second, appErr := svc.ConfirmPayment(context.Background(), "user-1", req)
	require.Nil(t, appErr)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)
	// The retry decrements nothing and creates nothing.
	assert.Equal(t, 3, store.stock(p.ID))
	assert.Equal(t, 1, orders.count())
}

func TestConfirmPayment_RejectsIncompletePayment(t *testing.T) {
	p := activeProduct("Widget", 1000, 5)
	store := newMemProductStore(p)
	gateway := newStubGateway()
	gateway.addIntent("pi_pending", "processing", 1000)
	orders := newMemOrderRepo()
	svc := newCheckout(orders, store, gateway)

	_, appErr := svc.ConfirmPayment(context.Background(), "user-1", &services.ConfirmPaymentRequest{
		PaymentIntentID: "pi_pending",
		Items:           []models.CartItem{{ProductID: p.ID.Hex(), Quantity: 1}},
		ShippingAddress: testAddress(),
	})

	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.KindPaymentNotCompleted, appErr.Kind)
	assert.Equal(t, 5, store.stock(p.ID))
	assert.Equal(t, 0, orders.count())
}

func TestConfirmPayment_UnknownIntent(t *testing.T) {
	p := activeProduct("Widget", 1000, 5)
	svc := newCheckout(newMemOrderRepo(), newMemProductStore(p), newStubGateway())

	_, appErr := svc.ConfirmPayment(context.Background(), "user-1", &services.ConfirmPaymentRequest{
		PaymentIntentID: "pi_never_created",
		Items:           []models.CartItem{{ProductID: p.ID.Hex(), Quantity: 1}},
		ShippingAddress: testAddress(),
	})

	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.KindGateway, appErr.Kind)
}

func TestConfirmPayment_MissingIntentID(t *testing.T) {
	svc := newCheckout(newMemOrderRepo(), newMemProductStore(), newStubGateway())

	_, appErr := svc.ConfirmPayment(context.Background(), "user-1", &services.ConfirmPaymentRequest{
		Items:           []models.CartItem{{ProductID: "whatever", Quantity: 1}},
		ShippingAddress: testAddress(),
	})

	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
}

func TestConfirmPayment_InsufficientStockLeavesNoOrder(t *testing.T) {
	p := activeProduct("Widget", 1000, 1)
	store := newMemProductStore(p)
	gateway := newStubGateway()
	gateway.addIntent("pi_ok", services.PaymentIntentStatusSucceeded, 2000)
	orders := newMemOrderRepo()
	svc := newCheckout(orders, store, gateway)

	_, appErr := svc.ConfirmPayment(context.Background(), "user-1", &services.ConfirmPaymentRequest{
		PaymentIntentID: "pi_ok",
		Items:           []models.CartItem{{ProductID: p.ID.Hex(), Quantity: 2}},
		ShippingAddress: testAddress(),
	})

	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.KindInsufficientStock, appErr.Kind)
	assert.Equal(t, 1, store.stock(p.ID))
	assert.Equal(t, 0, orders.count())
}

func TestConfirmPayment_RollsBackEarlierDecrements(t *testing.T) {
	inStock := activeProduct("Plenty", 500, 10)
	scarce := activeProduct("Scarce", 800, 3)
	store := newMemProductStore(inStock, scarce)
	gateway := newStubGateway()
	orders := newMemOrderRepo()
	svc := newCheckout(orders, store, gateway)

	intent, appErr := svc.CreateIntent(context.Background(), "user-1", &services.CreateIntentRequest{
		Items: []models.CartItem{
			{ProductID: inStock.ID.Hex(), Quantity: 2},
			{ProductID: scarce.ID.Hex(), Quantity: 3},
		},
		ShippingAddress: testAddress(),
	})
	require.Nil(t, appErr)

	// A competing purchase drains the scarce product between the pricing
	// pre-check and the commit, so the conditional decrement is what fails.
	store.failDecrement = map[primitive.ObjectID]bool{scarce.ID: true}

	_, appErr = svc.ConfirmPayment(context.Background(), "user-1", &services.ConfirmPaymentRequest{
		PaymentIntentID: intent.PaymentIntentID,
		Items: []models.CartItem{
			{ProductID: inStock.ID.Hex(), Quantity: 2},
			{ProductID: scarce.ID.Hex(), Quantity: 3},
		},
		ShippingAddress: testAddress(),
	})

	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.KindInsufficientStock, appErr.Kind)
	// The first line's decrement was compensated.
	assert.Equal(t, 10, store.stock(inStock.ID))
	assert.Equal(t, 3, store.stock(scarce.ID))
	assert.Equal(t, 0, orders.count())
}

func TestConfirmPayment_LostRaceReturnsWinnersOrder(t *testing.T) {
	p := activeProduct("Widget", 1000, 5)
	store := newMemProductStore(p)
	gateway := newStubGateway()
	gateway.addIntent("pi_raced", services.PaymentIntentStatusSucceeded, 2000)
	orders := newMemOrderRepo()
	svc := newCheckout(orders, store, gateway)

	winner := &models.Order{
		OrderNumber:     "ORD-20260829-000000-aaaaaaaa",
		UserID:          "user-1",
		PaymentIntentID: "pi_raced",
		PaymentStatus:   models.PaymentStatusPaid,
		OrderStatus:     models.OrderStatusProcessing,
		TotalAmount:     2000,
		CreatedAt:       time.Now().UTC(),
	}
	// Slip the winner in after our idempotency lookup but before our insert.
	orders.beforeCreate = func() {
		orders.insert(winner)
	}

	got, appErr := svc.ConfirmPayment(context.Background(), "user-1", &services.ConfirmPaymentRequest{
		PaymentIntentID: "pi_raced",
		Items:           []models.CartItem{{ProductID: p.ID.Hex(), Quantity: 2}},
		ShippingAddress: testAddress(),
	})

	require.Nil(t, appErr)
	assert.Equal(t, winner.ID, got.ID)
	assert.Equal(t, winner.OrderNumber, got.OrderNumber)
	// The loser's decrements were compensated; only the winner's order exists.
	assert.Equal(t, 5, store.stock(p.ID))
	assert.Equal(t, 1, orders.count())
}

func TestConfirmPayment_ConcurrentLastUnit(t *testing.T) {
	p := activeProduct("Last One", 1000, 1)
	store := newMemProductStore(p)
	gateway := newStubGateway()
	gateway.addIntent("pi_a", services.PaymentIntentStatusSucceeded, 1000)
	gateway.addIntent("pi_b", services.PaymentIntentStatusSucceeded, 1000)
	orders := newMemOrderRepo()
	svc := newCheckout(orders, store, gateway)

	confirm := func(pi string) *apperrors.Error {
		_, appErr := svc.ConfirmPayment(context.Background(), "user-"+pi, &services.ConfirmPaymentRequest{
			PaymentIntentID: pi,
			Items:           []models.CartItem{{ProductID: p.ID.Hex(), Quantity: 1}},
			ShippingAddress: testAddress(),
		})
		return appErr
	}

	var wg sync.WaitGroup
	results := make([]*apperrors.Error, 2)
	for i, pi := range []string{"pi_a", "pi_b"} {
		wg.Add(1)
		go func(i int, pi string) {
			defer wg.Done()
			results[i] = confirm(pi)
		}(i, pi)
	}
	wg.Wait()

	var succeeded, outOfStock int
	for _, appErr := range results {
		switch {
		case appErr == nil:
			succeeded++
		case appErr.Kind == apperrors.KindInsufficientStock:
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", appErr)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, outOfStock)
	assert.Equal(t, 0, store.stock(p.ID))
	assert.Equal(t, 1, orders.count())
}

func TestConfirmPayment_NotifiesAfterCommit(t *testing.T) {
	p := activeProduct("Widget", 1000, 5)
	store := newMemProductStore(p)
	gateway := newStubGateway()
	gateway.addIntent("pi_ok", services.PaymentIntentStatusSucceeded, 1000)
	orders := newMemOrderRepo()

	notified := make(chan string, 1)
	svc := services.NewCheckoutService(
		orders,
		store,
		services.NewPricer(store),
		gateway,
		notifierFunc(func(_ context.Context, order *models.Order) error {
			notified <- order.PaymentIntentID
			return nil
		}),
		nil,
		"usd",
		zap.NewNop(),
	)

	_, appErr := svc.ConfirmPayment(context.Background(), "user-1", &services.ConfirmPaymentRequest{
		PaymentIntentID: "pi_ok",
		Items:           []models.CartItem{{ProductID: p.ID.Hex(), Quantity: 1}},
		ShippingAddress: testAddress(),
	})
	require.Nil(t, appErr)

	select {
	case pi := <-notified:
		assert.Equal(t, "pi_ok", pi)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was never invoked")
	}
}

type notifierFunc func(ctx context.Context, order *models.Order) error

func (f notifierFunc) OrderPlaced(ctx context.Context, order *models.Order) error {
	return f(ctx, order)
}
