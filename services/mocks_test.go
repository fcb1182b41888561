package services_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chethanac15/eStore/models"
	"github.com/chethanac15/eStore/repository"
	"github.com/chethanac15/eStore/services"
)

// --- In-memory product store ---

type memProductStore struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product

	// failDecrement forces ErrInsufficientStock for the listed products at
	// decrement time, simulating stock drained between pricing and commit.
	failDecrement map[primitive.ObjectID]bool
}

func newMemProductStore(products ...*models.Product) *memProductStore {
	s := &memProductStore{products: make(map[primitive.ObjectID]*models.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *memProductStore) DecrementStockIfAvailable(_ context.Context, id primitive.ObjectID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if s.failDecrement[id] || p.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (s *memProductStore) IncrementStock(_ context.Context, id primitive.ObjectID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Stock += quantity
	return nil
}

func (s *memProductStore) stock(id primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

// --- In-memory order repository with the unique payment-intent constraint ---

type memOrderRepo struct {
	mu     sync.Mutex
	orders []*models.Order

	// beforeCreate, when set, runs inside Create before the uniqueness check.
	// Tests use it to sneak a competing order in and lose the race on purpose.
	beforeCreate func()
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{}
}

func (r *memOrderRepo) Create(_ context.Context, order *models.Order) error {
	if r.beforeCreate != nil {
		hook := r.beforeCreate
		r.beforeCreate = nil
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.PaymentIntentID == order.PaymentIntentID {
			return repository.ErrDuplicatePaymentIntent
		}
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	copied := *order
	r.orders = append(r.orders, &copied)
	return nil
}

func (r *memOrderRepo) insert(order *models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	copied := *order
	r.orders = append(r.orders, &copied)
}

func (r *memOrderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			copied := *o
			return &copied, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (r *memOrderRepo) FindByPaymentIntentID(_ context.Context, paymentIntentID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.PaymentIntentID == paymentIntentID {
			copied := *o
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memOrderRepo) FindByUserID(_ context.Context, userID string, page, limit int) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			matched = append(matched, *o)
		}
	}
	return paginate(matched, page, limit), int64(len(matched)), nil
}

func (r *memOrderRepo) FindAll(_ context.Context, page, limit int) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		all = append(all, *o)
	}
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *memOrderRepo) AppendStatus(_ context.Context, id primitive.ObjectID, status, comment string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			o.StatusHistory = append(o.StatusHistory, models.StatusEntry{
				Status:  status,
				Date:    time.Now().UTC(),
				Comment: comment,
			})
			o.OrderStatus = status
			copied := *o
			return &copied, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (r *memOrderRepo) AttachTracking(_ context.Context, id primitive.ObjectID, tracking *models.TrackingInfo) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			o.TrackingInfo = tracking
			copied := *o
			return &copied, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (r *memOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func paginate(orders []models.Order, page, limit int) []models.Order {
	start := (page - 1) * limit
	if start >= len(orders) {
		return []models.Order{}
	}
	end := start + limit
	if end > len(orders) {
		end = len(orders)
	}
	return orders[start:end]
}

// --- Stub payment gateway ---

type stubGateway struct {
	mu      sync.Mutex
	intents map[string]*services.PaymentIntent
	seq     int
}

func newStubGateway() *stubGateway {
	return &stubGateway{intents: make(map[string]*services.PaymentIntent)}
}

func (g *stubGateway) CreateIntent(_ context.Context, amount int64, currency string, _ map[string]string) (*services.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	pi := &services.PaymentIntent{
		ID:           fmt.Sprintf("pi_test_%d", g.seq),
		ClientSecret: fmt.Sprintf("pi_test_%d_secret", g.seq),
		Status:       services.PaymentIntentStatusSucceeded,
		Amount:       amount,
		Currency:     currency,
	}
	g.intents[pi.ID] = pi
	return pi, nil
}

func (g *stubGateway) RetrieveIntent(_ context.Context, id string) (*services.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pi, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("unknown payment intent %s", id)
	}
	copied := *pi
	return &copied, nil
}

// addIntent registers an authorization with a fixed status, e.g. "processing".
func (g *stubGateway) addIntent(id, status string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[id] = &services.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       status,
		Amount:       amount,
		Currency:     "usd",
	}
}
