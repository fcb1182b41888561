package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockGateway is an explicit stand-in for the payment processor, used when no
// Stripe credentials are configured. Every intent it creates reports
// "succeeded" after a short simulated delay, and every intent id it issues is
// prefixed with "pi_mock_" so a synthetic authorization can never be mistaken
// for a real charge.
type MockGateway struct {
	delay  time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	intents map[string]*PaymentIntent
}

func NewMockGateway(delay time.Duration, logger *zap.Logger) *MockGateway {
	logger.Warn("Payment gateway running in MOCK mode: no Stripe credentials configured, no real charges will be made")
	return &MockGateway{
		delay:   delay,
		logger:  logger,
		intents: make(map[string]*PaymentIntent),
	}
}

func (g *MockGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	if err := g.simulateLatency(ctx); err != nil {
		return nil, err
	}

	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	pi := &PaymentIntent{
		ID:           "pi_mock_" + suffix[:16],
		ClientSecret: "pi_mock_" + suffix[:16] + "_secret_" + suffix[16:24],
		Status:       PaymentIntentStatusSucceeded,
		Amount:       amount,
		Currency:     currency,
	}

	g.mu.Lock()
	g.intents[pi.ID] = pi
	g.mu.Unlock()

	g.logger.Info("Mock payment intent created",
		zap.String("payment_intent_id", pi.ID),
		zap.Int64("amount", amount),
		zap.String("currency", currency),
	)
	return pi, nil
}

func (g *MockGateway) RetrieveIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	if err := g.simulateLatency(ctx); err != nil {
		return nil, err
	}

	g.mu.Lock()
	pi, ok := g.intents[id]
	g.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("mock gateway: unknown payment intent %s", id)
	}
	copied := *pi
	return &copied, nil
}

func (g *MockGateway) simulateLatency(ctx context.Context) error {
	if g.delay <= 0 {
		return nil
	}
	select {
	case <-time.After(g.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
