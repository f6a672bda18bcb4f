package httpserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"brewhaha/internal/domain"
	"brewhaha/internal/service/checkout"
)

type fixedCart struct{}

func (fixedCart) Get(context.Context) ([]domain.LineItem, error) {
	return []domain.LineItem{{ID: "1", Quantity: 1}}, nil
}

func (fixedCart) Clear(context.Context) error { return nil }

func (r *checkoutRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestRegistry() *checkoutRegistry {
	return newTimedRegistry(0, nil)
}

func newTimedRegistry(ttl time.Duration, now func() time.Time) *checkoutRegistry {
	return newCheckoutRegistry(ttl, now, func(_ string, notes *inbox) *checkout.Workflow {
		return checkout.New(checkout.Deps{Cart: fixedCart{}, Notifier: notes})
	})
}

func openReview(t *testing.T, r *checkoutRegistry, deviceID string) *deviceCheckout {
	t.Helper()
	dc := r.acquire(deviceID)
	require.NoError(t, dc.workflow.Submit(context.Background(), domain.ShippingDetails{
		Address: "a", PostalCode: "p", City: "c", ConfirmationEmail: "e",
	}))
	r.release(deviceID, dc)
	return dc
}

func TestRegistryDropsIdleWorkflows(t *testing.T) {
	r := newTestRegistry()
	dc := r.acquire("d")
	require.Equal(t, 1, r.size())
	r.release("d", dc)
	require.Zero(t, r.size())
}

func TestRegistryKeepsOpenReview(t *testing.T) {
	r := newTestRegistry()
	dc := openReview(t, r, "d")
	require.Equal(t, 1, r.size())

	again := r.acquire("d")
	require.Same(t, dc, again)
	require.Equal(t, checkout.Confirming, again.workflow.State())
}

func TestRegistryWaitsForLastHolder(t *testing.T) {
	r := newTestRegistry()
	first := r.acquire("d")
	second := r.acquire("d")
	r.release("d", first)
	require.Equal(t, 1, r.size())
	r.release("d", second)
	require.Zero(t, r.size())
}

func TestInboxDrain(t *testing.T) {
	b := &inbox{}
	b.Notify(checkout.Notification{Message: "one"})
	b.Notify(checkout.Notification{Message: "two"})
	require.Len(t, b.drain(), 2)
	require.Empty(t, b.drain())
}

func TestRegistryResetClosesReview(t *testing.T) {
	r := newTestRegistry()
	dc := openReview(t, r, "d")

	r.reset("d")
	require.Zero(t, r.size())
	require.Equal(t, checkout.Idle, dc.workflow.State())

	r.reset("unknown")
	require.Zero(t, r.size())
}

func TestRegistryResetWhileHeld(t *testing.T) {
	r := newTestRegistry()
	openReview(t, r, "d")
	held := r.acquire("d")

	r.reset("d")
	require.Equal(t, 1, r.size())
	_, open := held.workflow.Review()
	require.False(t, open)

	r.release("d", held)
	require.Zero(t, r.size())
}

func TestRegistryExpiresStaleReviews(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)}
	r := newTimedRegistry(10*time.Minute, clock.Now)

	stale := openReview(t, r, "old")
	clock.advance(6 * time.Minute)
	openReview(t, r, "fresh")
	require.Equal(t, 2, r.size())

	clock.advance(5 * time.Minute)
	other := r.acquire("other")
	r.release("other", other)

	require.Equal(t, 1, r.size())
	require.Equal(t, checkout.Idle, stale.workflow.State())

	again := r.acquire("fresh")
	require.Equal(t, checkout.Confirming, again.workflow.State())
	r.release("fresh", again)
}

func TestRegistryReplacesExpiredEntryOnAcquire(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)}
	r := newTimedRegistry(10*time.Minute, clock.Now)

	stale := openReview(t, r, "d")
	clock.advance(10 * time.Minute)

	dc := r.acquire("d")
	require.NotSame(t, stale, dc)
	require.Equal(t, checkout.Idle, dc.workflow.State())
	r.release("d", dc)
	require.Zero(t, r.size())
}
