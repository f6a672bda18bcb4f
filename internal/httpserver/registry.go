package httpserver

import (
	"sync"
	"time"

	"brewhaha/internal/service/checkout"
)

// inbox collects workflow notifications until a handler drains them into
// its response.
type inbox struct {
	mu    sync.Mutex
	notes []checkout.Notification
}

func (b *inbox) Notify(n checkout.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = append(b.notes, n)
}

func (b *inbox) drain() []checkout.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notes
	b.notes = nil
	return out
}

type deviceCheckout struct {
	workflow *checkout.Workflow
	inbox    *inbox
	refs     int
	touched  time.Time
}

// checkoutRegistry keeps one workflow per device while a checkout is in
// progress. Entries are dropped once no request holds them and the workflow
// is back at rest. An open review left untouched for longer than ttl is
// cancelled and dropped.
type checkoutRegistry struct {
	mu        sync.Mutex
	flows     map[string]*deviceCheckout
	build     func(deviceID string, notes *inbox) *checkout.Workflow
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func newCheckoutRegistry(ttl time.Duration, now func() time.Time, build func(deviceID string, notes *inbox) *checkout.Workflow) *checkoutRegistry {
	if now == nil {
		now = time.Now
	}
	return &checkoutRegistry{
		flows: make(map[string]*deviceCheckout),
		build: build,
		ttl:   ttl,
		now:   now,
	}
}

func (r *checkoutRegistry) acquire(deviceID string) *deviceCheckout {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweep(now)
	dc, ok := r.flows[deviceID]
	if ok && r.expired(dc, now) {
		r.evict(deviceID, dc)
		dc, ok = r.flows[deviceID]
	}
	if !ok {
		notes := &inbox{}
		dc = &deviceCheckout{workflow: r.build(deviceID, notes), inbox: notes}
		r.flows[deviceID] = dc
	}
	dc.refs++
	dc.touched = now
	return dc
}

func (r *checkoutRegistry) release(deviceID string, dc *deviceCheckout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dc.refs--
	dc.touched = r.now()
	if dc.refs > 0 || r.flows[deviceID] != dc {
		return
	}
	if atRest(dc.workflow.State()) {
		delete(r.flows, deviceID)
	}
}

// reset closes any open review of the device, e.g. after sign-out or a cart
// edit. A submission that is already processing is left alone.
func (r *checkoutRegistry) reset(deviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dc, ok := r.flows[deviceID]
	if !ok {
		return
	}
	if err := dc.workflow.Cancel(); err != nil && !atRest(dc.workflow.State()) {
		return
	}
	if dc.refs == 0 {
		delete(r.flows, deviceID)
	}
}

// sweep runs at most once per ttl and drops every expired entry.
func (r *checkoutRegistry) sweep(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < r.ttl {
		return
	}
	r.lastSweep = now
	for id, dc := range r.flows {
		if r.expired(dc, now) {
			r.evict(id, dc)
		}
	}
}

func (r *checkoutRegistry) expired(dc *deviceCheckout, now time.Time) bool {
	return r.ttl > 0 && dc.refs == 0 && now.Sub(dc.touched) >= r.ttl
}

func (r *checkoutRegistry) evict(deviceID string, dc *deviceCheckout) {
	if err := dc.workflow.Cancel(); err != nil && !atRest(dc.workflow.State()) {
		return
	}
	delete(r.flows, deviceID)
}

func atRest(s checkout.State) bool {
	return s == checkout.Idle || s == checkout.Succeeded
}
