// Package checkout implements the order submission workflow: shipping form,
// review step, then payment tokenization, order creation and confirmation
// email in that order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"brewhaha/internal/domain"
	"brewhaha/internal/pricing"
)

// ErrInvalidTransition is returned when an action is not allowed in the
// current state, e.g. confirming while a submission is already processing.
var ErrInvalidTransition = errors.New("invalid checkout transition")

const (
	MissingFieldsMessage = "Fill in all fields"
	EmptyCartMessage     = "Your cart is empty"
	CartChangedMessage   = "Your cart has changed, review your order again"
	SuccessMessage       = "Your order has been successfully submitted!"

	emailSubjectPrefix = "Order Confirmation - BrewHaha"
	emailText          = "Your order has been processed"
	emailHTML          = "<bold>Expect your order to arrive in 2-3 shipping days </bold>"
)

// Tokenizer exchanges card details for a single-use payment token.
type Tokenizer interface {
	CreateToken(ctx context.Context, card domain.PaymentCard) (string, error)
}

// OrderAPI is the content API as seen by checkout.
type OrderAPI interface {
	CreateOrder(ctx context.Context, order domain.Order) error
	SendEmail(ctx context.Context, email domain.Email) error
}

// Cart is the persisted cart of the checking-out device.
type Cart interface {
	Get(ctx context.Context) ([]domain.LineItem, error)
	Clear(ctx context.Context) error
}

// Review is the snapshot shown in the review step.
type Review struct {
	Items    []domain.LineItem      `json:"items"`
	Total    string                 `json:"total"`
	Amount   int64                  `json:"amount"`
	Shipping domain.ShippingDetails `json:"shipping"`
}

// Deps wires a Workflow to its collaborators.
type Deps struct {
	Cart          Cart
	Tokenizer     Tokenizer
	Orders        OrderAPI
	Notifier      Notifier
	RedirectDelay time.Duration
	Logger        *zap.Logger
	Now           func() time.Time
}

// Workflow is the checkout state machine of one device. It is safe for
// concurrent use; remote calls run outside the lock while the state reads
// Processing.
type Workflow struct {
	cart          Cart
	tokens        Tokenizer
	orders        OrderAPI
	notifier      Notifier
	redirectDelay time.Duration
	logger        *zap.Logger
	now           func() time.Time

	mu      sync.Mutex
	state   State
	outcome State
	lastErr error
	review  *Review
}

func New(deps Deps) *Workflow {
	w := &Workflow{
		cart:          deps.Cart,
		tokens:        deps.Tokenizer,
		orders:        deps.Orders,
		notifier:      deps.Notifier,
		redirectDelay: deps.RedirectDelay,
		logger:        deps.Logger,
		now:           deps.Now,
	}
	if w.notifier == nil {
		w.notifier = NotifierFunc(func(Notification) {})
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Outcome reports how the last Confirm ended: Succeeded, Failed, or Idle when
// nothing has been confirmed since the last Submit.
func (w *Workflow) Outcome() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outcome
}

func (w *Workflow) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Review returns the snapshot taken at Submit while a review is open.
func (w *Workflow) Review() (Review, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.review == nil {
		return Review{}, false
	}
	r := *w.review
	r.Items = append([]domain.LineItem(nil), w.review.Items...)
	return r, true
}

// Submit validates the shipping form and opens the review step.
func (w *Workflow) Submit(ctx context.Context, details domain.ShippingDetails) error {
	if err := w.canSubmit(); err != nil {
		return err
	}

	details = trimDetails(details)
	if blank(details.Address, details.PostalCode, details.City, details.ConfirmationEmail) {
		w.resetOutcome()
		return w.reject(MissingFieldsMessage)
	}
	items, err := w.cart.Get(ctx)
	if err != nil {
		return fmt.Errorf("read cart: %w", err)
	}
	if len(items) == 0 {
		w.resetOutcome()
		return w.reject(EmptyCartMessage)
	}

	w.mu.Lock()
	if w.state != Idle && w.state != Succeeded {
		state := w.state
		w.mu.Unlock()
		return fmt.Errorf("%w: submit while %s", ErrInvalidTransition, state)
	}
	w.outcome = Idle
	w.lastErr = nil
	w.review = &Review{
		Items:    items,
		Total:    pricing.CalculateTotal(items),
		Amount:   pricing.CalculateAmount(items),
		Shipping: details,
	}
	w.state = Confirming
	w.mu.Unlock()

	w.logger.Debug("checkout: review opened", zap.Int("items", len(items)))
	return nil
}

func (w *Workflow) canSubmit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Idle && w.state != Succeeded {
		return fmt.Errorf("%w: submit while %s", ErrInvalidTransition, w.state)
	}
	return nil
}

// resetOutcome returns a settled workflow to Idle after a rejected Submit.
func (w *Workflow) resetOutcome() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Idle || w.state == Succeeded {
		w.state = Idle
		w.outcome = Idle
		w.lastErr = nil
	}
}

// Cancel dismisses the review step.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case Idle:
		return nil
	case Confirming:
		w.state = Idle
		w.review = nil
		return nil
	default:
		return fmt.Errorf("%w: cancel while %s", ErrInvalidTransition, w.state)
	}
}

// Confirm places the reviewed order. The cart must still match the review;
// otherwise the review is closed and the user is asked to submit again. The
// payment token, the order and the confirmation email are then requested in
// sequence; the first failure ends the attempt, returns the workflow to Idle
// and leaves the cart untouched.
func (w *Workflow) Confirm(ctx context.Context, card domain.PaymentCard) error {
	w.mu.Lock()
	if w.state != Confirming || w.review == nil {
		state := w.state
		w.mu.Unlock()
		return fmt.Errorf("%w: confirm while %s", ErrInvalidTransition, state)
	}
	w.state = Processing
	review := *w.review
	w.mu.Unlock()

	if err := w.recheck(ctx, review); err != nil {
		return err
	}
	if err := w.process(ctx, card, review); err != nil {
		w.finish(Failed, err)
		w.logger.Warn("checkout: order failed", zap.Error(err))
		w.notifier.Notify(Notification{Message: err.Error()})
		return err
	}

	if err := w.cart.Clear(ctx); err != nil {
		w.logger.Error("checkout: clear cart after order", zap.Error(err))
	}
	w.finish(Succeeded, nil)
	w.logger.Info("checkout: order placed", zap.Int64("amount", review.Amount), zap.Int("items", len(review.Items)))
	w.notifier.Notify(Notification{Message: SuccessMessage, Redirect: "/", Delay: w.redirectDelay})
	return nil
}

// recheck closes the review when the cart was emptied or edited after Submit.
func (w *Workflow) recheck(ctx context.Context, review Review) error {
	items, err := w.cart.Get(ctx)
	if err != nil {
		w.close()
		return fmt.Errorf("read cart: %w", err)
	}
	switch {
	case len(items) == 0:
		w.close()
		return w.reject(EmptyCartMessage)
	case !sameItems(items, review.Items):
		w.close()
		w.logger.Info("checkout: cart changed since review")
		return w.reject(CartChangedMessage)
	}
	return nil
}

// close drops the review without recording an outcome.
func (w *Workflow) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = Idle
	w.outcome = Idle
	w.lastErr = nil
	w.review = nil
}

func (w *Workflow) process(ctx context.Context, card domain.PaymentCard, review Review) error {
	token, err := w.tokens.CreateToken(ctx, card)
	if err != nil {
		var terr *domain.TokenizationError
		if !errors.As(err, &terr) {
			err = &domain.TokenizationError{Err: err}
		}
		return err
	}

	order := domain.Order{
		Amount:     review.Amount,
		Brews:      review.Items,
		Address:    review.Shipping.Address,
		PostalCode: review.Shipping.PostalCode,
		City:       review.Shipping.City,
		Token:      token,
	}
	if err := w.orders.CreateOrder(ctx, order); err != nil {
		return asRemote("create order", err)
	}

	email := domain.Email{
		To:      review.Shipping.ConfirmationEmail,
		Subject: fmt.Sprintf("%s %s", emailSubjectPrefix, w.now().Format("Mon Jan 02 2006")),
		Text:    emailText,
		HTML:    emailHTML,
	}
	if err := w.orders.SendEmail(ctx, email); err != nil {
		return asRemote("send email", err)
	}
	return nil
}

func (w *Workflow) finish(outcome State, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.outcome = outcome
	w.lastErr = err
	w.review = nil
	if outcome == Succeeded {
		w.state = Succeeded
	} else {
		w.state = Idle
	}
}

func (w *Workflow) reject(message string) error {
	w.notifier.Notify(Notification{Message: message})
	return domain.NewValidationError(message)
}

func asRemote(op string, err error) error {
	var rerr *domain.RemoteRequestError
	if errors.As(err, &rerr) {
		return err
	}
	return &domain.RemoteRequestError{Op: op, Err: err}
}

func sameItems(a, b []domain.LineItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Quantity != b[i].Quantity || !a[i].Price.Equal(b[i].Price) {
			return false
		}
	}
	return true
}

func trimDetails(d domain.ShippingDetails) domain.ShippingDetails {
	d.Address = strings.TrimSpace(d.Address)
	d.PostalCode = strings.TrimSpace(d.PostalCode)
	d.City = strings.TrimSpace(d.City)
	d.ConfirmationEmail = strings.TrimSpace(d.ConfirmationEmail)
	return d
}

func blank(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return true
		}
	}
	return false
}
