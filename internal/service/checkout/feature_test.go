package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"brewhaha/internal/domain"
	"brewhaha/internal/repository/storage"
	"brewhaha/internal/service/cart"
)

type checkoutTestContext struct {
	wf     *Workflow
	cart   *cart.Store
	tokens *stubTokenizer
	orders *stubOrders
	notes  *recorder
	err    error
}

func (c *checkoutTestContext) reset() {
	c.cart = cart.NewStore(storage.ForDevice(storage.NewMemory(), "device"))
	c.tokens = &stubTokenizer{token: "tok_feature"}
	c.orders = &stubOrders{}
	c.notes = &recorder{}
	c.err = nil
	c.wf = New(Deps{
		Cart:          c.cart,
		Tokenizer:     c.tokens,
		Orders:        c.orders,
		Notifier:      c.notes,
		RedirectDelay: 3 * time.Second,
	})
}

func (c *checkoutTestContext) aCartWith(qtyA int, nameA, priceA string, qtyB int, nameB, priceB string) error {
	ctx := context.Background()
	for i, line := range []struct {
		qty         int
		name, price string
	}{{qtyA, nameA, priceA}, {qtyB, nameB, priceB}} {
		price, err := decimal.NewFromString(line.price)
		if err != nil {
			return err
		}
		for n := 0; n < line.qty; n++ {
			brew := domain.Brew{ID: fmt.Sprint(i + 1), Name: line.name, Price: price}
			if _, err := c.cart.Add(ctx, brew); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *checkoutTestContext) emailFails(message string) error {
	c.orders.emailErr = &domain.RemoteRequestError{Op: "send email", StatusCode: 500, Message: message}
	return nil
}

func (c *checkoutTestContext) tokenizationFails(message string) error {
	c.tokens.err = &domain.TokenizationError{Message: message}
	return nil
}

func (c *checkoutTestContext) iSubmitShippingDetails(postalCode string) error {
	c.err = c.wf.Submit(context.Background(), domain.ShippingDetails{
		Address:           "1 Main St",
		PostalCode:        postalCode,
		City:              "Springfield",
		ConfirmationEmail: "jane@example.com",
	})
	return nil
}

func (c *checkoutTestContext) iConfirmTheOrder() error {
	c.err = c.wf.Confirm(context.Background(), domain.PaymentCard{Number: "4242424242424242", ExpMonth: 12, ExpYear: 2030, CVC: "123"})
	return nil
}

func (c *checkoutTestContext) theWorkflowStateIs(state string) error {
	if got := c.wf.State().String(); got != state {
		return fmt.Errorf("expected state %q, got %q", state, got)
	}
	return nil
}

func (c *checkoutTestContext) theOutcomeIs(outcome string) error {
	if got := c.wf.Outcome().String(); got != outcome {
		return fmt.Errorf("expected outcome %q, got %q", outcome, got)
	}
	return nil
}

func (c *checkoutTestContext) theReviewTotalIs(total string, amount int) error {
	review, ok := c.wf.Review()
	if !ok {
		return errors.New("review is not open")
	}
	if review.Total != total || review.Amount != int64(amount) {
		return fmt.Errorf("expected %s/%d, got %s/%d", total, amount, review.Total, review.Amount)
	}
	return nil
}

func (c *checkoutTestContext) theSubmissionFailsWithAValidationError() error {
	var verr *domain.ValidationError
	if !errors.As(c.err, &verr) {
		return fmt.Errorf("expected validation error, got %v", c.err)
	}
	return nil
}

func (c *checkoutTestContext) theUserSees(message string) error {
	if got := c.notes.last().Message; got != message {
		return fmt.Errorf("expected notification %q, got %q", message, got)
	}
	return nil
}

func (c *checkoutTestContext) theUserIsSentTo(path string) error {
	if got := c.notes.last().Redirect; got != path {
		return fmt.Errorf("expected redirect %q, got %q", path, got)
	}
	return nil
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	return c.theCartStillHolds(0)
}

func (c *checkoutTestContext) theCartStillHolds(lines int) error {
	items, err := c.cart.Get(context.Background())
	if err != nil {
		return err
	}
	if len(items) != lines {
		return fmt.Errorf("expected %d cart lines, got %d", lines, len(items))
	}
	return nil
}

func (c *checkoutTestContext) anOrderWasCreated() error {
	if len(c.orders.orders) != 1 {
		return fmt.Errorf("expected one order, got %d", len(c.orders.orders))
	}
	return nil
}

func (c *checkoutTestContext) noOrderWasCreated() error {
	if len(c.orders.orders) != 0 {
		return fmt.Errorf("expected no order, got %d", len(c.orders.orders))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a cart with (\d+) of "([^"]*)" at ([\d.]+) and (\d+) of "([^"]*)" at ([\d.]+)$`, tc.aCartWith)
	ctx.Step(`^sending the confirmation email fails with "([^"]*)"$`, tc.emailFails)
	ctx.Step(`^tokenization fails with "([^"]*)"$`, tc.tokenizationFails)

	ctx.Step(`^I submit shipping details with postal code "([^"]*)"$`, tc.iSubmitShippingDetails)
	ctx.Step(`^I confirm the order$`, tc.iConfirmTheOrder)

	ctx.Step(`^the workflow state is "([^"]*)"$`, tc.theWorkflowStateIs)
	ctx.Step(`^the outcome is "([^"]*)"$`, tc.theOutcomeIs)
	ctx.Step(`^the review total is "([^"]*)" and amount (\d+)$`, tc.theReviewTotalIs)
	ctx.Step(`^the submission fails with a validation error$`, tc.theSubmissionFailsWithAValidationError)
	ctx.Step(`^the user sees "([^"]*)"$`, tc.theUserSees)
	ctx.Step(`^the user is sent to "([^"]*)"$`, tc.theUserIsSentTo)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart still holds (\d+) lines$`, tc.theCartStillHolds)
	ctx.Step(`^an order was created$`, tc.anOrderWasCreated)
	ctx.Step(`^no order was created$`, tc.noOrderWasCreated)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
