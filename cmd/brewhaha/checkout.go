package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"brewhaha/internal/client/strapi"
	"brewhaha/internal/domain"
	"brewhaha/internal/service/checkout"
)

var errSignInRequired = errors.New("sign in required: run brewhaha signin")

// errReported marks failures whose message was already shown to the user.
var errReported = errors.New("reported")

type checkoutFlags struct {
	shipping domain.ShippingDetails
	card     domain.PaymentCard
}

func newCheckoutCmd(a *app) *cobra.Command {
	var flags checkoutFlags
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Review the cart and place the order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(cmd, a, flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.shipping.Address, "address", "", "Shipping address")
	f.StringVar(&flags.shipping.PostalCode, "postal-code", "", "Postal code")
	f.StringVar(&flags.shipping.City, "city", "", "City")
	f.StringVar(&flags.shipping.ConfirmationEmail, "email", "", "Confirmation email address")
	f.StringVar(&flags.card.Number, "card-number", "", "Card number")
	f.IntVar(&flags.card.ExpMonth, "exp-month", 0, "Card expiry month")
	f.IntVar(&flags.card.ExpYear, "exp-year", 0, "Card expiry year")
	f.StringVar(&flags.card.CVC, "cvc", "", "Card security code")
	return cmd
}

func runCheckout(cmd *cobra.Command, a *app, flags checkoutFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	token, err := a.session.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return errSignInRequired
	}

	wf := checkout.New(checkout.Deps{
		Cart:      a.carts,
		Tokenizer: a.payments,
		Orders:    a.content,
		Notifier: checkout.NotifierFunc(func(n checkout.Notification) {
			fmt.Fprintln(out, n.Message)
		}),
		RedirectDelay: a.cfg.ToastDuration,
		Logger:        a.logger.Named("checkout"),
	})

	if err := wf.Submit(ctx, flags.shipping); err != nil {
		return reported(err)
	}
	review, _ := wf.Review()
	if err := printCart(out, review.Items); err != nil {
		return err
	}
	fmt.Fprintf(out, "Shipping to %s, %s %s\n", review.Shipping.Address, review.Shipping.PostalCode, review.Shipping.City)

	return reported(wf.Confirm(strapi.WithToken(ctx, token), flags.card))
}

// reported wraps the error kinds the workflow has already announced through
// its notifier.
func reported(err error) error {
	var (
		verr *domain.ValidationError
		terr *domain.TokenizationError
		rerr *domain.RemoteRequestError
	)
	if errors.As(err, &verr) || errors.As(err, &terr) || errors.As(err, &rerr) {
		return fmt.Errorf("%w: %w", errReported, err)
	}
	return err
}
