package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"brewhaha/internal/client/payment"
	"brewhaha/internal/client/strapi"
	"brewhaha/internal/config"
	"brewhaha/internal/repository/storage"
	"brewhaha/internal/service/cart"
	catalogsvc "brewhaha/internal/service/catalog"
	"brewhaha/internal/service/session"
)

// app holds the collaborators shared by all commands. It is filled in by the
// root command's PersistentPreRunE.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	content  *strapi.Client
	payments *payment.Client
	catalog  *catalogsvc.Service
	carts    *cart.Store
	session  *session.Service
	store    storage.Store
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		verbose   bool
		storePath string
	)
	root := &cobra.Command{
		Use:           "brewhaha",
		Short:         "Browse brews, fill a cart and check out from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			a.cfg = config.FromEnv()
			if storePath != "" {
				a.cfg.StorePath = storePath
			}
			logger := zap.NewNop()
			if verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				logger = l
			}
			a.init(logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
	root.PersistentFlags().StringVar(&storePath, "store", "", "Path of the local storage file (default $BREWHAHA_STORE or ~/.brewhaha/storage.json)")

	root.AddCommand(
		newBrandsCmd(a),
		newBrewsCmd(a),
		newCartCmd(a),
		newSignInCmd(a),
		newSignUpCmd(a),
		newSignOutCmd(a),
		newCheckoutCmd(a),
	)
	return root
}

func (a *app) init(logger *zap.Logger) {
	a.logger = logger
	httpClient := &http.Client{Timeout: a.cfg.HTTPClientTimeout}
	a.content = strapi.New(a.cfg.APIURL, httpClient, logger.Named("strapi"))
	a.payments = payment.New(a.cfg.PaymentAPIURL, a.cfg.PaymentKey, httpClient, logger.Named("payment"))
	a.catalog = catalogsvc.New(a.content, logger.Named("catalog"))
	a.store = storage.NewFile(a.cfg.StorePath)
	a.carts = cart.NewStore(a.store)
	a.session = session.New(a.content, a.store, a.carts, logger.Named("session"))
}
