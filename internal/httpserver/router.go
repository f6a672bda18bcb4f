package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"brewhaha/internal/domain"
	"brewhaha/internal/repository/storage"
	"brewhaha/internal/service/checkout"
	"brewhaha/internal/service/session"
)

// CatalogService is the brand and brew lookup used by the handlers.
type CatalogService interface {
	LoadBrands(ctx context.Context) []domain.Brand
	SearchBrands(ctx context.Context, term string) ([]domain.Brand, error)
	Brand(ctx context.Context, id string) (*domain.Brand, error)
	Brew(ctx context.Context, brandID, brewID string) (*domain.Brew, error)
}

// Deps holds collaborators for the router.
type Deps struct {
	Storage        storage.Repository
	Catalog        CatalogService
	Auth           session.AuthAPI
	Tokenizer      checkout.Tokenizer
	Orders         checkout.OrderAPI
	AllowedOrigins []string
	// RedirectDelay is how long the success message stays up before the
	// front end returns to the catalog.
	RedirectDelay time.Duration
	// ReviewTTL bounds how long an untouched review stays open. Zero
	// disables expiry.
	ReviewTTL time.Duration
	Now       func() time.Time
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Storage == nil || deps.Catalog == nil || deps.Auth == nil || deps.Tokenizer == nil || deps.Orders == nil {
		return nil, errors.New("missing dependencies for router")
	}
	if len(deps.AllowedOrigins) == 0 {
		deps.AllowedOrigins = []string{"*"}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(zap.NewStdLog(logger.Named("gin")).Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  deps.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", deviceHeader},
		ExposeHeaders: []string{deviceHeader},
		MaxAge:        12 * time.Hour,
	}))

	var ready pinger
	if db != nil {
		ready = db
	}
	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(ready))

	h := newHandler(deps, logger)

	api := router.Group("/", deviceMiddleware())
	api.GET("/brands", h.listBrands)
	api.GET("/brands/:brandId", h.getBrand)

	api.GET("/cart", h.getCart)
	api.POST("/cart/items", h.addCartItem)
	api.PATCH("/cart/items/:brewId", h.changeCartItem)
	api.DELETE("/cart/items/:brewId", h.removeCartItem)
	api.DELETE("/cart", h.clearCart)

	api.POST("/signin", h.signIn)
	api.POST("/signup", h.signUp)
	api.POST("/signout", h.signOut)
	api.GET("/session", h.getSession)

	gated := api.Group("/checkout", h.requireSession)
	gated.GET("", h.getCheckout)
	gated.POST("", h.submitCheckout)
	gated.POST("/confirm", h.confirmCheckout)
	gated.POST("/cancel", h.cancelCheckout)

	return router, nil
}
