package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brewhaha/internal/domain"
	"brewhaha/internal/pricing"
	"brewhaha/internal/repository/storage"
	"brewhaha/internal/service/cart"
	"brewhaha/internal/service/checkout"
	"brewhaha/internal/service/session"
)

const authTokenKey = "authToken"

type handler struct {
	deps      Deps
	logger    *zap.Logger
	checkouts *checkoutRegistry
}

func newHandler(deps Deps, logger *zap.Logger) *handler {
	h := &handler{deps: deps, logger: logger}
	h.checkouts = newCheckoutRegistry(deps.ReviewTTL, deps.Now, func(deviceID string, notes *inbox) *checkout.Workflow {
		return checkout.New(checkout.Deps{
			Cart:          h.cartFor(deviceID),
			Tokenizer:     deps.Tokenizer,
			Orders:        deps.Orders,
			Notifier:      notes,
			RedirectDelay: deps.RedirectDelay,
			Logger:        logger.With(zap.String("device", deviceID)),
			Now:           deps.Now,
		})
	})
	return h
}

func (h *handler) cartFor(deviceID string) *cart.Store {
	return cart.NewStore(storage.ForDevice(h.deps.Storage, deviceID))
}

func (h *handler) sessionFor(deviceID string) *session.Service {
	kv := storage.ForDevice(h.deps.Storage, deviceID)
	return session.New(h.deps.Auth, kv, cart.NewStore(kv), h.logger.With(zap.String("device", deviceID)))
}

// Catalog

func (h *handler) listBrands(c *gin.Context) {
	term := c.Query("search")
	if term == "" {
		respond(c, http.StatusOK, gin.H{"brands": h.deps.Catalog.LoadBrands(c.Request.Context())})
		return
	}
	brands, err := h.deps.Catalog.SearchBrands(c.Request.Context(), term)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"brands": brands})
}

func (h *handler) getBrand(c *gin.Context) {
	brand, err := h.deps.Catalog.Brand(c.Request.Context(), c.Param("brandId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"brand": brand})
}

// Cart

type cartLine struct {
	domain.LineItem
	LineTotal string `json:"lineTotal"`
}

func cartBody(items []domain.LineItem) gin.H {
	lines := make([]cartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, cartLine{LineItem: item, LineTotal: pricing.LineTotal(item)})
	}
	return gin.H{
		"items":  lines,
		"count":  pricing.ItemCount(items),
		"total":  pricing.CalculateTotal(items),
		"amount": pricing.CalculateAmount(items),
	}
}

func (h *handler) getCart(c *gin.Context) {
	items, err := h.cartFor(deviceFrom(c)).Get(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, cartBody(items))
}

type addItemRequest struct {
	BrandID string `json:"brandId"`
	BrewID  string `json:"brewId"`
}

func (h *handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.BrandID == "" || req.BrewID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "brandId and brewId required"})
		return
	}
	ctx := c.Request.Context()
	brew, err := h.deps.Catalog.Brew(ctx, req.BrandID, req.BrewID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	items, err := h.cartFor(deviceFrom(c)).Add(ctx, *brew)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.checkouts.reset(deviceFrom(c))
	respond(c, http.StatusCreated, cartBody(items))
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *handler) changeCartItem(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
		return
	}
	items, err := h.cartFor(deviceFrom(c)).ChangeQuantity(c.Request.Context(), c.Param("brewId"), *req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.checkouts.reset(deviceFrom(c))
	respond(c, http.StatusOK, cartBody(items))
}

func (h *handler) removeCartItem(c *gin.Context) {
	items, err := h.cartFor(deviceFrom(c)).Remove(c.Request.Context(), c.Param("brewId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.checkouts.reset(deviceFrom(c))
	respond(c, http.StatusOK, cartBody(items))
}

func (h *handler) clearCart(c *gin.Context) {
	if err := h.cartFor(deviceFrom(c)).Clear(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	h.checkouts.reset(deviceFrom(c))
	respond(c, http.StatusOK, cartBody(nil))
}
