package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brewhaha/internal/client/strapi"
	"brewhaha/internal/domain"
	"brewhaha/internal/service/checkout"
)

func checkoutBody(wf *checkout.Workflow) gin.H {
	body := gin.H{
		"state":   wf.State(),
		"outcome": wf.Outcome(),
	}
	if review, ok := wf.Review(); ok {
		body["review"] = review
	}
	return body
}

// withCheckout runs fn against the device's workflow and forwards any
// notifications it raised.
func (h *handler) withCheckout(c *gin.Context, fn func(*checkout.Workflow) error) {
	deviceID := deviceFrom(c)
	dc := h.checkouts.acquire(deviceID)
	defer h.checkouts.release(deviceID, dc)

	err := fn(dc.workflow)
	notify(c, dc.inbox.drain()...)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, checkoutBody(dc.workflow))
}

func (h *handler) getCheckout(c *gin.Context) {
	h.withCheckout(c, func(*checkout.Workflow) error { return nil })
}

func (h *handler) submitCheckout(c *gin.Context) {
	var details domain.ShippingDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	h.withCheckout(c, func(wf *checkout.Workflow) error {
		return wf.Submit(c.Request.Context(), details)
	})
}

func (h *handler) confirmCheckout(c *gin.Context) {
	var card domain.PaymentCard
	if err := c.ShouldBindJSON(&card); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	ctx := strapi.WithToken(c.Request.Context(), c.GetString(authTokenKey))
	h.withCheckout(c, func(wf *checkout.Workflow) error {
		return wf.Confirm(ctx, card)
	})
}

func (h *handler) cancelCheckout(c *gin.Context) {
	h.withCheckout(c, func(wf *checkout.Workflow) error {
		return wf.Cancel()
	})
}
