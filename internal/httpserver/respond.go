package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brewhaha/internal/domain"
	"brewhaha/internal/service/checkout"
)

const notificationsKey = "notifications"

type notificationResponse struct {
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	DelayMs  int64  `json:"delayMs,omitempty"`
}

// notify queues a user-facing message on the current response.
func notify(c *gin.Context, notes ...checkout.Notification) {
	if len(notes) == 0 {
		return
	}
	existing, _ := c.Get(notificationsKey)
	list, _ := existing.([]notificationResponse)
	for _, n := range notes {
		list = append(list, notificationResponse{
			Message:  n.Message,
			Redirect: n.Redirect,
			DelayMs:  n.Delay.Milliseconds(),
		})
	}
	c.Set(notificationsKey, list)
}

func respond(c *gin.Context, status int, body gin.H) {
	if existing, ok := c.Get(notificationsKey); ok {
		if list, _ := existing.([]notificationResponse); len(list) > 0 {
			body["notifications"] = list
		}
	}
	c.JSON(status, body)
}

func statusFor(err error) int {
	var (
		verr *domain.ValidationError
		terr *domain.TokenizationError
		rerr *domain.RemoteRequestError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &terr):
		return http.StatusPaymentRequired
	case errors.As(err, &rerr):
		return http.StatusBadGateway
	case errors.Is(err, checkout.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("device", deviceFrom(c)),
			zap.Error(err),
		)
		msg = "internal error"
	}
	respond(c, status, gin.H{"error": msg})
}
