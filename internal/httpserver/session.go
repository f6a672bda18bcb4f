package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brewhaha/internal/service/checkout"
)

type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handler) signIn(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if _, err := h.sessionFor(deviceFrom(c)).SignIn(c.Request.Context(), req.Username, req.Password); err != nil {
		notify(c, checkout.Notification{Message: err.Error()})
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"authenticated": true, "redirect": "/"})
}

func (h *handler) signUp(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if _, err := h.sessionFor(deviceFrom(c)).SignUp(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		notify(c, checkout.Notification{Message: err.Error()})
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"authenticated": true, "redirect": "/"})
}

func (h *handler) signOut(c *gin.Context) {
	deviceID := deviceFrom(c)
	if err := h.sessionFor(deviceID).SignOut(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	h.checkouts.reset(deviceID)
	respond(c, http.StatusOK, gin.H{"authenticated": false, "redirect": "/signin"})
}

func (h *handler) getSession(c *gin.Context) {
	ok, err := h.sessionFor(deviceFrom(c)).Authenticated(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"authenticated": ok})
}

// requireSession sends signed-out devices to the sign-in view.
func (h *handler) requireSession(c *gin.Context) {
	token, err := h.sessionFor(deviceFrom(c)).Token(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		c.Abort()
		return
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required", "redirect": "/signin"})
		return
	}
	c.Set(authTokenKey, token)
	c.Next()
}
