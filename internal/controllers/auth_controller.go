package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_tracker/internal/services"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Signup registers a passenger or driver and returns a token.
func (ac *AuthController) Signup(c *gin.Context) {
	var input services.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input", err)
		return
	}
	session, err := ac.auth.Signup(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, session, "Account created")
}

func (ac *AuthController) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input", err)
		return
	}
	session, err := ac.auth.Login(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, session, "Login successful")
}

// Me returns the authenticated user.
func (ac *AuthController) Me(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	user, err := ac.auth.Me(c.Request.Context(), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user, "")
}
