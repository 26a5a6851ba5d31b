package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pms/internal/http/middleware"
	"pms/internal/services"
)

type AuthHandler struct {
	Auth services.AuthService
}

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := h.Auth.Register(c.Request.Context(), services.Registration{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user.ToPublic())
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	token, user, err := h.Auth.Login(c.Request.Context(), services.Credentials{
		Login:    req.Login,
		Password: req.Password,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user.ToPublic()})
}

func (h AuthHandler) Me(c *gin.Context) {
	user, err := h.Auth.Me(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.ToPublic())
}
