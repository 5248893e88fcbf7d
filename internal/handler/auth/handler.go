package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careflow/clinic-api/internal/handler"
	"github.com/careflow/clinic-api/internal/middleware"
	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/service/auth"
)

type Handler struct {
	service auth.Service
}

func NewHandler(service auth.Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the endpoints reachable without a session.
func (h *Handler) RegisterPublicRoutes(r gin.IRouter) {
	r.POST("/login", h.Login)
	r.POST("/register", h.Register)
	r.POST("/reset-password", h.ResetPassword)
	r.GET("/role/:email", h.ResolveRole)
}

// RegisterProtectedRoutes mounts the endpoints that need a verified session.
func (h *Handler) RegisterProtectedRoutes(r gin.IRouter, authMW *middleware.AuthMiddleware) {
	r.POST("/change-password", h.ChangePassword)
	r.POST("/admin/register", authMW.RequireRole(model.RoleAdmin), h.AdminRegister)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(session))
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(user))
}

func (h *Handler) AdminRegister(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	user, err := h.service.AdminRegister(c.Request.Context(), middleware.ClaimsFromContext(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(user))
}

func (h *Handler) ResolveRole(c *gin.Context) {
	role, err := h.service.ResolveRole(c.Request.Context(), c.Param("email"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"role": role}))
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), &req); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &handler.Response{
		Status:  "success",
		Message: "a temporary password has been sent to your email",
	})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), middleware.ClaimsFromContext(c), &req); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &handler.Response{
		Status:  "success",
		Message: "password updated",
	})
}
