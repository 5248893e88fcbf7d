package billing

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careflow/clinic-api/internal/handler"
	"github.com/careflow/clinic-api/internal/middleware"
	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/service/billing"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
)

type Handler struct {
	service billing.Service
}

func NewHandler(service billing.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, authMW *middleware.AuthMiddleware) {
	r.POST("/invoices", authMW.RequireRole(model.RoleDoctor, model.RoleReceptionist), h.Create)
	r.GET("/medical-records/:id/invoices",
		authMW.RequireRole(model.RoleReceptionist, model.RoleAdmin), h.ListByMedicalRecord)
	r.GET("/patients/:id/invoices", h.ListByPatient)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest("id must be an integer", err))
		return 0, false
	}
	return id, true
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	inv, err := h.service.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(inv))
}

func (h *Handler) ListByMedicalRecord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	invoices, err := h.service.ListByMedicalRecord(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(invoices))
}

func (h *Handler) ListByPatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	summaries, err := h.service.ListByPatient(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(summaries))
}
