package record

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careflow/clinic-api/internal/handler"
	"github.com/careflow/clinic-api/internal/middleware"
	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/service/record"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
)

type Handler struct {
	service record.Service
}

func NewHandler(service record.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, authMW *middleware.AuthMiddleware) {
	r.POST("/medical-records", authMW.RequireRole(model.RoleDoctor), h.Create)
	r.GET("/patients/:id/medical-records", h.ListByPatient)
	r.PATCH("/medical-records/:id/pay",
		authMW.RequireRole(model.RoleReceptionist, model.RoleAdmin), h.MarkPaid)
	r.POST("/prescriptions", authMW.RequireRole(model.RoleDoctor), h.CreatePrescription)
	r.GET("/medical-records/:id/prescriptions", h.ListPrescriptions)
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
	var req model.CreateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	rec, err := h.service.CreateRecord(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rec))
}

func (h *Handler) ListByPatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	records, err := h.service.ListByPatient(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) MarkPaid(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.MarkPaid(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &handler.Response{Status: "success", Message: "medical record marked paid"})
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	p, err := h.service.CreatePrescription(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(p))
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	prescriptions, err := h.service.ListPrescriptions(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(prescriptions))
}
