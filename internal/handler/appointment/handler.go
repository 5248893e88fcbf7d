package appointment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careflow/clinic-api/internal/handler"
	"github.com/careflow/clinic-api/internal/middleware"
	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/service/scheduling"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
)

type Handler struct {
	service scheduling.Service
}

func NewHandler(service scheduling.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, authMW *middleware.AuthMiddleware) {
	r.POST("/appointments",
		authMW.RequireRole(model.RoleStaff, model.RoleReceptionist, model.RolePatient), h.Book)
	r.GET("/appointments/next-slot", h.NextSlot)
	r.GET("/appointments/:id", h.Get)
	r.PATCH("/appointments/:id/status",
		authMW.RequireRole(model.RoleReceptionist, model.RoleAdmin), h.UpdateStatus)
	r.PATCH("/appointments/:id/treatment-status",
		authMW.RequireRole(model.RoleDoctor), h.UpdateTreatmentStatus)
	r.GET("/patients/:id/appointments", h.ListByPatient)
	r.GET("/specialties/:id/appointments",
		authMW.RequireRole(model.RoleDoctor), h.ListBySpecialty)
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	appointment, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

func (h *Handler) NextSlot(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		handler.RespondError(c, apperrors.BadRequest("date query parameter is required", nil))
		return
	}

	var specialtyID *int64
	if raw := c.Query("specialty_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			handler.RespondError(c, apperrors.BadRequest("specialty_id must be an integer", err))
			return
		}
		specialtyID = &id
	}

	slot, err := h.service.NextSlot(c.Request.Context(), date, specialtyID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slot))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	appointment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) ListByPatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	appointments, err := h.service.ListByPatient(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) ListBySpecialty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	appointments, err := h.service.ListBySpecialty(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &handler.Response{Status: "success", Message: "status updated"})
}

func (h *Handler) UpdateTreatmentStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.UpdateTreatmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	if err := h.service.UpdateTreatmentStatus(c.Request.Context(), id, req.TreatmentStatus); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &handler.Response{Status: "success", Message: "treatment status updated"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest("id must be an integer", err))
		return 0, false
	}
	return id, true
}
