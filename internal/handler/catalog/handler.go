package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careflow/clinic-api/internal/handler"
	"github.com/careflow/clinic-api/internal/middleware"
	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/service/catalog"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
)

type Handler struct {
	service catalog.Service
}

func NewHandler(service catalog.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the reference-data endpoints. Reads are open to any
// session; mutations are admin-only.
func (h *Handler) RegisterRoutes(r gin.IRouter, authMW *middleware.AuthMiddleware) {
	admin := authMW.RequireRole(model.RoleAdmin)

	r.GET("/specialties", h.ListSpecialties)
	r.GET("/specialties/:id", h.GetSpecialty)
	r.POST("/specialties", admin, h.CreateSpecialty)
	r.PUT("/specialties/:id", admin, h.UpdateSpecialty)
	r.DELETE("/specialties/:id", admin, h.DeleteSpecialty)

	r.GET("/services", h.ListServices)
	r.GET("/services/:id", h.GetService)
	r.POST("/services", admin, h.CreateService)
	r.PUT("/services/:id", admin, h.UpdateService)
	r.DELETE("/services/:id", admin, h.DeleteService)

	r.GET("/medicines", h.ListMedicines)
	r.GET("/medicines/:id", h.GetMedicine)
	r.POST("/medicines", admin, h.CreateMedicine)
	r.PUT("/medicines/:id", admin, h.UpdateMedicine)
	r.DELETE("/medicines/:id", admin, h.DeleteMedicine)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest("id must be an integer", err))
		return 0, false
	}
	return id, true
}

func (h *Handler) ListSpecialties(c *gin.Context) {
	specialties, err := h.service.ListSpecialties(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(specialties))
}

func (h *Handler) GetSpecialty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	specialty, err := h.service.GetSpecialty(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(specialty))
}

func (h *Handler) CreateSpecialty(c *gin.Context) {
	var req model.SpecialtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	specialty, err := h.service.CreateSpecialty(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(specialty))
}

func (h *Handler) UpdateSpecialty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.SpecialtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	specialty, err := h.service.UpdateSpecialty(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(specialty))
}

func (h *Handler) DeleteSpecialty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSpecialty(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &handler.Response{Status: "success", Message: "specialty deleted"})
}

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.service.ListServices(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(services))
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	svc, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(svc))
}

func (h *Handler) CreateService(c *gin.Context) {
	var req model.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	svc, err := h.service.CreateService(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(svc))
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	svc, err := h.service.UpdateService(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(svc))
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteService(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &handler.Response{Status: "success", Message: "service deleted"})
}

func (h *Handler) ListMedicines(c *gin.Context) {
	medicines, err := h.service.ListMedicines(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(medicines))
}

func (h *Handler) GetMedicine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	medicine, err := h.service.GetMedicine(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(medicine))
}

func (h *Handler) CreateMedicine(c *gin.Context) {
	var req model.MedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	medicine, err := h.service.CreateMedicine(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(medicine))
}

func (h *Handler) UpdateMedicine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.MedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}
	medicine, err := h.service.UpdateMedicine(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(medicine))
}

func (h *Handler) DeleteMedicine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteMedicine(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &handler.Response{Status: "success", Message: "medicine deleted"})
}
