package handlers

import (
	"net/http"

	"farmwatch-backend/internal/services"
	"farmwatch-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ProbeHandler struct {
	probeService *services.ProbeService
	validator    *validator.Validate
}

func NewProbeHandler(probeService *services.ProbeService) *ProbeHandler {
	return &ProbeHandler{
		probeService: probeService,
		validator:    validator.New(),
	}
}

// GetProbes retrieves all probes
func (h *ProbeHandler) GetProbes(c *gin.Context) {
	if status := c.Query("status"); status != "" {
		probes, err := h.probeService.GetProbesByStatus(status)
		if err != nil {
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve probes", err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Probes retrieved successfully", probes)
		return
	}

	probes, err := h.probeService.GetAllProbes()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve probes", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Probes retrieved successfully", probes)
}

// GetProbe retrieves a specific probe by ID
func (h *ProbeHandler) GetProbe(c *gin.Context) {
	probeID := c.Param("id")
	if probeID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Probe ID is required", nil)
		return
	}

	probe, err := h.probeService.GetProbeByID(probeID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Probe not found", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Probe retrieved successfully", probe)
}

// CreateProbe registers a new probe
func (h *ProbeHandler) CreateProbe(c *gin.Context) {
	var req services.CreateProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	probe, err := h.probeService.CreateProbe(&req)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to create probe", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Probe created successfully", probe)
}

// UpdateProbe updates an existing probe
func (h *ProbeHandler) UpdateProbe(c *gin.Context) {
	probeID := c.Param("id")
	if probeID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Probe ID is required", nil)
		return
	}

	var req services.UpdateProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	probe, err := h.probeService.UpdateProbe(probeID, &req)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to update probe", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Probe updated successfully", probe)
}

// DeleteProbe removes a probe
func (h *ProbeHandler) DeleteProbe(c *gin.Context) {
	probeID := c.Param("id")
	if probeID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Probe ID is required", nil)
		return
	}

	if err := h.probeService.DeleteProbe(probeID); err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Failed to delete probe", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Probe deleted successfully", nil)
}

// IngestReading records a sensor reading reported by a probe
func (h *ProbeHandler) IngestReading(c *gin.Context) {
	probeID := c.Param("id")
	if probeID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Probe ID is required", nil)
		return
	}

	var req services.IngestReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	probe, err := h.probeService.IngestReading(probeID, &req)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to record reading", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reading recorded successfully", probe)
}
