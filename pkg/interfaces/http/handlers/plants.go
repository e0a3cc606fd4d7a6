package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/pluanalyzer/pkg/application/services/assortment"
	csvloader "github.com/vsinha/pluanalyzer/pkg/infrastructure/repositories/csv"
	apperrors "github.com/vsinha/pluanalyzer/pkg/shared/errors"
	"github.com/vsinha/pluanalyzer/pkg/shared/utils"
)

// PlantHandler manages the stored plant master
type PlantHandler struct {
	service *assortment.Service
	loader  *csvloader.Loader
	logger  *slog.Logger
}

// NewPlantHandler creates a new plant handler
func NewPlantHandler(service *assortment.Service, loader *csvloader.Loader, logger *slog.Logger) *PlantHandler {
	return &PlantHandler{service: service, loader: loader, logger: logger}
}

// GetStatus handles GET /api/plants
func (h *PlantHandler) GetStatus(c *gin.Context) {
	status, err := h.service.PlantStatus(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to read plant status", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", status)
}

// Import handles POST /api/plants with a multipart "file" field
func (h *PlantHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("A plant CSV file is required", err.Error()))
		return
	}

	f, err := header.Open()
	if err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("Unable to read uploaded file", err.Error()))
		return
	}
	defer f.Close()

	records, err := h.loader.LoadPlants(f)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	status, err := h.service.ImportPlants(c.Request.Context(), records, header.Filename)
	if err != nil {
		h.logger.Error("failed to import plant data", "file", header.Filename, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Plant data imported", status)
}

// Clear handles DELETE /api/plants
func (h *PlantHandler) Clear(c *gin.Context) {
	if err := h.service.ClearPlants(c.Request.Context()); err != nil {
		h.logger.Error("failed to clear plant data", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
