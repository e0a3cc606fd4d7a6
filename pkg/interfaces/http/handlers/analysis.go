package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/pluanalyzer/pkg/application/dto"
	"github.com/vsinha/pluanalyzer/pkg/application/services/assortment"
	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	csvloader "github.com/vsinha/pluanalyzer/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/pluanalyzer/pkg/interfaces/cli/output"
	apperrors "github.com/vsinha/pluanalyzer/pkg/shared/errors"
	"github.com/vsinha/pluanalyzer/pkg/shared/utils"
)

// Export kinds accepted by POST /api/analyze/export
const (
	ExportResults  = "results"
	ExportFiltered = "filtered"
	ExportAudit    = "audit"
)

// AnalyzeRequest is the JSON form of the session inputs
type AnalyzeRequest struct {
	Inventory []entities.InventoryRecord `json:"inventory"`
	Status    []entities.StatusRecord    `json:"status"`
	Products  []entities.ProductRecord   `json:"products"`
}

// AnalysisHandler runs the assortment analysis over uploaded session data
type AnalysisHandler struct {
	service     *assortment.Service
	loader      *csvloader.Loader
	dsLocations []string
	logger      *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *assortment.Service, loader *csvloader.Loader, dsLocations []string, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service:     service,
		loader:      loader,
		dsLocations: dsLocations,
		logger:      logger,
	}
}

// Analyze handles POST /api/analyze
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	filter, err := entities.ParseRecommendationFilter(c.Query("filter"))
	if err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError(err.Error()))
		return
	}

	report, ok := h.run(c)
	if !ok {
		return
	}

	filtered := *report
	filtered.Results = report.FilterResults(filter)
	utils.SuccessResponse(c, http.StatusOK, "", &filtered)
}

// Export handles POST /api/analyze/export and returns a CSV attachment
func (h *AnalysisHandler) Export(c *gin.Context) {
	filter, err := entities.ParseRecommendationFilter(c.Query("filter"))
	if err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError(err.Error()))
		return
	}
	kind := c.DefaultQuery("kind", ExportResults)
	if kind != ExportResults && kind != ExportFiltered && kind != ExportAudit {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError(fmt.Sprintf("unknown export kind %q", kind)))
		return
	}

	report, ok := h.run(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	var filename string
	switch kind {
	case ExportResults:
		filename = output.ResultsFileName(report.GeneratedAt, filter)
		err = output.WriteResultsCSV(&buf, report.FilterResults(filter), h.dsLocations)
	case ExportFiltered:
		filename = output.FilteredOutFileName(report.GeneratedAt)
		err = output.WriteFilteredOutCSV(&buf, report.FilteredOut)
	case ExportAudit:
		filename = output.AuditFileName(report.GeneratedAt)
		err = output.WriteFilteredOutCSV(&buf, report.Audit)
	}
	if err != nil {
		h.logger.Error("failed to write export", "kind", kind, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// run reads the session inputs and runs the analysis, writing the error response on failure
func (h *AnalysisHandler) run(c *gin.Context) (*dto.Report, bool) {
	inputs, err := h.readInputs(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return nil, false
	}

	report, err := h.service.Run(c.Request.Context(), inputs)
	if errors.Is(err, assortment.ErrIncompleteInputs) {
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError(err.Error()))
		return nil, false
	}
	if err != nil {
		h.logger.Error("analysis failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return nil, false
	}
	return report, true
}

// readInputs accepts either a JSON body or multipart inventory, status and product files
func (h *AnalysisHandler) readInputs(c *gin.Context) (dto.SessionInputs, error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return dto.SessionInputs{}, apperrors.NewBadRequestError("Invalid request body", err.Error())
		}
		return dto.SessionInputs{Inventory: req.Inventory, Status: req.Status, Products: req.Products}, nil
	}

	var inputs dto.SessionInputs
	var err error
	if inputs.Inventory, err = formFile(c, "inventory", h.loader.LoadInventory); err != nil {
		return inputs, err
	}
	if inputs.Status, err = formFile(c, "status", h.loader.LoadStatus); err != nil {
		return inputs, err
	}
	if inputs.Products, err = formFile(c, "product", h.loader.LoadProducts); err != nil {
		return inputs, err
	}
	return inputs, nil
}

// formFile parses an optional multipart file; a missing field yields nil records
func formFile[T any](c *gin.Context, field string, load func(io.Reader) ([]T, error)) ([]T, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewBadRequestError("Unable to read uploaded files", err.Error())
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperrors.NewBadRequestError("Unable to read uploaded file", err.Error())
	}
	defer f.Close()

	records, err := load(f)
	if err != nil {
		if appErr := apperrors.GetAppError(err); appErr != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("%s file: %s", field, appErr.Message), appErr.Details)
		}
		return nil, err
	}
	return records, nil
}
