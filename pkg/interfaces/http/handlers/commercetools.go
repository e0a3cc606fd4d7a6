package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/commercetools"
	apperrors "github.com/vsinha/pluanalyzer/pkg/shared/errors"
	"github.com/vsinha/pluanalyzer/pkg/shared/utils"
)

// SSEContentType is the content type for SSE responses
const SSEContentType = "text/event-stream"

type progressEvent struct {
	Type string `json:"type"`
	commercetools.Progress
}

type completeData struct {
	InventoryCount int                          `json:"inventoryCount"`
	StatusCount    int                          `json:"statusCount"`
	ChannelCount   int                          `json:"channelCount"`
	Subrequests    commercetools.RequestSummary `json:"subrequests"`
}

type completeEvent struct {
	Type string       `json:"type"`
	Data completeData `json:"data"`
}

type dataEvent struct {
	Type      string                     `json:"type"`
	Inventory []entities.InventoryRecord `json:"inventory"`
	Status    []entities.StatusRecord    `json:"status"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CommerceToolsHandler exposes the storefront fetch; client is nil when credentials are missing
type CommerceToolsHandler struct {
	client *commercetools.Client
	logger *slog.Logger
}

// NewCommerceToolsHandler creates a new storefront handler
func NewCommerceToolsHandler(client *commercetools.Client, logger *slog.Logger) *CommerceToolsHandler {
	return &CommerceToolsHandler{client: client, logger: logger}
}

// Status handles GET /api/ct/status
func (h *CommerceToolsHandler) Status(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"configured": h.client != nil})
}

// Fetch handles POST /api/ct/fetch, streaming progress then the fetched records as server-sent events
func (h *CommerceToolsHandler) Fetch(c *gin.Context) {
	if h.client == nil {
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("CommerceTools credentials not configured"))
		return
	}

	c.Header("Content-Type", SSEContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	var mu sync.Mutex
	send := func(event any) {
		mu.Lock()
		defer mu.Unlock()
		if err := writeEvent(c, event); err != nil {
			h.logger.Warn("SSE write error", "error", err)
		}
	}

	log := commercetools.NewRequestLog()
	dataset, err := h.client.Fetch(c.Request.Context(), log, func(p commercetools.Progress) {
		send(progressEvent{Type: "progress", Progress: p})
	})
	if err != nil {
		h.logger.Error("storefront fetch failed", "error", err, "subrequests", log.Total())
		send(errorEvent{Type: "error", Message: apperrors.UserMessage(err)})
		return
	}

	send(completeEvent{
		Type: "complete",
		Data: completeData{
			InventoryCount: len(dataset.Inventory),
			StatusCount:    len(dataset.Status),
			ChannelCount:   dataset.ChannelCount,
			Subrequests:    dataset.Requests,
		},
	})
	send(dataEvent{Type: "data", Inventory: dataset.Inventory, Status: dataset.Status})
}

func writeEvent(c *gin.Context, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
