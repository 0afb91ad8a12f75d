// internal/handler/print_handler.go
package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-service/internal/model"
	"print-service/internal/receipt"
	"print-service/internal/repository"
	"print-service/internal/transport"
	"print-service/internal/utils"
)

// PrintHandler exposes the print and printer-lifecycle endpoints.
type PrintHandler struct {
	printer *transport.Service
	jobs    repository.PrintJobRepository
	opts    *receipt.Options
	logger  *utils.ServiceLogger
}

// NewPrintHandler creates a new print handler. jobs may be nil when
// job history is disabled.
func NewPrintHandler(
	printer *transport.Service,
	jobs repository.PrintJobRepository,
	opts *receipt.Options,
	logger *zap.Logger,
) *PrintHandler {
	return &PrintHandler{
		printer: printer,
		jobs:    jobs,
		opts:    opts,
		logger:  utils.NewServiceLogger(logger, "print-handler"),
	}
}

// RegisterRoutes registers print routes
func (h *PrintHandler) RegisterRoutes(router *gin.RouterGroup) {
	print := router.Group("/print")
	{
		print.POST("/receipt", h.PrintReceipt)
		print.POST("/preview", h.PreviewReceipt)
		print.POST("/raw", h.PrintRaw)
		print.GET("/jobs", h.ListJobs)
	}

	printer := router.Group("/printer")
	{
		printer.POST("/connect", h.Connect)
		printer.POST("/disconnect", h.Disconnect)
		printer.GET("/status", h.Status)
	}
}

// PrintReceiptRequest carries the sale record plus optional layout
// overrides. Omitted options fall back to service configuration.
type PrintReceiptRequest struct {
	Sale    receipt.Sale     `json:"sale" binding:"required"`
	Options *receipt.Options `json:"options"`
}

// PrintRawRequest carries a prebuilt command buffer as base64.
type PrintRawRequest struct {
	Data string `json:"data" binding:"required"`
}

// PrintReceipt builds the receipt for a sale and dispatches it
func (h *PrintHandler) PrintReceipt(c *gin.Context) {
	var req PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if len(req.Sale.Items) == 0 {
		utils.ValidationErrorResponse(c, map[string]string{
			"sale.items": "at least one item is required",
		})
		return
	}

	opts := h.mergeOptions(req.Options)
	buffer := receipt.FromSale(&req.Sale, opts).Build()

	jobID := uuid.New()
	jobLogger := utils.NewPrintJobLogger(h.logger.Logger, jobID.String())
	jobLogger.Start(zap.Int("order_number", req.Sale.OrderNumber))

	result := h.printer.PrintReceipt(c.Request.Context(), &req.Sale, opts)
	if result.Success {
		jobLogger.Success(len(buffer))
	} else {
		jobLogger.Error(errors.New(result.Message))
	}

	h.recordJob(jobID, &req.Sale, len(buffer), result)

	h.respondWithResult(c, result)
}

// PreviewReceipt builds the receipt without touching the printer and
// returns the command buffer as base64. The POS client uses this for
// reprint queues and debugging printer layouts.
func (h *PrintHandler) PreviewReceipt(c *gin.Context) {
	var req PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	opts := h.mergeOptions(req.Options)
	builder := receipt.FromSale(&req.Sale, opts)

	utils.SuccessResponse(c, http.StatusOK, "Receipt built", gin.H{
		"data":       builder.ToBase64(),
		"byte_count": len(builder.Build()),
	})
}

// PrintRaw dispatches a caller-built command buffer
func (h *PrintHandler) PrintRaw(c *gin.Context) {
	var req PrintRawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid base64 data", err)
		return
	}
	if len(data) == 0 {
		utils.ValidationErrorResponse(c, map[string]string{
			"data": "decoded buffer is empty",
		})
		return
	}

	jobID := uuid.New()
	jobLogger := utils.NewPrintJobLogger(h.logger.Logger, jobID.String())
	jobLogger.Start(zap.Int("byte_count", len(data)))

	result := h.printer.Print(c.Request.Context(), data)
	if result.Success {
		jobLogger.Success(len(data))
	} else {
		jobLogger.Error(errors.New(result.Message))
	}

	h.recordJob(jobID, nil, len(data), result)

	h.respondWithResult(c, result)
}

// ListJobs returns the recent print-job history
func (h *PrintHandler) ListJobs(c *gin.Context) {
	if h.jobs == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Job history is not configured", nil)
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			utils.ValidationErrorResponse(c, map[string]string{
				"limit": "must be an integer between 1 and 500",
			})
			return
		}
		limit = parsed
	}

	jobs, err := h.jobs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list print jobs", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Print jobs retrieved", gin.H{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// Connect opens the configured printer connection
func (h *PrintHandler) Connect(c *gin.Context) {
	result := h.printer.Connect(c.Request.Context())
	h.respondWithResult(c, result)
}

// Disconnect releases the printer connection
func (h *PrintHandler) Disconnect(c *gin.Context) {
	result := h.printer.Disconnect()
	h.respondWithResult(c, result)
}

// Status returns the current transport status snapshot
func (h *PrintHandler) Status(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Printer status", h.printer.Status())
}

// mergeOptions overlays request options on the configured defaults
func (h *PrintHandler) mergeOptions(override *receipt.Options) *receipt.Options {
	if override == nil {
		return h.opts
	}

	merged := *h.opts
	if override.PaperSize != "" {
		merged.PaperSize = override.PaperSize
	}
	if override.StoreName != "" {
		merged.StoreName = override.StoreName
	}
	if override.StoreSubtitle != "" {
		merged.StoreSubtitle = override.StoreSubtitle
	}
	if override.FooterMessage != "" {
		merged.FooterMessage = override.FooterMessage
	}
	if override.PrintBarcode != nil {
		merged.PrintBarcode = override.PrintBarcode
	}
	if override.CutPaper != nil {
		merged.CutPaper = override.CutPaper
	}
	if override.OpenDrawer != nil {
		merged.OpenDrawer = override.OpenDrawer
	}
	return &merged
}

// recordJob writes the attempt to the history store. Best effort off
// the request path; a history failure never fails the print call.
func (h *PrintHandler) recordJob(jobID uuid.UUID, sale *receipt.Sale, byteCount int, result *transport.PrintResult) {
	if h.jobs == nil {
		return
	}

	job := &model.PrintJob{
		ID:             jobID,
		ConnectionType: h.printer.Status().ConnectionType,
		ByteCount:      byteCount,
		Success:        result.Success,
		Message:        result.Message,
		CreatedAt:      time.Now(),
	}
	if sale != nil {
		job.OrderNumber = int64(sale.OrderNumber)
	}
	if result.Error != nil {
		job.ErrorCode = string(result.Error.Code)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.jobs.Create(ctx, job); err != nil {
			h.logger.Error("Failed to record print job", zap.Error(err))
		}
	}()
}

// respondWithResult maps a transport result onto an HTTP response.
// The result body is returned as-is so clients see the same shape on
// every outcome.
func (h *PrintHandler) respondWithResult(c *gin.Context, result *transport.PrintResult) {
	statusCode := http.StatusOK
	if !result.Success && result.Error != nil {
		switch result.Error.Code {
		case transport.ErrNotImplemented:
			statusCode = http.StatusNotImplemented
		case transport.ErrCapabilityUnavailable, transport.ErrNoDevice,
			transport.ErrOpenFailed, transport.ErrWriteFailed:
			statusCode = http.StatusServiceUnavailable
		default:
			statusCode = http.StatusInternalServerError
		}
	}

	c.JSON(statusCode, result)
}
