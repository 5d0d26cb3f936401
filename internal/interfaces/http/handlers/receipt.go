package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bivex/receipt-verify/internal/application/command"
	"github.com/bivex/receipt-verify/internal/application/dto"
	domainErrors "github.com/bivex/receipt-verify/internal/domain/errors"
	"github.com/bivex/receipt-verify/internal/infrastructure/logging"
	"github.com/bivex/receipt-verify/internal/interfaces/http/response"
)

// ReceiptHandler handles receipt validation endpoints
type ReceiptHandler struct {
	validateCmd *command.ValidateReceiptCommand
	cacheTTL    time.Duration
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(validateCmd *command.ValidateReceiptCommand, cacheTTL time.Duration) *ReceiptHandler {
	return &ReceiptHandler{
		validateCmd: validateCmd,
		cacheTTL:    cacheTTL,
	}
}

// ValidateReceipt handles receipt validation requests. The body is always
// a ValidationVerdict; the HTTP status carries the failure category. A
// well-formed business "no" is still a 200.
func (h *ReceiptHandler) ValidateReceipt(c *gin.Context) {
	var req dto.ValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, http.StatusBadRequest, "invalid request format")
		return
	}

	verdict, err := h.validateCmd.Execute(c.Request.Context(), &req)
	if err != nil {
		logger := logging.GetLogger(c)
		switch {
		case errors.Is(err, domainErrors.ErrReceiptRequired),
			errors.Is(err, domainErrors.ErrInvalidAppID):
			response.Verdict(c, http.StatusBadRequest, verdict)
		case errors.Is(err, domainErrors.ErrUpstreamTimeout):
			logger.Warn("receipt validation timed out", zap.Error(err))
			response.Verdict(c, http.StatusRequestTimeout, verdict)
		case errors.Is(err, domainErrors.ErrUpstreamNetwork):
			logger.Error("upstream verification unreachable", zap.Error(err))
			response.Verdict(c, http.StatusBadGateway, verdict)
		default:
			logger.Error("unexpected validation failure", zap.Error(err))
			sentry.CaptureException(err)
			response.Verdict(c, http.StatusInternalServerError, verdict)
		}
		return
	}

	if verdict.IsValid {
		response.CacheHint(c, h.cacheTTL)
	}
	response.Verdict(c, http.StatusOK, verdict)
}
