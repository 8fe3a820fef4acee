package handler

import (
	"errors"

	apppayment "github.com/as-ga/saleor/internal/application/payment"
	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/as-ga/saleor/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransactionHandler handles payment transaction API endpoints
type TransactionHandler struct {
	BaseHandler
	service      *apppayment.TransactionUpdateService
	transactions payment.TransactionRepository
	logger       *zap.Logger
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(
	service *apppayment.TransactionUpdateService,
	transactions payment.TransactionRepository,
	logger *zap.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		service:      service,
		transactions: transactions,
		logger:       logger,
	}
}

// TransactionUpdateRequest is the request body for the update endpoint.
// Both sections are optional; an empty body still records the mutation
// attempt against the transaction without changing it.
type TransactionUpdateRequest struct {
	Transaction      *apppayment.TransactionUpdateInput `json:"transaction"`
	TransactionEvent *apppayment.TransactionEventInput  `json:"transactionEvent"`
}

// Update godoc
func (h *TransactionHandler) Update(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Transaction ID must be a valid UUID")
		return
	}
	id, err := uuid.Parse(uri.ID)
	if err != nil {
		h.BadRequest(c, "Transaction ID must be a valid UUID")
		return
	}

	var req TransactionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			details := make([]dto.ValidationDetail, 0, len(validationErrs))
			for _, fieldErr := range validationErrs {
				details = append(details, dto.ValidationDetail{
					Field:   fieldErr.Field(),
					Message: "Failed validation rule: " + fieldErr.Tag(),
				})
			}
			h.ValidationError(c, details)
			return
		}
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidJSON), dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
		return
	}

	requestor, err := getRequestor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	// Ownership gate. An app may only touch transactions it created and
	// staff users may only touch transactions no app owns. A missing
	// transaction falls through to the service, which reports it inside
	// the result envelope rather than as an HTTP error.
	if transaction, findErr := h.transactions.FindByID(c.Request.Context(), id); findErr == nil {
		if !requestor.CanModify(transaction) {
			h.Forbidden(c, "You do not have access to this transaction")
			return
		}
	} else if !errors.Is(findErr, shared.ErrNotFound) {
		h.logger.Error("Failed to load transaction for access check",
			zap.String("transaction_id", id.String()),
			zap.Error(findErr),
		)
		h.InternalError(c, "An unexpected error occurred")
		return
	}

	result, err := h.service.Update(c.Request.Context(), requestor, id, req.Transaction, req.TransactionEvent)
	if err != nil {
		h.logger.Error("Transaction update failed",
			zap.String("transaction_id", id.String()),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
