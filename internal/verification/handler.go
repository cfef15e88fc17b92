// File: internal/verification/handler.go
package verification

import (
	"errors"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for verification handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new verification handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for verification operations. Review
// endpoints accept both admin and verifier roles, so the role check
// happens in the handler rather than through the admin middleware.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	verification := router.Group("/verification")
	verification.Use(authMW)
	{
		verification.POST("/requests", h.submit)
		verification.GET("/requests/my", h.getMyRequests)
		verification.GET("/requests/pending", h.listPending)
		verification.POST("/requests/:request_id/review", h.review)
	}
}

func (h *Handler) submit(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	request, err := h.service.Submit(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Verification request submitted successfully.", request)
}

func (h *Handler) getMyRequests(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	page, pageSize := common.GetPaginationParams(c)
	requests, pagination, err := h.service.GetMyRequests(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Verification requests retrieved successfully.", requests, pagination)
}

func (h *Handler) listPending(c *gin.Context) {
	if !common.CanReviewVerifications(middleware.GetUserRoleFromContext(c)) {
		common.RespondWithError(c, common.ErrForbidden.WithDetails("Reviewer privileges required."))
		return
	}

	page, pageSize := common.GetPaginationParams(c)
	requests, pagination, err := h.service.ListPending(c.Request.Context(), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Pending verification requests retrieved successfully.", requests, pagination)
}

func (h *Handler) review(c *gin.Context) {
	if !common.CanReviewVerifications(middleware.GetUserRoleFromContext(c)) {
		common.RespondWithError(c, common.ErrForbidden.WithDetails("Reviewer privileges required."))
		return
	}

	id, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid verification request ID format."))
		return
	}

	var req ReviewVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	request, err := h.service.Review(c.Request.Context(), id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.logger.Info("Verification review recorded",
		zap.String("requestID", id.String()),
		zap.String("decision", req.Decision))
	common.RespondOK(c, "Verification request reviewed successfully.", request)
}
