// File: internal/reputation/handler.go
package reputation

import (
	"errors"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for reputation operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	group := router.Group("/reputation")
	group.Use(authMW)
	{
		group.GET("/users/:user_id/score", h.getScore)
		group.GET("/users/:user_id/history", h.getHistory)
		group.POST("/users/:user_id/adjust", adminMW, h.adjustScore)
	}
}

func (h *Handler) getScore(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid user ID format."))
		return
	}

	score, err := h.service.GetScore(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Reputation score retrieved successfully.", ScoreResponse{UserID: userID, Score: score})
}

func (h *Handler) getHistory(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid user ID format."))
		return
	}

	// History carries adjustment reasons; only the user themselves or an
	// admin may see it.
	requestingUserID := middleware.GetUserIDFromContext(c)
	requestingRole := middleware.GetUserRoleFromContext(c)
	if requestingUserID != userID && !common.CanModerate(requestingRole) {
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You are not authorized to view this history."))
		return
	}

	page, pageSize := common.GetPaginationParams(c)
	entries, pagination, err := h.service.GetHistory(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Reputation history retrieved successfully.", entries, pagination)
}

func (h *Handler) adjustScore(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid user ID format."))
		return
	}

	var req AdjustScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	newScore, err := h.service.AdjustScore(c.Request.Context(), userID, req.Points, req.Reason)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.logger.Info("Admin reputation adjustment applied",
		zap.String("targetUserID", userID.String()),
		zap.Int("points", req.Points))
	common.RespondOK(c, "Reputation score adjusted successfully.", ScoreResponse{UserID: userID, Score: newScore})
}
