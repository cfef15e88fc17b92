// File: internal/message/handler.go
package message

import (
	"errors"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for message handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new message handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the swap-scoped messaging routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	messages := router.Group("/swaps/:swap_id/messages")
	messages.Use(authMW)
	{
		messages.POST("", h.sendMessage)
		messages.GET("", h.getMessages)
		messages.POST("/mark-read", h.markConversationRead)
	}
}

func (h *Handler) sendMessage(c *gin.Context) {
	userID, swapID, ok := h.actorAndSwapID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), userID, swapID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Message sent successfully.", msg)
}

func (h *Handler) getMessages(c *gin.Context) {
	userID, swapID, ok := h.actorAndSwapID(c)
	if !ok {
		return
	}
	role := middleware.GetUserRoleFromContext(c)

	page, pageSize := common.GetPaginationParams(c)
	messages, pagination, err := h.service.GetMessagesForSwap(c.Request.Context(), userID, role, swapID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Messages retrieved successfully.", messages, pagination)
}

func (h *Handler) markConversationRead(c *gin.Context) {
	userID, swapID, ok := h.actorAndSwapID(c)
	if !ok {
		return
	}

	count, err := h.service.MarkConversationRead(c.Request.Context(), userID, swapID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Messages marked as read.", gin.H{"updated_count": count})
}

func (h *Handler) actorAndSwapID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}
	swapID, err := uuid.Parse(c.Param("swap_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid swap ID format."))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, swapID, true
}
