// File: internal/swap/handler.go
package swap

import (
	"errors"
	"io"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for swap handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new swap handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for swap negotiation, counter-offers
// and contract signing. Everything requires authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	swaps := router.Group("/swaps")
	swaps.Use(authMW)
	{
		swaps.POST("", h.proposeSwap)
		swaps.GET("", h.listSwaps)
		swaps.GET("/:swap_id", h.getSwap)
		swaps.POST("/:swap_id/respond", h.respondToSwap)
		swaps.POST("/:swap_id/cancel", h.cancelSwap)
		swaps.POST("/:swap_id/complete", h.completeSwap)
		swaps.POST("/:swap_id/dispute", h.disputeSwap)

		swaps.POST("/:swap_id/counter-offers", h.createCounterOffer)
		swaps.GET("/:swap_id/counter-offers", h.listCounterOffers)

		swaps.POST("/:swap_id/contract/sign", h.signContract)
		swaps.GET("/:swap_id/contract", h.getContract)
	}

	counters := router.Group("/counter-offers")
	counters.Use(authMW)
	{
		counters.POST("/:counter_offer_id/accept", h.acceptCounterOffer)
		counters.POST("/:counter_offer_id/reject", h.rejectCounterOffer)
	}
}

func (h *Handler) proposeSwap(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req ProposeSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	swapReq, err := h.service.ProposeSwap(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Swap request created successfully.", swapReq)
}

func (h *Handler) listSwaps(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	page, pageSize := common.GetPaginationParams(c)
	query := SwapListQuery{Page: page, PageSize: pageSize}
	if status := c.Query("status"); status != "" {
		st := SwapStatus(status)
		switch st {
		case SwapStatusPending, SwapStatusAccepted, SwapStatusRejected,
			SwapStatusCompleted, SwapStatusDisputed, SwapStatusCancelled:
			query.Status = &st
		default:
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid status filter."))
			return
		}
	}

	swaps, pagination, err := h.service.ListSwaps(c.Request.Context(), userID, query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Swap requests retrieved successfully.", swaps, pagination)
}

func (h *Handler) getSwap(c *gin.Context) {
	userID, swapID, ok := h.actorAndSwapID(c)
	if !ok {
		return
	}
	role := middleware.GetUserRoleFromContext(c)

	swapReq, err := h.service.GetSwap(c.Request.Context(), userID, role, swapID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Swap request retrieved successfully.", swapReq)
}

func (h *Handler) respondToSwap(c *gin.Context) {
	userID, swapID, ok := h.actorAndSwapID(c)
	if !ok {
		return
	}

	var req RespondSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	swapReq, err := h.service.RespondToSwap(c.Request.Context(), userID, swapID, req.Decision)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Swap request updated successfully.", swapReq)
}

func (h *Handler) cancelSwap(c *gin.Context) {
	userID, swapID, ok := h.actorAndSwapID(c)
	if !ok {
		return
	}

	swapReq, err := h.service.CancelSwap(c.Request.Context(), userID, swapID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Swap request cancelled successfully.", swapReq)
}

func (h *Handler) completeSwap(c *gin.Context) {
	userID, swapID, ok := h.actorAndSwapID(c)
	if !ok {
		return
	}

	swapReq, err := h.service.CompleteSwap(c.Request.Context(), userID, swapID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Swap completed successfully.", swapReq)
}

func (h *Handler) disputeSwap(c *gin.Context) {
	userID, swapID, ok := h.actorAndSwapID(c)
	if !ok {
		return
	}

	swapReq, err := h.service.DisputeSwap(c.Request.Context(), userID, swapID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Dispute opened successfully.", swapReq)
}

func (h *Handler) createCounterOffer(c *gin.Context) {
	userID, swapID, ok := h.actorAndSwapID(c)
	if !ok {
		return
	}

	var req CreateCounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	counter, err := h.service.CreateCounterOffer(c.Request.Context(), userID, swapID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Counter-offer created successfully.", counter)
}

func (h *Handler) listCounterOffers(c *gin.Context) {
	userID, swapID, ok := h.actorAndSwapID(c)
	if !ok {
		return
	}
	role := middleware.GetUserRoleFromContext(c)

	counters, err := h.service.ListCounterOffers(c.Request.Context(), userID, role, swapID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Counter-offers retrieved successfully.", counters)
}

func (h *Handler) acceptCounterOffer(c *gin.Context) {
	userID, counterID, ok := h.actorAndParamID(c, "counter_offer_id", "Invalid counter-offer ID format.")
	if !ok {
		return
	}

	counter, err := h.service.AcceptCounterOffer(c.Request.Context(), userID, counterID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Counter-offer accepted successfully.", counter)
}

func (h *Handler) rejectCounterOffer(c *gin.Context) {
	userID, counterID, ok := h.actorAndParamID(c, "counter_offer_id", "Invalid counter-offer ID format.")
	if !ok {
		return
	}

	counter, err := h.service.RejectCounterOffer(c.Request.Context(), userID, counterID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Counter-offer rejected successfully.", counter)
}

func (h *Handler) signContract(c *gin.Context) {
	userID, swapID, ok := h.actorAndSwapID(c)
	if !ok {
		return
	}

	// An empty body is a valid signing request; the service generates
	// a signature token when none is supplied. The bind is attempted
	// regardless of Content-Length so chunked requests still carry
	// their payload through; only EOF (no body at all) is tolerated.
	var req SignContractRequest
	if c.Request.Body != nil {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
				return
			}
			common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
			return
		}
	}

	contract, err := h.service.SignContract(c.Request.Context(), userID, swapID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Contract signed successfully.", contract)
}

func (h *Handler) getContract(c *gin.Context) {
	userID, swapID, ok := h.actorAndSwapID(c)
	if !ok {
		return
	}
	role := middleware.GetUserRoleFromContext(c)

	contract, err := h.service.GetContract(c.Request.Context(), userID, role, swapID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Contract retrieved successfully.", contract)
}

func (h *Handler) actorAndSwapID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	return h.actorAndParamID(c, "swap_id", "Invalid swap ID format.")
}

func (h *Handler) actorAndParamID(c *gin.Context, param, invalidMsg string) (uuid.UUID, uuid.UUID, bool) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(invalidMsg))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
