// File: internal/listing/handler.go
package listing

import (
	"errors"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for listing handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new listing handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for listing operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	listings := router.Group("/listings")
	{
		listings.GET("", h.searchListings)
		listings.GET("/slug/:slug", h.getListingBySlug)
		listings.GET("/:id", h.getListingByID)

		authed := listings.Group("")
		authed.Use(authMW)
		{
			authed.POST("", h.createListing)
			authed.PUT("/:id", h.updateListing)
			authed.DELETE("/:id", h.deleteListing)
			authed.PATCH("/:id/status", adminMW, h.adminUpdateStatus)
		}
	}

	my := router.Group("/my-listings")
	my.Use(authMW)
	{
		my.GET("", h.getMyListings)
	}
}

func (h *Handler) createListing(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	l, err := h.service.CreateListing(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Listing created successfully.", ToListingResponse(l))
}

func (h *Handler) getListingByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	var authedUserID *uuid.UUID
	if uid := middleware.GetUserIDFromContext(c); uid != uuid.Nil {
		authedUserID = &uid
	}
	role := middleware.GetUserRoleFromContext(c)

	l, err := h.service.GetListingByID(c.Request.Context(), id, authedUserID, role)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing retrieved successfully.", ToListingResponse(l))
}

func (h *Handler) getListingBySlug(c *gin.Context) {
	var authedUserID *uuid.UUID
	if uid := middleware.GetUserIDFromContext(c); uid != uuid.Nil {
		authedUserID = &uid
	}
	role := middleware.GetUserRoleFromContext(c)

	l, err := h.service.GetListingBySlug(c.Request.Context(), c.Param("slug"), authedUserID, role)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing retrieved successfully.", ToListingResponse(l))
}

func (h *Handler) updateListing(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	l, err := h.service.UpdateListing(c.Request.Context(), id, userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing updated successfully.", ToListingResponse(l))
}

func (h *Handler) deleteListing(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	if err := h.service.DeleteListing(c.Request.Context(), id, userID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) searchListings(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	query := ListingSearchQuery{
		Page:      page,
		PageSize:  pageSize,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if term := c.Query("q"); term != "" {
		query.SearchTerm = &term
	}
	if lt := c.Query("listing_type"); lt != "" {
		listingType := ListingType(lt)
		switch listingType {
		case TypePhysical, TypeDigital, TypeTokenized:
			query.ListingType = &listingType
		default:
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing_type filter."))
			return
		}
	}
	if uid := c.Query("user_id"); uid != "" {
		parsed, err := uuid.Parse(uid)
		if err != nil {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid user_id filter."))
			return
		}
		query.UserID = &parsed
	}

	listings, pagination, err := h.service.SearchListings(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Listings retrieved successfully.", ToListingResponses(listings), pagination)
}

func (h *Handler) getMyListings(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	page, pageSize := common.GetPaginationParams(c)
	listings, pagination, err := h.service.GetUserListings(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Listings retrieved successfully.", ToListingResponses(listings), pagination)
}

func (h *Handler) adminUpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	var req AdminUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	l, err := h.service.AdminUpdateListingStatus(c.Request.Context(), id, ListingStatus(req.Status), req.AdminNotes)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.logger.Info("Admin listing status update", zap.String("listingID", id.String()), zap.String("status", req.Status))
	common.RespondOK(c, "Listing status updated successfully.", ToListingResponse(l))
}
