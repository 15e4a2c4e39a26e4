package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	membershipUsecases "guildpass/internal/application/membership/usecases"
	"guildpass/internal/domain/mapping"
	"guildpass/internal/shared/logger"
	"guildpass/internal/shared/utils"
)

// MappingHandler manages a tenant's price to role mappings.
type MappingHandler struct {
	saveUC      *membershipUsecases.SavePriceRoleMappingUseCase
	mappingRepo mapping.Repository
	logger      logger.Interface
}

// NewMappingHandler creates a new MappingHandler
func NewMappingHandler(
	saveUC *membershipUsecases.SavePriceRoleMappingUseCase,
	mappingRepo mapping.Repository,
	logger logger.Interface,
) *MappingHandler {
	return &MappingHandler{
		saveUC:      saveUC,
		mappingRepo: mappingRepo,
		logger:      logger,
	}
}

// SaveMappingRequest represents the request to install a price to role
// mapping for one guild
type SaveMappingRequest struct {
	RolesByPrice map[string][]string `json:"roles_by_price" binding:"required"`
}

// MappingResponse represents one tenant+guild mapping
type MappingResponse struct {
	TenantID     string              `json:"tenant_id"`
	GuildID      string              `json:"guild_id"`
	RolesByPrice map[string][]string `json:"roles_by_price"`
}

// SaveMapping installs or updates the mapping for a guild.
// PUT /tenants/:tenantID/guilds/:guildID/mapping
func (h *MappingHandler) SaveMapping(c *gin.Context) {
	tenantID := c.Param("tenantID")
	guildID := c.Param("guildID")

	var req SaveMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "roles_by_price is required")
		return
	}

	saved, err := h.saveUC.Execute(c.Request.Context(), tenantID, guildID, req.RolesByPrice)
	if err != nil {
		h.logger.Errorw("failed to save mapping", "tenant_id", tenantID, "guild_id", guildID, "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to save mapping")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "mapping saved", MappingResponse{
		TenantID:     saved.TenantID(),
		GuildID:      saved.GuildID(),
		RolesByPrice: saved.RolesByPrice(),
	})
}

// ListMappings returns every guild mapping for a tenant.
// GET /tenants/:tenantID/mappings
func (h *MappingHandler) ListMappings(c *gin.Context) {
	tenantID := c.Param("tenantID")

	mappings, err := h.mappingRepo.ListByTenant(c.Request.Context(), tenantID)
	if err != nil && !errors.Is(err, mapping.ErrMappingNotFound) {
		h.logger.Errorw("failed to list mappings", "tenant_id", tenantID, "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to list mappings")
		return
	}

	out := make([]MappingResponse, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, MappingResponse{
			TenantID:     m.TenantID(),
			GuildID:      m.GuildID(),
			RolesByPrice: m.RolesByPrice(),
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", out)
}
