package public

import (
	"github.com/dropforge/internal/http/response"
	"github.com/dropforge/internal/service"

	"github.com/gin-gonic/gin"
)

// ClaimCheckRequest probes eligibility without opening an order.
type ClaimCheckRequest struct {
	CollectibleID uint   `json:"collectible_id" binding:"required"`
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address"`
	DeviceID      string `json:"device_id"`
}

// ClaimRequest opens a claim order.
type ClaimRequest struct {
	CollectibleID uint   `json:"collectible_id" binding:"required"`
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address"`
	DeviceID      string `json:"device_id"`
}

// CheckClaim runs the eligibility rules without side effects.
func (h *Handler) CheckClaim(c *gin.Context) {
	var req ClaimCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	result, _, err := h.EligibilityService.CheckEligibility(service.Identity{
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
		DeviceID:      req.DeviceID,
	}, req.CollectibleID)
	if err != nil {
		respondClaimError(c, err)
		return
	}
	response.Success(c, result)
}

// InitiateClaim opens an order for an eligible identity.
func (h *Handler) InitiateClaim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	result, err := h.OrderService.InitiateOrder(c.Request.Context(), service.InitiateOrderInput{
		Identity: service.Identity{
			Email:         req.Email,
			WalletAddress: req.WalletAddress,
			DeviceID:      req.DeviceID,
		},
		CollectibleID: req.CollectibleID,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		respondClaimError(c, err)
		return
	}
	response.Success(c, result)
}

// VisitClaim spends a claim link. The code works exactly once.
func (h *Handler) VisitClaim(c *gin.Context) {
	code := c.Param("code")
	order, err := h.SettlementService.HandleClaimVisit(code)
	if err != nil {
		respondClaimVisitError(c, err)
		return
	}
	response.Success(c, order)
}
