package handler

import (
	"net/http"
	"strconv"

	"anoa.com/communityrewards/internal/dto"
	"anoa.com/communityrewards/internal/service"
	"anoa.com/communityrewards/pkg/response"
	"anoa.com/communityrewards/pkg/validator"
	"github.com/gin-gonic/gin"
)

type RewardHandler struct {
	service service.RewardService
}

func NewRewardHandler(service service.RewardService) *RewardHandler {
	return &RewardHandler{service: service}
}

func (h *RewardHandler) Award(c *gin.Context) {
	var req dto.AwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.Award(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RewardHandler) GetBalance(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RewardHandler) ListEvents(c *gin.Context) {
	resp, err := h.service.ListActiveEvents(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *RewardHandler) GetLeaderboard(c *gin.Context) {
	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	resp, err := h.service.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
