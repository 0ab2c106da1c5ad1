package handlers

import (
	"net/http"

	"github.com/fridgechef/fridgechef-api/internal/service"
	"github.com/gin-gonic/gin"
)

// RecommendHandler handles dish recommendation requests.
type RecommendHandler struct {
	Service *service.RecommendService
}

// NewRecommendHandler creates a new RecommendHandler.
func NewRecommendHandler(recommendService *service.RecommendService) *RecommendHandler {
	return &RecommendHandler{Service: recommendService}
}

// recommendRequestBody is the POST /recommend payload.
type recommendRequestBody struct {
	Ingredients []string `json:"ingredients"`
}

// RecommendDishes handles POST /recommend.
func (h *RecommendHandler) RecommendDishes(c *gin.Context) {
	var body recommendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ingredients := compactStrings(body.Ingredients)
	if len(ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ingredients are required"})
		return
	}

	resp := h.Service.Suggest(c.Request.Context(), ingredients)
	c.JSON(http.StatusOK, resp)
}
