package handlers

import (
	"net/http"

	"github.com/fridgechef/fridgechef-api/internal/service"
	"github.com/gin-gonic/gin"
)

// SearchHandler handles recipe search requests.
type SearchHandler struct {
	Service *service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{Service: searchService}
}

// searchRequestBody is the POST /search payload.
type searchRequestBody struct {
	Ingredients []string `json:"ingredients"`
	Dish        string   `json:"dish"`
	Mode        string   `json:"mode"`
}

// SearchRecipes handles POST /search. Input validation is the only
// failure surfaced to the caller; everything upstream degrades inside
// the service and still yields HTTP 200.
func (h *SearchHandler) SearchRecipes(c *gin.Context) {
	var body searchRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ingredients := compactStrings(body.Ingredients)
	if len(ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ingredients are required"})
		return
	}

	mode := body.Mode
	if mode != service.ModeDetailed {
		mode = service.ModeFast
	}

	resp := h.Service.FindRecipes(c.Request.Context(), service.SearchRequest{
		Ingredients: ingredients,
		Dish:        body.Dish,
		Mode:        mode,
	})

	c.JSON(http.StatusOK, resp)
}
