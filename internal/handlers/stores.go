package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultStoreListLimit = 100

// @Summary      List stores
// @Tags         stores
// @Produce      json
// @Param        limit  query  int  false  "Maximum number of stores"  default(100)
// @Success      200  {object}  map[string]interface{}  "count, stores"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/stores [get]
// @Security     BearerAuth
func (h *Handler) listStores(c *gin.Context) {
	ctx := c.Request.Context()

	limit := defaultStoreListLimit
	if qs := c.Query("limit"); qs != "" {
		n, err := strconv.Atoi(qs)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit'; must be a positive integer"})
			return
		}
		limit = n
	}

	stores, err := h.services.List(ctx, limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to list stores", "stores_list_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(stores),
		"stores": stores,
	})
}
