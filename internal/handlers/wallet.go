package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetWallet - GET /api/wallet
func (h *Handlers) GetWallet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	response, err := h.wallets.GetWallet(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
