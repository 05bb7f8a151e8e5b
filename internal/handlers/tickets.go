package handlers

import (
	"net/http"

	apperrors "evently/internal/errors"
	"evently/internal/models"

	"github.com/gin-gonic/gin"
)

// RefundTicket - POST /api/tickets/:id/refund
func (h *Handlers) RefundTicket(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	response, err := h.refunds.RefundTicket(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// CheckIn - POST /api/tickets/check-in
func (h *Handlers) CheckIn(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(apperrors.KindInvalidInput, apperrors.MsgInvalidTicketToken, err))
		return
	}

	response, err := h.tickets.CheckIn(c.Request.Context(), userID, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// TicketQRCode - GET /api/tickets/qr/:token
// Public: the signed token is the credential.
func (h *Handlers) TicketQRCode(c *gin.Context) {
	png, err := h.tickets.QRCode(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
