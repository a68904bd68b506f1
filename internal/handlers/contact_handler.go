package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContactMailer relays a contact-form submission to the support inbox.
type ContactMailer interface {
	SendContactMessage(ctx context.Context, name, email, subject, message string) error
}

type ContactHandler struct {
	mailer ContactMailer
}

func NewContactHandler(mailer ContactMailer) *ContactHandler {
	return &ContactHandler{mailer: mailer}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// POST /api/contact
func (h *ContactHandler) SendMessage(c *gin.Context) {
	var req ContactRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing required fields"})
		return
	}

	if err := h.mailer.SendContactMessage(c.Request.Context(), req.Name, req.Email, req.Subject, req.Message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to send email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
