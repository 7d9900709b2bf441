package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/domain/models"
	service "github.com/quociou/pibao/internal/service/whatsapp"
)

// WebhookHandler is the chat front door of the journal: owner messages such as
// "/weight 4.3" or "/leftover 150" arrive here and are applied to today's record.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler wraps the messaging service that dispatches journal commands.
func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify GET /webhook. Echoes hub.challenge once the verify token matches.
func (h *WebhookHandler) Verify(c *gin.Context) {
	resp, err := h.svc.VerifyWebhookToken(c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"))
	if err != nil {
		h.logger.Warn("chat webhook verification failed", zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, resp)
}

// Receive POST /webhook. Each owner message is parsed as a journal command and
// answered in chat. Failures are logged and still acknowledged with 200 so a
// redelivery cannot log the same water bowl or weight twice.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid chat webhook payload", zap.Error(err))
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload")
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("journal command from chat failed", zap.Error(err))
	}

	c.Status(http.StatusOK)
}

// SendMessage POST /send-message. Sends free text to a recipient, e.g. a
// reminder digest triggered by hand.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("failed sending chat message", zap.String("to", req.To), zap.Error(err))
		fail(c, http.StatusBadGateway, ErrCodeSendFailed, "unable to send message")
		return
	}

	c.Status(http.StatusAccepted)
}
