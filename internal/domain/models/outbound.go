package models

// OutboundMessageRequest is a message pushed to a WhatsApp recipient through the API
// or by the scheduler.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}
