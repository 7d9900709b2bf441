package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/quociou/pibao/internal/domain/models"
)

type stubMessaging struct {
	verifyFn func(mode, token, challenge string) (string, error)
	handleFn func(models.WebhookPayload) error
	sendFn   func(models.OutboundMessageRequest) error
}

func (s stubMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	return s.verifyFn(mode, token, challenge)
}
func (s stubMessaging) HandleWebhook(_ context.Context, p models.WebhookPayload) error {
	return s.handleFn(p)
}
func (s stubMessaging) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	return s.sendFn(req)
}

func webhookEngine(m stubMessaging) *gin.Engine {
	return webhookEngineWithLogger(m, nil)
}

func webhookEngineWithLogger(m stubMessaging, logger *zap.Logger) *gin.Engine {
	h := NewWebhookHandler(m, logger)
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	r.POST("/send-message", h.SendMessage)
	return r
}

func TestWebhookVerify(t *testing.T) {
	r := webhookEngine(stubMessaging{verifyFn: func(mode, token, challenge string) (string, error) {
		if token != "secret" {
			return "", errors.New("invalid")
		}
		return challenge, nil
	}})

	w := do(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=123", nil)
	if w.Code != http.StatusOK || w.Body.String() != "123" {
		t.Fatalf("verify = %d %q", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=bad", nil); w.Code != http.StatusForbidden {
		t.Fatalf("bad token status = %d", w.Code)
	}
}

func TestWebhookReceive_AcknowledgesFailures(t *testing.T) {
	r := webhookEngine(stubMessaging{handleFn: func(models.WebhookPayload) error {
		return errors.New("store down")
	}})

	if w := do(r, http.MethodPost, "/webhook", `{"object":"whatsapp_business_account","entry":[]}`); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/webhook", `not json`); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed status = %d", w.Code)
	}
}

func TestSendMessage(t *testing.T) {
	var sent models.OutboundMessageRequest
	r := webhookEngine(stubMessaging{sendFn: func(req models.OutboundMessageRequest) error {
		sent = req
		if req.To == "blocked" {
			return errors.New("403")
		}
		return nil
	}})

	if w := do(r, http.MethodPost, "/send-message", `{"to":"886","message":"hi"}`); w.Code != http.StatusAccepted || sent.Message != "hi" {
		t.Fatalf("send = %d %+v", w.Code, sent)
	}
	if w := do(r, http.MethodPost, "/send-message", `{"to":"886"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing message status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/send-message", `{"to":"blocked","message":"x"}`); w.Code != http.StatusBadGateway {
		t.Fatalf("send failure status = %d", w.Code)
	}
}

func TestWebhook_LogsJournalFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := webhookEngineWithLogger(stubMessaging{
		handleFn: func(models.WebhookPayload) error { return errors.New("store down") },
		sendFn:   func(models.OutboundMessageRequest) error { return errors.New("403") },
	}, zap.New(core))

	do(r, http.MethodPost, "/webhook", `{"object":"whatsapp_business_account","entry":[]}`)
	do(r, http.MethodPost, "/send-message", `{"to":"886","message":"reminder"}`)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("logged %d entries, want 2", len(entries))
	}
	if entries[0].Message != "journal command from chat failed" {
		t.Fatalf("receive log = %q", entries[0].Message)
	}
	if entries[1].Message != "failed sending chat message" || entries[1].ContextMap()["to"] != "886" {
		t.Fatalf("send log = %+v", entries[1])
	}
}
