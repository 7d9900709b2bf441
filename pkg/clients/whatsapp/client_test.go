package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quociou/pibao/internal/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.WhatsAppConfig{
		AccessToken:   "tok",
		PhoneNumberID: "555",
		BaseURL:       srv.URL + "/",
		APIVersion:    "v20.0",
	})
}

func TestSendTextMessage_OK(t *testing.T) {
	var got textMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v20.0/555/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	})

	resp, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "886900", Body: "hi"})
	if err != nil {
		t.Fatalf("SendTextMessage: %v", err)
	}
	if resp.MessageID() != "wamid.1" {
		t.Fatalf("message id = %q", resp.MessageID())
	}
	if got.To != "886900" || got.Text.Body != "hi" || got.MessagingProduct != "whatsapp" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestSendTextMessage_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad token","code":190}}`))
	})

	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Detail.Code != 190 {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestSendTextMessage_Validation(t *testing.T) {
	c := NewClient(config.WhatsAppConfig{BaseURL: "http://unused", APIVersion: "v1"})
	if _, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{Body: "x"}); err == nil {
		t.Fatalf("expected error for missing recipient")
	}
	if _, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: "  "}); err == nil {
		t.Fatalf("expected error for blank body")
	}
}
