package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookSender_Delivers(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	w := NewWebhookSender()
	provider, err := w.Send(context.Background(), Message{To: ts.URL, Subject: "vehicle update", Body: "details"})
	if err != nil {
		t.Fatalf("Send(): %v", err)
	}
	if provider == "" {
		t.Error("empty provider message")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload["subject"] != "vehicle update" || payload["body"] != "details" {
		t.Errorf("payload = %v", payload)
	}
}

func TestWebhookSender_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	w := NewWebhookSender()
	if _, err := w.Send(context.Background(), Message{To: ts.URL, Body: "x"}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestWebhookSender_MissingURL(t *testing.T) {
	w := NewWebhookSender()
	if _, err := w.Send(context.Background(), Message{Body: "x"}); err == nil {
		t.Fatal("expected error for missing URL")
	}
}

func TestWebhookSender_ConnectionRefused(t *testing.T) {
	w := NewWebhookSender()
	if _, err := w.Send(context.Background(), Message{To: "http://127.0.0.1:1", Body: "x"}); err == nil {
		t.Fatal("expected error for unreachable target")
	}
}
