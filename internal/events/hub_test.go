package events

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/pandeygaura/navins-redact/internal/config"
	"github.com/pandeygaura/navins-redact/internal/logger"
	"go.uber.org/zap"
)

func newTestHub(toggle func(cfg *config.WebSocketConfig)) *Hub {
	cfg := config.GetDefaults().WebSocket
	if toggle != nil {
		toggle(&cfg)
	}
	return NewHub(cfg, &logger.Logger{Logger: zap.NewNop()})
}

func TestShouldBroadcastEvent(t *testing.T) {
	t.Run("AllEnabled", func(t *testing.T) {
		hub := newTestHub(nil)
		for _, eventType := range []EventType{
			EventTypeDocumentProcessed,
			EventTypePIIDetection,
			EventTypeSystemStatus,
			EventTypeConnection,
		} {
			if !hub.shouldBroadcastEvent(eventType) {
				t.Errorf("Event type %s not broadcast with defaults", eventType)
			}
		}
	})

	t.Run("DetectionsDisabled", func(t *testing.T) {
		hub := newTestHub(func(cfg *config.WebSocketConfig) {
			cfg.Events.BroadcastDetections = false
		})
		if hub.shouldBroadcastEvent(EventTypePIIDetection) {
			t.Error("Disabled detection events still broadcast")
		}
		if !hub.shouldBroadcastEvent(EventTypeDocumentProcessed) {
			t.Error("Document events affected by detection toggle")
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		hub := newTestHub(nil)
		if hub.shouldBroadcastEvent(EventType("bogus")) {
			t.Error("Unknown event type broadcast")
		}
	})
}

func TestShouldSendToClient(t *testing.T) {
	hub := newTestHub(nil)
	event := Event{Type: EventTypePIIDetection, Timestamp: time.Now()}

	t.Run("NoSubscriptionReceivesAll", func(t *testing.T) {
		client := &Client{ID: "c1"}
		if !hub.shouldSendToClient(client, event) {
			t.Error("Unfiltered client did not receive event")
		}
	})

	t.Run("MatchingSubscription", func(t *testing.T) {
		client := &Client{
			ID:           "c2",
			Subscription: &SubscriptionRequest{Events: []EventType{EventTypePIIDetection}},
		}
		if !hub.shouldSendToClient(client, event) {
			t.Error("Subscribed client did not receive event")
		}
	})

	t.Run("NonMatchingSubscription", func(t *testing.T) {
		client := &Client{
			ID:           "c3",
			Subscription: &SubscriptionRequest{Events: []EventType{EventTypeSystemStatus}},
		}
		if hub.shouldSendToClient(client, event) {
			t.Error("Filtered client received event")
		}
	})
}

func TestBroadcastRespectsToggles(t *testing.T) {
	hub := newTestHub(func(cfg *config.WebSocketConfig) {
		cfg.Events.BroadcastSystem = false
	})

	hub.Broadcast(Event{Type: EventTypeSystemStatus, Timestamp: time.Now()})
	select {
	case event := <-hub.broadcast:
		t.Errorf("Disabled event type was queued: %s", event.Type)
	default:
	}

	hub.Broadcast(Event{Type: EventTypeDocumentProcessed, Timestamp: time.Now()})
	select {
	case event := <-hub.broadcast:
		if event.Type != EventTypeDocumentProcessed {
			t.Errorf("Unexpected queued event: %s", event.Type)
		}
	default:
		t.Error("Enabled event type was not queued")
	}
}

func TestParseCredentials(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		data := base64.StdEncoding.EncodeToString([]byte("admin:secret"))
		user, pass, ok := parseCredentials(data)
		if !ok || user != "admin" || pass != "secret" {
			t.Errorf("parseCredentials() = (%q, %q, %t)", user, pass, ok)
		}
	})

	t.Run("NotBase64", func(t *testing.T) {
		if _, _, ok := parseCredentials("%%%"); ok {
			t.Error("Invalid base64 accepted")
		}
	})

	t.Run("NoSeparator", func(t *testing.T) {
		data := base64.StdEncoding.EncodeToString([]byte("adminsecret"))
		if _, _, ok := parseCredentials(data); ok {
			t.Error("Credentials without separator accepted")
		}
	})
}
