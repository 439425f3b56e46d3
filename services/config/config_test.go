// config/config_test.go
package config

import (
	"context"
	"testing"
	"time"

	"weatherstation-go/bus"
)

func TestConfig_PublishEmbedded_RetainedPerSection(t *testing.T) {
	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "station")
	svc.Start(ctx, conn)

	// Retained sections arrive immediately on subscribe, whenever that is.
	sub := conn.Subscribe(bus.T(configPrefix, bus.WildAll))

	want := map[string]bool{"wifi": false, "sampling": false, "http": false}
	deadline := time.Now().Add(600 * time.Millisecond)
	for time.Now().Before(deadline) {
		remaining := 0
		for _, seen := range want {
			if !seen {
				remaining++
			}
		}
		if remaining == 0 {
			break
		}
		select {
		case m := <-sub.Channel():
			if len(m.Topic) != 2 {
				t.Fatalf("unexpected topic: %#v", m.Topic)
			}
			key, ok := m.Topic[1].(string)
			if !ok {
				t.Fatalf("topic[1] type %T, want string", m.Topic[1])
			}
			if _, known := want[key]; !known {
				t.Fatalf("unexpected section %q", key)
			}
			if !m.Retained {
				t.Fatalf("section %q not retained", key)
			}
			if _, ok := m.Payload.(map[string]any); !ok {
				t.Fatalf("section %q payload type %T", key, m.Payload)
			}
			want[key] = true
		case <-time.After(100 * time.Millisecond):
		}
	}
	for key, seen := range want {
		if !seen {
			t.Fatalf("section %q never published", key)
		}
	}
}

func TestConfig_WifiSectionFields(t *testing.T) {
	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "station")
	svc.Start(ctx, conn)

	sub := conn.Subscribe(bus.T(configPrefix, "wifi"))
	select {
	case m := <-sub.Channel():
		wifi, ok := m.Payload.(map[string]any)
		if !ok {
			t.Fatalf("payload type %T", m.Payload)
		}
		if _, ok := wifi["ssid"].(string); !ok {
			t.Fatalf("ssid missing or wrong type: %#v", wifi["ssid"])
		}
		if _, ok := wifi["pass"].(string); !ok {
			t.Fatal("pass missing")
		}
	case <-time.After(time.Second):
		t.Fatal("wifi section never published")
	}
}

func TestConfig_MissingDeviceID(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	if err := svc.publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error without device ID in context")
	}
}
