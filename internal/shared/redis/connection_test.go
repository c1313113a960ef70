package redis

import (
	"context"
	"testing"

	"planets-tableau/internal/shared/config"
)

func TestConnect_DisabledReturnsNil(t *testing.T) {
	client, err := Connect(context.Background(), config.RedisConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if client != nil {
		t.Fatalf("expected nil client when disabled")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close on nil client: %v", err)
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("nil client should not report healthy")
	}
}

func TestConnect_RejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), config.RedisConfig{Enabled: true, URL: "://nope"})
	if err == nil {
		t.Fatalf("expected URL parse error")
	}
}
