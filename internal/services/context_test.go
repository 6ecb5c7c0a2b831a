package services_test

import (
	"context"
	"testing"

	"seasonpass/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithUnit(ctx, 3)
	ctx = services.WithStage(ctx, "playback")
	ctx = services.WithSessionID(ctx, "sess-1")
	ctx = services.WithRequestID(ctx, "req-123")

	if unit, ok := services.UnitFromContext(ctx); !ok || unit != 3 {
		t.Fatalf("unexpected unit: %v %v", unit, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "playback" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if sid, ok := services.SessionIDFromContext(ctx); !ok || sid != "sess-1" {
		t.Fatalf("unexpected session id: %v %v", sid, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithUnit(ctx, 0)
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.UnitFromContext(ctx); ok {
		t.Fatal("expected no unit value")
	}
}
