package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"seasonpass/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("disk full")
	err := services.Wrap(services.ErrPersistence, "store", "save", "write progress", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"store", "save", "write progress"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, " ", "", "", nil)
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input marker by default, got %v", err)
	}
	if !strings.Contains(err.Error(), "engine failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want services.FaultClass
	}{
		{"nil", nil, services.FaultNone},
		{"persistence", services.Wrap(services.ErrPersistence, "store", "load", "", nil), services.FaultPersistence},
		{"media", fmt.Errorf("outer: %w", services.Wrap(services.ErrMedia, "playback", "play", "blocked", nil)), services.FaultMedia},
		{"locked", services.Wrap(services.ErrLocked, "flow", "select", "", nil), services.FaultInput},
		{"transition", services.Wrap(services.ErrInvalidTransition, "flow", "back", "", nil), services.FaultInput},
		{"config", services.Wrap(services.ErrConfiguration, "config", "", "", nil), services.FaultConfiguration},
		{"unknown", errors.New("other"), services.FaultInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Classify(tc.err); got != tc.want {
				t.Fatalf("Classify() = %q, want %q", got, tc.want)
			}
		})
	}
}
