package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPersistence       = errors.New("persistence fault")
	ErrMedia             = errors.New("media fault")
	ErrInput             = errors.New("input rejected")
	ErrLocked            = errors.New("unit locked")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConfiguration     = errors.New("configuration error")
)

// FaultClass identifies how a failure is recovered.
type FaultClass string

const (
	FaultNone          FaultClass = ""
	FaultPersistence   FaultClass = "persistence"
	FaultMedia         FaultClass = "media"
	FaultInput         FaultClass = "input"
	FaultConfiguration FaultClass = "configuration"
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrInput
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error onto its recovery class. Locked units and invalid
// transitions are user input faults.
func Classify(err error) FaultClass {
	switch {
	case err == nil:
		return FaultNone
	case errors.Is(err, ErrPersistence):
		return FaultPersistence
	case errors.Is(err, ErrMedia):
		return FaultMedia
	case errors.Is(err, ErrConfiguration):
		return FaultConfiguration
	default:
		return FaultInput
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
