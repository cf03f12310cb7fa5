package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a missing match record or an absent source URL.
	ErrNotFound = errors.New("not found")
	// ErrFetch marks a download where every quality tier was exhausted.
	ErrFetch = errors.New("fetch failure")
	// ErrMerge marks a concatenation where both strategies failed.
	ErrMerge = errors.New("merge failure")
	// ErrPublish marks a failed blob store upload.
	ErrPublish = errors.New("publish failure")
	// ErrDecode marks a malformed job payload.
	ErrDecode = errors.New("decode failure")
	// ErrExternalTool marks a subprocess invocation failure.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrTimeout marks an attempt that ran past its wall-clock budget.
	ErrTimeout = errors.New("timeout")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for classification at the worker boundary. The
// marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
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
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
