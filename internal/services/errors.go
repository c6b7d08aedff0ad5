package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrResolution    = errors.New("resource resolution error")
	ErrListing       = errors.New("collection listing error")
	ErrCheckpoint    = errors.New("checkpoint error")
	ErrInaccessible  = errors.New("item inaccessible")
	ErrAcquisition   = errors.New("acquisition failure")
	ErrExternalTool  = errors.New("external tool error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err should abort a whole run rather than a single
// item. Per-item markers (inaccessible, acquisition) are recoverable.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInaccessible) || errors.Is(err, ErrAcquisition) {
		return false
	}
	return true
}

// Category returns a short label for the marker carried by err, suitable for
// logs and persisted run history.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrListing):
		return "listing"
	case errors.Is(err, ErrCheckpoint):
		return "checkpoint"
	case errors.Is(err, ErrInaccessible):
		return "inaccessible"
	case errors.Is(err, ErrAcquisition):
		return "acquisition"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "unexpected"
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
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
