package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInputMissing    = errors.New("input missing")
	ErrDecode          = errors.New("decode error")
	ErrUnmappedSpeaker = errors.New("unmapped speaker")
	ErrSynthesis       = errors.New("synthesis failure")
	ErrAssembly        = errors.New("assembly failure")
	ErrExternalTool    = errors.New("external tool failure")
	ErrNetwork         = errors.New("network failure")
	ErrRateLimited     = errors.New("rate limited")
	ErrInterrupted     = errors.New("interrupted")
	ErrResourceInit    = errors.New("resource init failure")
)

// Wrap tags err with one of the sentinel kinds above and prefixes the stage
// and operation, so both the kind and the cause stay reachable via errors.Is.
func Wrap(kind error, stage, operation string, err error) error {
	detail := buildDetail(stage, operation)
	if kind == nil {
		kind = ErrExternalTool
	}
	if err != nil {
		if detail == "" {
			return fmt.Errorf("%w: %w", kind, err)
		}
		return fmt.Errorf("%w: %s: %w", kind, detail, err)
	}
	if detail == "" {
		return kind
	}
	return fmt.Errorf("%w: %s", kind, detail)
}

// Is reports whether err carries the given kind.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}

// Fatal reports whether err should stop the whole run rather than a single
// chapter or series.
func Fatal(err error) bool {
	return errors.Is(err, ErrResourceInit)
}

func buildDetail(stage, operation string) string {
	parts := make([]string, 0, 2)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	return strings.Join(parts, ": ")
}
