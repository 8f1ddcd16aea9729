package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a renderer failure per spec §7.
type Kind int

const (
	// InvalidScene: missing required parameter, unknown plugin type,
	// malformed transform. Fatal; surfaces to the CLI boundary.
	InvalidScene Kind = iota
	// AssetIO: referenced mesh/image cannot be opened or is corrupted. Fatal.
	AssetIO
	// GeometryDegenerate: zero-area triangle, non-finite vertex. Logged,
	// the offending primitive is skipped, rendering continues.
	GeometryDegenerate
	// NumericAnomaly: a sample produced NaN/Inf. Logged and clamped to
	// black at the film; never fatal.
	NumericAnomaly
	// ArenaExhausted: a fatal assertion - arenas must be sized for the
	// worst case path depth * max BxDFs per BSDF.
	ArenaExhausted
)

func (k Kind) String() string {
	switch k {
	case InvalidScene:
		return "invalid-scene"
	case AssetIO:
		return "asset-io"
	case GeometryDegenerate:
		return "geometry-degenerate"
	case NumericAnomaly:
		return "numeric-anomaly"
	case ArenaExhausted:
		return "arena-exhausted"
	default:
		return "unknown"
	}
}

// Fatal reports whether a failure of this kind aborts the process (spec §7
// propagation policy): InvalidScene, AssetIO and ArenaExhausted abort;
// GeometryDegenerate and NumericAnomaly are logged warnings that don't
// change the exit code.
func (k Kind) Fatal() bool {
	return k == InvalidScene || k == AssetIO || k == ArenaExhausted
}

// RenderError is the renderer's structured error type. It wraps an
// underlying cause with a Kind so the CLI boundary can pick the right
// exit code and the diagnostic line's "level" tag (spec §7, §6).
type RenderError struct {
	Kind  Kind
	cause error
}

func NewError(kind Kind, format string, args ...interface{}) *RenderError {
	return &RenderError{Kind: kind, cause: errors.Errorf(format, args...)}
}

func WrapError(kind Kind, cause error, context string) *RenderError {
	return &RenderError{Kind: kind, cause: errors.Wrap(cause, context)}
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.cause)
}

func (e *RenderError) Unwrap() error {
	return e.cause
}

// ExitCode maps a RenderError to the process exit code of spec §6: 0 on
// success, 1 on scene-parse failure, 2 on a runtime error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var rerr *RenderError
	if errors.As(err, &rerr) && rerr.Kind == InvalidScene {
		return 1
	}
	return 2
}
