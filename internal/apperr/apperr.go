// Package apperr defines the tagged error kinds used across the generation
// pipeline. Kinds are assigned at the point of failure so callers can decide
// retry policy with errors.As instead of inspecting message text.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota

	// Pre-flight configuration problems: missing settings, unwritable
	// directories, unreachable synthesis engine.
	KindConfig

	// Script generation failures.
	KindScriptAuth
	KindScriptQuota
	KindScriptMalformed

	// Asset failures. Individual bad assets are skipped with a warning;
	// this kind marks the fatal "nothing usable survived" case.
	KindAssetSource
	KindNoValidAssets

	// Narration synthesis failures.
	KindSynthUnreachable
	KindSynthTimeout
	KindSynthCorrupt

	// Render failures.
	KindRenderCodec
	KindRenderMemory
	KindRenderDisk
	KindRenderPermission
	KindRenderCorrupt

	// Upload failures. Recoverable at the workflow level: the rendered
	// video remains valid.
	KindUpload
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindScriptAuth:
		return "script_auth"
	case KindScriptQuota:
		return "script_quota"
	case KindScriptMalformed:
		return "script_malformed"
	case KindAssetSource:
		return "asset_source"
	case KindNoValidAssets:
		return "no_valid_assets"
	case KindSynthUnreachable:
		return "synth_unreachable"
	case KindSynthTimeout:
		return "synth_timeout"
	case KindSynthCorrupt:
		return "synth_corrupt"
	case KindRenderCodec:
		return "render_codec"
	case KindRenderMemory:
		return "render_memory"
	case KindRenderDisk:
		return "render_disk"
	case KindRenderPermission:
		return "render_permission"
	case KindRenderCorrupt:
		return "render_corrupt"
	case KindUpload:
		return "upload"
	default:
		return "unknown"
	}
}

// Error carries a kind plus the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with a kind and operation name.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a new kinded error from a format string.
func Errorf(kind Kind, op string, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind of the outermost *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether any error in err's chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
