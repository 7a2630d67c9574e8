// Package exitcode provides standardized exit codes for cargo-override
package exitcode

import (
	"errors"
	"io/fs"

	"github.com/fulmenhq/cargo-override/pkg/cargo"
	"github.com/fulmenhq/cargo-override/pkg/config"
	"github.com/fulmenhq/cargo-override/pkg/override"
)

// Exit codes for the cargo-override CLI
const (
	Success          = 0
	GeneralError     = 1
	ConfigError      = 2
	UsageError       = 3
	FileSystemError  = 4
	ManifestNotFound = 5
	InvalidManifest  = 6
	SchemaConflict   = 7
	InternalError    = 8
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case UsageError:
		return "Usage error"
	case FileSystemError:
		return "File system error"
	case ManifestNotFound:
		return "Manifest not found"
	case InvalidManifest:
		return "Invalid manifest"
	case SchemaConflict:
		return "Schema conflict"
	case InternalError:
		return "Internal error"
	default:
		return "Unknown error"
	}
}

// FromError picks the exit code for an error returned by a command.
func FromError(err error) int {
	switch {
	case err == nil:
		return Success
	case override.IsSchemaConflict(err):
		return SchemaConflict
	case override.IsInternal(err):
		return InternalError
	case errors.Is(err, override.ErrInvalidDocument), errors.Is(err, cargo.ErrInvalidManifest):
		return InvalidManifest
	case errors.Is(err, cargo.ErrManifestNotFound):
		return ManifestNotFound
	case errors.Is(err, config.ErrInvalidConfig):
		return ConfigError
	case errors.Is(err, ErrUsage):
		return UsageError
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return FileSystemError
	}
	return GeneralError
}

// ErrUsage marks errors caused by bad flags or arguments.
var ErrUsage = errors.New("usage error")
