package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/htmlbundle/internal/configloader"
	"github.com/yaklabco/htmlbundle/pkg/bundle"
	"github.com/yaklabco/htmlbundle/pkg/runner"
	"github.com/yaklabco/htmlbundle/pkg/transform"
)

// Exit codes for htmlbundle.
const (
	// ExitSuccess indicates every document was built.
	ExitSuccess = 0

	// ExitBuildFailed indicates at least one document could not be built.
	ExitBuildFailed = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates invalid configuration.
	ExitConfigError = 65

	// ExitIOError indicates file I/O errors outside of a document build.
	ExitIOError = 74
)

var (
	// ErrBuildFailed is returned when one or more documents failed.
	ErrBuildFailed = errors.New("build failed")

	// ErrInvalidUsage marks errors caused by bad flags or arguments.
	ErrInvalidUsage = errors.New("invalid usage")
)

// ExitCodeFromResult determines the exit code for a finished run.
func ExitCodeFromResult(result *runner.Result) int {
	if result.HasFailures() {
		return ExitBuildFailed
	}
	return ExitSuccess
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	var validationErr *configloader.ValidationError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrBuildFailed):
		return ExitBuildFailed
	case errors.Is(err, ErrInvalidUsage):
		return ExitInvalidUsage
	case errors.As(err, &validationErr),
		errors.Is(err, bundle.ErrInvalidConfig),
		errors.Is(err, transform.ErrUnknownTransform),
		errors.Is(err, runner.ErrInvalidPattern):
		return ExitConfigError
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, configloader.ErrConfigExists):
		return ExitIOError
	default:
		return ExitBuildFailed
	}
}
