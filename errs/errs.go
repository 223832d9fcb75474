// Package errs defines the error taxonomy shared by the store, solver, and
// feed packages (spec §7): a fixed set of sentinel kinds, wrapped with
// context via github.com/pkg/errors, and an Is<Kind> predicate per kind
// following golang-dep's source_errors.go convention of named, checkable
// failure categories rather than bespoke error types per call site.
package errs

import (
	"context"
	"errors"
)

var (
	// ErrInvalidVersion marks a version string that failed to parse.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidInterfaceID marks a feed/interface identifier that is
	// neither an absolute URL nor an absolute local path.
	ErrInvalidInterfaceID = errors.New("invalid interface id")
	// ErrFeedUnavailable marks a FeedProvider that returned nothing while
	// network use is restricted.
	ErrFeedUnavailable = errors.New("feed unavailable")
	// ErrSolverUnsatisfied marks a solve that found no satisfying
	// assignment.
	ErrSolverUnsatisfied = errors.New("no implementations satisfy the requirements")
	// ErrDigestMismatch marks a store add whose computed digest does not
	// match the digest the caller expected.
	ErrDigestMismatch = errors.New("digest mismatch")
	// ErrImplementationNotFound marks a store lookup or remove for a
	// digest with no corresponding entry.
	ErrImplementationNotFound = errors.New("implementation not found in store")
	// ErrIO marks an underlying filesystem or network failure.
	ErrIO = errors.New("i/o error")
	// ErrUnauthorizedAccess marks a filesystem operation that failed due
	// to insufficient permissions.
	ErrUnauthorizedAccess = errors.New("unauthorized access")
)

// IsInvalidVersion reports whether err is or wraps ErrInvalidVersion.
func IsInvalidVersion(err error) bool { return errors.Is(err, ErrInvalidVersion) }

// IsInvalidInterfaceID reports whether err is or wraps ErrInvalidInterfaceID.
func IsInvalidInterfaceID(err error) bool { return errors.Is(err, ErrInvalidInterfaceID) }

// IsFeedUnavailable reports whether err is or wraps ErrFeedUnavailable.
func IsFeedUnavailable(err error) bool { return errors.Is(err, ErrFeedUnavailable) }

// IsSolverUnsatisfied reports whether err is or wraps ErrSolverUnsatisfied.
func IsSolverUnsatisfied(err error) bool { return errors.Is(err, ErrSolverUnsatisfied) }

// IsDigestMismatch reports whether err is or wraps ErrDigestMismatch.
func IsDigestMismatch(err error) bool { return errors.Is(err, ErrDigestMismatch) }

// IsImplementationNotFound reports whether err is or wraps
// ErrImplementationNotFound.
func IsImplementationNotFound(err error) bool { return errors.Is(err, ErrImplementationNotFound) }

// IsIO reports whether err is or wraps ErrIO.
func IsIO(err error) bool { return errors.Is(err, ErrIO) }

// IsUnauthorizedAccess reports whether err is or wraps
// ErrUnauthorizedAccess.
func IsUnauthorizedAccess(err error) bool { return errors.Is(err, ErrUnauthorizedAccess) }

// IsOperationCanceled reports whether err is or wraps a context
// cancellation, which spec §7 treats as its own OperationCanceled kind
// rather than inventing a parallel sentinel for what context.Context
// already models.
func IsOperationCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
