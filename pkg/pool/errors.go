package pool

import "errors"

// Sentinel errors returned by registry operations. They are always wrapped in
// a *prefaberrors.Error carrying the category and context details, so both
// errors.Is checks against these sentinels and prefaberrors.IsType checks
// against the category work.
var (
	// ErrUnknownIdentifier reports an acquire or clear against an
	// identifier no pool was ever registered for. A configuration mistake;
	// the operation is a no-op.
	ErrUnknownIdentifier = errors.New("unknown pool identifier")

	// ErrDuplicateIdentifier reports a second registration for an
	// identifier while the duplicate policy is reject.
	ErrDuplicateIdentifier = errors.New("duplicate pool identifier")

	// ErrDoubleRelease reports a release of an instance that is already
	// idle. The second release is rejected and the idle queue is left
	// untouched.
	ErrDoubleRelease = errors.New("instance already idle")

	// ErrUnmanagedInstance reports a release of an instance this registry
	// never issued. The stray instance is destroyed rather than leaked.
	ErrUnmanagedInstance = errors.New("instance not managed by registry")

	// ErrAllocationFailure reports that a pool could not grow: either the
	// template failed or the pool's instance cap was reached. This is the
	// only condition surfaced to callers as a hard failure.
	ErrAllocationFailure = errors.New("pool allocation failure")

	// ErrNilTemplate reports a blueprint registered without a template.
	ErrNilTemplate = errors.New("blueprint has nil template")
)
