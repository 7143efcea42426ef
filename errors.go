package cbmcore

import "fmt"

// ConfigurationError indicates that a pool, flux indicator, or matrix
// definition is internally inconsistent: unknown pool references,
// duplicate ids, unresolvable associations, or a duplicate matrix
// coordinate. ConfigurationErrors are fatal at construction time,
// before any kernel call is made.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "cbmcore: configuration error: " + e.Msg }

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// NewConfigurationError builds a ConfigurationError, exported for the
// parameters/assembly/variable packages to report construction-time
// mistakes with the same taxonomy the kernel uses.
func NewConfigurationError(format string, args ...interface{}) error {
	return configErrorf(format, args...)
}

// DimensionError indicates that per-stand vectors passed to a kernel
// call (pools, flux, enabled, an Op's index vector) have inconsistent
// lengths. DimensionErrors are fatal at the call boundary.
type DimensionError struct {
	Msg string
}

func (e *DimensionError) Error() string { return "cbmcore: dimension error: " + e.Msg }

func dimErrorf(format string, args ...interface{}) error {
	return &DimensionError{Msg: fmt.Sprintf(format, args...)}
}

// NewDimensionError builds a DimensionError, exported for the same
// reason as NewConfigurationError.
func NewDimensionError(format string, args ...interface{}) error {
	return dimErrorf(format, args...)
}

// DomainError indicates a value outside the physically valid domain:
// a non-finite coefficient, a negative pool value produced by a step,
// a negative matrix coefficient, or a source row summing to more than
// 1.0 (more than 100% of a pool routed out). DomainErrors are fatal
// and are never silently clamped.
type DomainError struct {
	Msg string
}

func (e *DomainError) Error() string { return "cbmcore: domain error: " + e.Msg }

func domainErrorf(format string, args ...interface{}) error {
	return &DomainError{Msg: fmt.Sprintf(format, args...)}
}

// NewDomainError builds a DomainError, exported for the same reason
// as NewConfigurationError.
func NewDomainError(format string, args ...interface{}) error {
	return domainErrorf(format, args...)
}

// ConvergenceWarning reports that a stand's spinup reached
// max_rotations without satisfying the slow-pool convergence test. It
// is non-fatal; it is surfaced through a stand's Converged flag rather
// than returned as an error.
type ConvergenceWarning struct {
	StandIndex int
	Rotations  int
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("cbmcore: stand %d did not converge within %d rotations", w.StandIndex, w.Rotations)
}
