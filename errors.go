package rex

import "fmt"

// InvalidRangeError is returned when a numeric range cannot form a
// character class. Digit ranges must satisfy 0 <= minimum < maximum <= 9.
type InvalidRangeError struct {
	Min int
	Max int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("cannot build range between %d and %d", e.Min, e.Max)
}

// NoMatchError is returned by Test when the sample does not match the
// pattern. It carries both sides for diagnostics.
type NoMatchError struct {
	Pattern string
	Sample  string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("pattern %q tested with %q: no match", e.Pattern, e.Sample)
}

// CompileError is returned when the host engine rejects a serialized
// expression. It wraps the engine's error and keeps the offending text.
type CompileError struct {
	Expr string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("cannot compile %q: %s", e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// UnsupportedMemberError is returned when a class or alternation member is
// neither plain text, a Fragment, nor a Pattern.
type UnsupportedMemberError struct {
	Value any
}

func (e *UnsupportedMemberError) Error() string {
	return fmt.Sprintf("cannot handle member of type %T", e.Value)
}

// ContractViolationError is returned when a registered extension breaks the
// builder contract by not returning a fresh, distinct pattern.
type ContractViolationError struct {
	Extension string
	Reason    string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("extension %q: %s", e.Extension, e.Reason)
}

// InvariantViolationError is the panic value raised when internal builder
// state is corrupted. It marks a programming error, not a recoverable
// condition.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return "invariant violation: " + e.Reason
}
