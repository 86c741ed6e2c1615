package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound        = ErrorKind("Not Found")
	InvalidArgument = ErrorKind("Invalid Argument")
	Unsupported     = ErrorKind("Unsupported")
	Timeout         = ErrorKind("Timeout")
	Overflow        = ErrorKind("Overflow")
)

// Distribution error taxonomy. Every rejected operation is wrapped with exactly one of these kinds
// and none of them is returned after a state mutation has been committed.
const (
	// InputError is returned for malformed input (mismatched lengths, zero root, zero amount).
	// The caller may retry with corrected input.
	InputError = ErrorKind("Input Error")

	// StateConflict is returned when the target is already in a terminal state
	// (root already pending, epoch already claimed, vesting already released).
	StateConflict = ErrorKind("State Conflict")

	// NotYetEligible is returned when an operation is valid but too early
	// (timelock not expired, vesting not unlocked). Retry after the reported time.
	NotYetEligible = ErrorKind("Not Yet Eligible")

	// ProofError is returned when a merkle proof does not reconstruct the committed root.
	ProofError = ErrorKind("Proof Error")

	// Unauthorized is returned when a caller invokes an owner-only operation.
	Unauthorized = ErrorKind("Unauthorized")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
