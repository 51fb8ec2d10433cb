// Package resource models the progress of a single remote load as it moves from
// loading to a terminal success or error.
package resource

// Kind identifies the variant of a Result.
type Kind int

const (
	KindLoading Kind = iota
	KindSuccess
	KindError
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is one emission of a fetch stream. Every variant may carry data: a
// loading result can hold cached data shown while the fetch runs, and an error
// result can hold stale data to fall back on.
type Result[T any] struct {
	kind    Kind
	data    *T
	message string
}

// Loading builds a loading result. data may be nil.
func Loading[T any](data *T) Result[T] {
	return Result[T]{kind: KindLoading, data: data}
}

// Success builds a success result. data may be nil.
func Success[T any](data *T) Result[T] {
	return Result[T]{kind: KindSuccess, data: data}
}

// Failure builds an error result carrying message and optional stale data.
func Failure[T any](message string, data *T) Result[T] {
	return Result[T]{kind: KindError, data: data, message: message}
}

// Kind reports the variant.
func (r Result[T]) Kind() Kind { return r.kind }

// Data returns the payload, or nil when the result carries none.
func (r Result[T]) Data() *T { return r.data }

// HasData reports whether the result carries a payload.
func (r Result[T]) HasData() bool { return r.data != nil }

// Message returns the error message for error results and "" otherwise.
func (r Result[T]) Message() string { return r.message }

// IsTerminal reports whether no further emissions are expected after r.
func (r Result[T]) IsTerminal() bool { return r.kind != KindLoading }
