package either

// Either represents a value which is populated with exactly one of a success
// value or an error. It is used to deliver failures in-band on channels which
// would otherwise only carry success values.
type Either[T any] struct {
	value T
	err   error
}

// Success returns an Either populated with the given success value.
func Success[T any](value T) Either[T] {
	return Either[T]{value: value}
}

// Error returns an Either populated with the given error.
func Error[T any](err error) Either[T] {
	return Either[T]{err: err}
}

// ValueOrError returns the underlying value and error; exactly one of the two
// is meaningful.
func (e Either[T]) ValueOrError() (T, error) {
	return e.value, e.err
}

// IsError returns true if the Either holds an error.
func (e Either[T]) IsError() bool {
	return e.err != nil
}
