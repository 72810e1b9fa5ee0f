package extract

// Result is the outcome of one extraction step: either a value or the error
// explaining the failure, never both. Fallback chains are written as explicit
// checks on Ok rather than recovered panics.
type Result[T any] struct {
	value T
	err   error
}

// OK wraps a successfully extracted value.
func OK[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail wraps a failure. A nil err is replaced by ErrNotFound so a failed
// Result always carries a reason.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = ErrNotFound
	}
	return Result[T]{err: err}
}

// Ok reports whether the extraction succeeded.
func (r Result[T]) Ok() bool {
	return r.err == nil
}

// Value returns the extracted value, or the zero value on failure.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the failure reason, or nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Get returns the value and the failure reason.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// Or returns the value on success and fallback otherwise.
func (r Result[T]) Or(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}
