package services

// Result carries the outcome of a call that never fails outright. When the
// backend reply is unusable Value holds the zero record and Cause says why.
type Result[T any] struct {
	Value T
	Cause error
}

func (r Result[T]) Degraded() bool {
	return r.Cause != nil
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func degraded[T any](cause error) Result[T] {
	var zero T
	return Result[T]{Value: zero, Cause: cause}
}
